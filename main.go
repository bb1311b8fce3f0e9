package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/soocke/pixel-agent-go/config"
	"github.com/soocke/pixel-agent-go/debug"
)

type command struct {
	name  string
	usage string
	run   func(ctx context.Context, env *env, args []string) error
}

// env is what every subcommand gets.
type env struct {
	cfg *config.Config
	log *slog.Logger
	out io.Writer
}

var commands = []command{
	{"match", "match [-fuzzy] [-mask x,y,w,h] canvas pattern", runMatch},
	{"split", "split [-mask x,y,w,h] [-double] image", runSplit},
	{"convert", "convert [-gray] [-condense b1,b2,b3] [-highlight x,y,w,h] in out", runConvert},
	{"ocr", "ocr [-region x,y,w,h] [-int] image", runOCR},
	{"watch", "watch [-for 10s] [-save last.png]", runWatch},
	{"scroll", "scroll -offset N [-unit pixels|lines] [-mode wheel|touch] -area x,y,w,h", runScroll},
	{"key", "key [-hold 100ms] KEY", runKey},
	{"windows", "windows", runWindows},
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: pixel-agent [-config file] [-log-level level] <command> [flags]\n\n")
	for _, c := range commands {
		fmt.Fprintf(os.Stderr, "  %s\n", c.usage)
	}
}

func main() {
	configPath := flag.String("config", "pixel-agent.json", "configuration file")
	levelFlag := flag.String("log-level", "info", "debug, info, warn or error")
	flag.Usage = usage
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*levelFlag)); err != nil {
		fmt.Fprintf(os.Stderr, "bad -log-level: %v\n", err)
		os.Exit(2)
	}
	logger := NewLogger(level)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("config.load_failed", "path", *configPath, "err", err)
		os.Exit(1)
	}

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}
	name, args := flag.Arg(0), flag.Args()[1:]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if cfg.Debug {
		debug.StartGoroutineLogger(ctx, 5*time.Second, logger)
		debug.StartMemLogger(ctx, 5*time.Second, logger)
	}

	for _, c := range commands {
		if c.name != name {
			continue
		}
		err := c.run(ctx, &env{cfg: cfg, log: logger, out: os.Stdout}, args)
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		if err != nil {
			logger.Error("command.failed", "command", name, "err", err)
			os.Exit(1)
		}
		return
	}
	usage()
	os.Exit(2)
}
