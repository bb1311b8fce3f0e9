package locate

import (
	"image"

	"github.com/soocke/pixel-agent-go/domain/color"
	"github.com/soocke/pixel-agent-go/domain/pic"
)

// rowPrefix holds per-row running sums of the grayscale canvas so any
// horizontal window sum is one subtraction.
type rowPrefix struct {
	sums  []int
	width int // canvas width + 1
}

func newRowPrefix(g *pic.Gray) rowPrefix {
	p := rowPrefix{sums: make([]int, (g.Width+1)*g.Height), width: g.Width + 1}
	for y := 0; y < g.Height; y++ {
		acc := 0
		base := y * p.width
		for x := 0; x < g.Width; x++ {
			acc += int(g.Pix[y*g.Width+x])
			p.sums[base+x+1] = acc
		}
	}
	return p
}

func (p rowPrefix) window(x, y, w int) int {
	base := y * p.width
	return p.sums[base+x+w] - p.sums[base+x]
}

// Fuzzy returns every offset where each RGB channel of the footprint is
// within o.Tolerance of the pattern. A candidate first has to pass a
// per-row gray sum check; channel differences of at most t keep each
// truncated gray value within t, so the check never drops a real match.
func Fuzzy(canvas, pattern *pic.Image, o Options) Result {
	var res Result
	win, nx, ny, ok := candidates(canvas, pattern, o)
	if !ok {
		return res
	}
	w, h := pattern.Width, pattern.Height
	t := max(o.Tolerance, 0)
	slack := t*w + w - 1

	pre := newRowPrefix(color.Grayscale(canvas))
	pg := color.Grayscale(pattern)
	psum := make([]int, h)
	for r := 0; r < h; r++ {
		for _, v := range pg.Pix[r*w : (r+1)*w] {
			psum[r] += int(v)
		}
	}

	for dy := 0; dy < ny; dy++ {
		y := win.Y + dy
	next:
		for dx := 0; dx < nx; dx++ {
			x := win.X + dx
			for r := 0; r < h; r++ {
				d := pre.window(x, y+r, w) - psum[r]
				if d > slack || -d > slack {
					continue next
				}
			}
			closeness, ok := compare(canvas, pattern, x, y, t)
			if !ok {
				res.FalseMatches++
				continue
			}
			res.Occurrences = append(res.Occurrences, Occurrence{Point: image.Pt(x, y), Closeness: closeness})
			if res.full(o) {
				return res
			}
		}
	}
	return res
}
