package locate

import (
	"image"

	"github.com/soocke/pixel-agent-go/domain/color"
	"github.com/soocke/pixel-agent-go/domain/pic"
)

const (
	hashQ    = (1 << 23) - 15
	hashBase = 256
)

// modPow computes base^exp mod m by square and multiply.
func modPow(base, exp, m uint64) uint64 {
	result := uint64(1) % m
	base %= m
	for exp > 0 {
		if exp&1 == 1 {
			result = result * base % m
		}
		base = base * base % m
		exp >>= 1
	}
	return result
}

// rowHashes returns the hash of every w-wide window of one condensed row,
// for window starts x0..x0+n-1.
func rowHashes(row []byte, x0, w, n int, out []uint64) {
	lead := modPow(hashBase, uint64(w-1), hashQ)
	var h uint64
	for i := 0; i < w; i++ {
		h = (h*hashBase + uint64(row[x0+i])) % hashQ
	}
	out[0] = h
	for i := 1; i < n; i++ {
		drop := uint64(row[x0+i-1]) * lead % hashQ
		h = (h + hashQ - drop) % hashQ
		h = (h*hashBase + uint64(row[x0+i+w-1])) % hashQ
		out[i] = h
	}
}

// Exact returns every offset where pattern equals canvas on RGB over the whole
// footprint. Both images are condensed to one byte per pixel and scanned with
// a two-dimensional rolling hash: the window is treated as the row-major
// string of its w·h bytes. Hash hits are confirmed pixel by pixel.
func Exact(canvas, pattern *pic.Image, o Options) Result {
	var res Result
	win, nx, ny, ok := candidates(canvas, pattern, o)
	if !ok {
		return res
	}
	cc, _ := color.CondenseImage(canvas, color.DefaultBits)
	pc, _ := color.CondenseImage(pattern, color.DefaultBits)
	w, h := pattern.Width, pattern.Height

	rowShift := modPow(hashBase, uint64(w), hashQ)
	topWeight := modPow(hashBase, uint64(w*(h-1)), hashQ)

	var target uint64
	tmp := make([]uint64, 1)
	for py := 0; py < h; py++ {
		rowHashes(pc.Pix[py*w:(py+1)*w], 0, w, 1, tmp)
		target = (target*rowShift + tmp[0]) % hashQ
	}

	// rows[r] holds the window hashes of canvas row win.Y+r.
	rows := make([][]uint64, win.H)
	for r := range rows {
		rows[r] = make([]uint64, nx)
		rowHashes(cc.Pix[(win.Y+r)*cc.Width:(win.Y+r+1)*cc.Width], win.X, w, nx, rows[r])
	}
	col := make([]uint64, nx)
	for r := 0; r < h; r++ {
		for x := range col {
			col[x] = (col[x]*rowShift + rows[r][x]) % hashQ
		}
	}

	for dy := 0; dy < ny; dy++ {
		if dy > 0 {
			for x := range col {
				drop := rows[dy-1][x] * topWeight % hashQ
				v := (col[x] + hashQ - drop) % hashQ
				col[x] = (v*rowShift + rows[dy+h-1][x]) % hashQ
			}
		}
		for dx, v := range col {
			if v != target {
				continue
			}
			x, y := win.X+dx, win.Y+dy
			if _, ok := compare(canvas, pattern, x, y, 0); !ok {
				res.FalseMatches++
				continue
			}
			res.Occurrences = append(res.Occurrences, Occurrence{Point: image.Pt(x, y)})
			if res.full(o) {
				return res
			}
		}
	}
	return res
}
