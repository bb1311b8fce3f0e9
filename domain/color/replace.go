package color

import "github.com/soocke/pixel-agent-go/domain/pic"

// HSVRange is an inclusive box on the byte HSV scale.
type HSVRange struct {
	HMin, HMax uint8
	SMin, SMax uint8
	VMin, VMax uint8
}

// Contains reports whether h, s, v lie inside the box.
func (r HSVRange) Contains(h, s, v uint8) bool {
	return h >= r.HMin && h <= r.HMax && s >= r.SMin && s <= r.SMax && v >= r.VMin && v <= r.VMax
}

// Replace overwrites every pixel whose HSV falls inside rng with c and
// returns how many pixels changed.
func Replace(img *pic.Image, rng HSVRange, c uint32) int {
	n := 0
	for i, px := range img.Pix {
		r, g, b, _ := pic.Unpack(px)
		if rng.Contains(rgbToHSVFast(r, g, b)) {
			img.Pix[i] = c
			n++
		}
	}
	return n
}
