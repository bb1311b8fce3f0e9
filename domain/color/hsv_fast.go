package color

import "github.com/soocke/pixel-agent-go/domain/pic"

// rgbToHSVFast is the integer-only twin of RGBToHSV used by image loops.
// round(a/b) for b > 0 is evaluated as floor((2a+b)/2b), mirrored for
// negative numerators so ties still round away from zero.
func rgbToHSVFast(r, g, b uint8) (h, s, v uint8) {
	ri, gi, bi := int32(r), int32(g), int32(b)
	mx := max(ri, gi, bi)
	d := mx - min(ri, gi, bi)
	if d == 0 {
		return 0, 0, uint8(mx)
	}
	sat := (510*d + mx) / (2 * mx)
	var base, n int32
	switch mx {
	case ri:
		base, n = 0, gi-bi
	case gi:
		base, n = hueOneThird, bi-ri
	default:
		base, n = hueTwoThirds, ri-gi
	}
	// 42.5·n/d == 85·n/(2d)
	num, den := 85*n, 2*d
	var arm int32
	if num >= 0 {
		arm = (2*num + den) / (2 * den)
	} else {
		arm = -((-2*num + den) / (2 * den))
	}
	hue := base + arm
	if hue < 0 {
		hue += 255
	} else if hue >= 255 {
		hue -= 255
	}
	return uint8(hue), uint8(sat), uint8(mx)
}

// HSVImage converts every pixel to the byte HSV scale, packed 0xHHSSVVAA
// with alpha preserved.
func HSVImage(img *pic.Image) *pic.Image {
	out := pic.New(img.Width, img.Height)
	for i, c := range img.Pix {
		r, g, b, a := pic.Unpack(c)
		h, s, v := rgbToHSVFast(r, g, b)
		out.Pix[i] = pic.PackRGBA(h, s, v, a)
	}
	return out
}
