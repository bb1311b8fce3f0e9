// Package color converts between RGB and HSV, derives grayscale images and
// packs colors into single-byte codes.
//
// Two HSV scales exist. The byte scale (hue, saturation and value all in
// 0..255, hue 255 folding to 0) is the one every image operation uses; the
// 360/100/100 scale exists for fixtures written in conventional units.
package color

import "math"

// Hue arm offsets on the byte scale: a third and two thirds of the circle.
const (
	hueOneThird  = 85
	hueTwoThirds = 170
)

// round is half away from zero, matching decimal HALF_UP for both signs.
func round(f float64) int { return int(math.Round(f)) }

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// RGBToHSV converts to the byte HSV scale. Saturation is
// round(255·(max−min)/max); hue is taken from the maximal channel with ties
// resolved R, then G, then B, and is 0 whenever saturation is 0.
func RGBToHSV(r, g, b uint8) (h, s, v uint8) {
	ri, gi, bi := int(r), int(g), int(b)
	mx := max(ri, gi, bi)
	d := mx - min(ri, gi, bi)
	sat := 0
	if mx > 0 {
		sat = round(255 * float64(d) / float64(mx))
	}
	hue := 0
	if sat != 0 {
		fd := float64(d)
		switch mx {
		case ri:
			hue = round(42.5 * float64(gi-bi) / fd)
		case gi:
			hue = hueOneThird + round(42.5*float64(bi-ri)/fd)
		default:
			hue = hueTwoThirds + round(42.5*float64(ri-gi)/fd)
		}
		if hue < 0 {
			hue += 255
		} else if hue > 255 {
			hue -= 255
		}
		if hue == 255 {
			hue = 0
		}
	}
	return uint8(hue), uint8(sat), uint8(mx)
}

// HSVToRGB converts from the byte HSV scale.
func HSVToRGB(h, s, v uint8) (r, g, b uint8) {
	return hsvToRGB(float64(h), float64(s), float64(v), 255, 255, 255)
}

// HSV360ToRGB converts from hue in degrees and saturation/value in percent.
func HSV360ToRGB(h, s, v int) (r, g, b uint8) {
	return hsvToRGB(float64(h), float64(s), float64(v), 360, 100, 100)
}

// RGBToHSV360 converts to hue in degrees [0,360) and saturation/value in
// percent. It is lower precision than RGBToHSV and serves fixtures only.
func RGBToHSV360(r, g, b uint8) (h, s, v int) {
	ri, gi, bi := int(r), int(g), int(b)
	mx := max(ri, gi, bi)
	d := mx - min(ri, gi, bi)
	if mx > 0 {
		s = round(100 * float64(d) / float64(mx))
	}
	v = round(100 * float64(mx) / 255)
	if d == 0 {
		return 0, s, v
	}
	fd := float64(d)
	var hf float64
	switch mx {
	case ri:
		hf = 60 * float64(gi-bi) / fd
	case gi:
		hf = 120 + 60*float64(bi-ri)/fd
	default:
		hf = 240 + 60*float64(ri-gi)/fd
	}
	h = round(hf)
	if h < 0 {
		h += 360
	}
	if h >= 360 {
		h -= 360
	}
	return h, s, v
}

// hsvToRGB is the sector formula shared by both scales. A hue equal to the
// full circle folds to sector 0. Products are converted explicitly so the
// compiler cannot fuse them.
func hsvToRGB(h, s, v, fullCircle, maxSat, maxV float64) (r, g, b uint8) {
	if s == 0 || v == 0 {
		gray := clampByte(round(float64(255*v) / maxV))
		return gray, gray, gray
	}
	pos := 0.0
	if h < fullCircle {
		pos = h / (fullCircle / 6)
	}
	sector := math.Floor(pos)
	f := pos - sector
	sn := s / maxSat
	vn := v / maxV
	p := float64(vn * float64(1-sn))
	q := float64(vn * float64(1-float64(sn*f)))
	t := float64(vn * float64(1-float64(sn*float64(1-f))))
	var rf, gf, bf float64
	switch int(sector) {
	case 0:
		rf, gf, bf = vn, t, p
	case 1:
		rf, gf, bf = q, vn, p
	case 2:
		rf, gf, bf = p, vn, t
	case 3:
		rf, gf, bf = p, q, vn
	case 4:
		rf, gf, bf = t, p, vn
	default:
		rf, gf, bf = vn, p, q
	}
	return clampByte(round(float64(rf * 255))), clampByte(round(float64(gf * 255))), clampByte(round(float64(bf * 255)))
}
