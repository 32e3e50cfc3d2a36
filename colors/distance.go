package colors

import "math"

// Luminance cutoffs for the near-black / near-white zones.
const (
	nearBlackLum = 20.0
	nearWhiteLum = 240.0
)

type rgb struct {
	r, g, b float64
}

func parseHex(hex string) (rgb, bool) {
	if len(hex) != 6 {
		return rgb{}, false
	}
	var v [3]float64
	for i := 0; i < 3; i++ {
		hi, ok1 := hexDigit(hex[i*2])
		lo, ok2 := hexDigit(hex[i*2+1])
		if !ok1 || !ok2 {
			return rgb{}, false
		}
		v[i] = float64(hi*16 + lo)
	}
	return rgb{v[0], v[1], v[2]}, true
}

func hexDigit(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10, true
	}
	return 0, false
}

// luminance is the standard Rec. 601 weighting.
func luminance(c rgb) float64 {
	return 0.299*c.r + 0.587*c.g + 0.114*c.b
}

// colorful reports whether the color carries visible saturation: channel
// spread above 30 keeps grays and near-grays out.
func colorful(c rgb) bool {
	max := math.Max(c.r, math.Max(c.g, c.b))
	min := math.Min(c.r, math.Min(c.g, c.b))
	return max-min > 30
}

// distance is a green-weighted Euclidean-like metric. Green carries the
// most perceptual weight, blue slightly more than red.
func distance(a, b rgb) float64 {
	dr := a.r - b.r
	dg := a.g - b.g
	db := a.b - b.b
	return math.Sqrt(2*dr*dr + 4*dg*dg + 3*db*db)
}

// mergeThreshold picks the clustering distance for a pair of colors.
// Near-black colors compress perceptually, so the threshold tightens to 5;
// near-white pairs use 10; everything else 15.
func mergeThreshold(a, b rgb) float64 {
	la, lb := luminance(a), luminance(b)
	switch {
	case la < nearBlackLum || lb < nearBlackLum:
		return 5
	case la > nearWhiteLum || lb > nearWhiteLum:
		return 10
	default:
		return 15
	}
}

func withinThreshold(a, b rgb) bool {
	return distance(a, b) <= mergeThreshold(a, b)
}
