// Package colors extracts the dominant color palette of a rendered page.
// Raw observations come from an injected sampler (one record per color per
// element, carrying the element's visual area and role hints); the ranking
// core weights, clusters and sizes them into at most twelve palette entries.
package colors

import (
	"sort"
)

// Channel identifies which style property a color observation came from.
type Channel string

const (
	ChannelBackground Channel = "background"
	ChannelText       Channel = "text"
	ChannelBorder     Channel = "border"
	ChannelSVGFill    Channel = "svg-fill"
	ChannelSVGStroke  Channel = "svg-stroke"
)

// Observation is a single color sighting on a sampled element. Hex is the
// canonical six-digit uppercase form without '#' (the sampler canonicalizes
// any CSS color syntax through a 1x1 canvas round-trip and drops zero-alpha
// values before emitting).
type Observation struct {
	Hex           string  `json:"hex"`
	Area          float64 `json:"area"` // width*height of the element
	Channel       Channel `json:"ch"`
	PrimaryButton bool    `json:"pb"`  // primary/CTA button heuristic hit
	Button        bool    `json:"btn"` // any other button
	AccentHint    bool    `json:"acc"` // accent/brand/highlight naming hint
}

// ColorInfo is one palette entry. Weight is a display size in {1,2,3}.
type ColorInfo struct {
	Hex    string `json:"hex"`
	Weight int    `json:"weight"`
	Source string `json:"source"`
}

// maxPalette bounds the returned palette size.
const maxPalette = 12

// areaCap prevents a single hero or page background from dominating.
const areaCap = 100000

// sample accumulates every observation of one (post-merge) color.
type sample struct {
	hex           string
	weight        float64
	source        Channel
	accent        bool
	primaryButton bool
	nearExtreme   bool
}

// rankTier partitions samples for ordering: accent and primary-button
// colors outrank every ordinary color no matter how large the ordinary
// color's raw weight grows.
func (s *sample) rankTier() int {
	if s.accent || s.primaryButton {
		return 1
	}
	return 0
}

// Rank turns raw observations into the final ranked palette.
// Deterministic for a fixed observation sequence.
func Rank(observations []Observation) []ColorInfo {
	samples := accumulate(observations)
	if len(samples) == 0 {
		return nil
	}

	ranked := make([]*sample, 0, len(samples))
	for _, s := range samples {
		ranked = append(ranked, s)
	}
	sortSamples(ranked)

	distinct := sortSamples(dedupe(ranked))

	if len(distinct) > maxPalette {
		distinct = distinct[:maxPalette]
	}

	return assignDisplayWeights(distinct)
}

// accumulate folds observations into per-hex samples, applying the channel,
// role and perceptual weighting rules to each contribution.
func accumulate(observations []Observation) map[string]*sample {
	samples := make(map[string]*sample)

	for _, o := range observations {
		rgb, ok := parseHex(o.Hex)
		if !ok {
			continue
		}

		area := o.Area
		if area <= 0 {
			continue
		}
		if area > areaCap {
			area = areaCap
		}

		w := area * channelFactor(o.Channel)
		if w <= 0 {
			continue
		}

		// Role multipliers apply to backgrounds only: a button's text color
		// is not the accent, its fill is.
		if o.Channel == ChannelBackground {
			switch {
			case o.PrimaryButton:
				w *= 50
			case o.Button:
				w *= 10
			}
		}

		lum := luminance(rgb)
		near := lum < nearBlackLum || lum > nearWhiteLum
		if near {
			w *= 0.05
		}
		if colorful(rgb) {
			w *= 15
		}

		accent := o.AccentHint
		primary := o.PrimaryButton && o.Channel == ChannelBackground
		if accent || primary {
			w *= 100
		}

		s, exists := samples[o.Hex]
		if !exists {
			s = &sample{hex: o.Hex, source: o.Channel, nearExtreme: near}
			samples[o.Hex] = s
		}
		s.weight += w
		s.accent = s.accent || accent
		s.primaryButton = s.primaryButton || primary
	}

	return samples
}

func channelFactor(c Channel) float64 {
	switch c {
	case ChannelBackground, ChannelSVGFill:
		return 1
	case ChannelText:
		return 0.01
	case ChannelBorder:
		return 0.02
	case ChannelSVGStroke:
		return 0.1
	}
	return 0
}

// sortSamples orders by rank tier, then weight descending, hex ascending
// on ties so repeated runs over the same DOM produce the same order.
func sortSamples(out []*sample) []*sample {
	sort.SliceStable(out, func(i, j int) bool {
		si, sj := out[i], out[j]
		if si.rankTier() != sj.rankTier() {
			return si.rankTier() > sj.rankTier()
		}
		if si.weight != sj.weight {
			return si.weight > sj.weight
		}
		return si.hex < sj.hex
	})
	return out
}

// dedupe walks the ranked list and merges each color into the first
// already-accepted color within the brightness-adaptive distance threshold.
// The first-accepted entry keeps its identity; the merged one contributes
// weight and flags.
func dedupe(ranked []*sample) []*sample {
	distinct := make([]*sample, 0, len(ranked))

	for _, s := range ranked {
		rgb, ok := parseHex(s.hex)
		if !ok {
			continue
		}

		merged := false
		for _, d := range distinct {
			drgb, ok := parseHex(d.hex)
			if !ok {
				continue
			}
			if withinThreshold(rgb, drgb) {
				d.weight += s.weight
				d.accent = d.accent || s.accent
				d.primaryButton = d.primaryButton || s.primaryButton
				merged = true
				break
			}
		}
		if !merged {
			distinct = append(distinct, s)
		}
	}

	return distinct
}

// assignDisplayWeights maps ranked samples to the 1/2/3 display scale:
// at most two weight-3 entries, never a near-extreme one, preferring
// accent/primary colors, then 60%-of-top, then 40%-of-top; anything above
// 20% of top gets weight 2; the rest weight 1.
func assignDisplayWeights(ranked []*sample) []ColorInfo {
	if len(ranked) == 0 {
		return nil
	}

	top := ranked[0].weight
	if top <= 0 {
		top = 1
	}

	three := make(map[*sample]bool, 2)
	grant := func(pred func(s *sample) bool) {
		for _, s := range ranked {
			if len(three) >= 2 {
				return
			}
			if three[s] || s.nearExtreme {
				continue
			}
			if pred(s) {
				three[s] = true
			}
		}
	}
	grant(func(s *sample) bool { return s.accent || s.primaryButton })
	grant(func(s *sample) bool { return s.weight > top*0.6 })
	grant(func(s *sample) bool { return s.weight > top*0.4 })

	out := make([]ColorInfo, 0, len(ranked))
	for _, s := range ranked {
		w := 1
		switch {
		case three[s]:
			w = 3
		case s.weight > top*0.2:
			w = 2
		}
		out = append(out, ColorInfo{
			Hex:    "#" + s.hex,
			Weight: w,
			Source: string(s.source),
		})
	}
	return out
}
