package fonts

import "sort"

// Variable fonts show up as an unusually large set of non-standard numeric
// weights (every rendered optical weight is its own computed value). The
// normalizer collapses those to a bounded, display-friendly set; ordinary
// fonts just get sorted.

const (
	variableMinDistinct = 6  // more than this many distinct weights, and
	variableMaxFinal    = 10 // never more than this many after normalizing
	clusterTolerance    = 25
)

// IsVariable reports whether a weight set looks like a variable font:
// more than 6 distinct values with at least one off the 100..900-by-100
// grid.
func IsVariable(weights []int) bool {
	if len(distinct(weights)) <= variableMinDistinct {
		return false
	}
	for _, w := range weights {
		if !standardWeight(w) {
			return true
		}
	}
	return false
}

func standardWeight(w int) bool {
	return w >= 100 && w <= 900 && w%100 == 0
}

// NormalizeWeights returns the weight list to report for a family.
func NormalizeWeights(weights []int) []int {
	ws := distinct(weights)
	sort.Ints(ws)

	if !IsVariable(weights) {
		return ws
	}

	// Cluster representatives are raw computed values and can sit outside
	// the reportable range (weights 1..99 and 901..1000 are legal CSS), so
	// clamp no matter how few clusters come out.
	clustered := clusterWeights(ws)
	for i, w := range clustered {
		clustered[i] = clampWeight(w)
	}
	clustered = distinct(clustered)
	sort.Ints(clustered)
	if len(clustered) <= variableMaxFinal {
		return clustered
	}

	// Still too many: snap to the nearest 50.
	rounded := make([]int, 0, len(clustered))
	for _, w := range clustered {
		rounded = append(rounded, clampWeight(((w+25)/50)*50))
	}
	rounded = distinct(rounded)
	sort.Ints(rounded)

	if len(rounded) > variableMaxFinal {
		// Pathological spreads survive even the 50-step snap; snap again to
		// the standard grid, which can hold at most nine values.
		for i, w := range rounded {
			rounded[i] = clampWeight(((w + 50) / 100) * 100)
		}
		rounded = distinct(rounded)
		sort.Ints(rounded)
	}
	return rounded
}

func clampWeight(w int) int {
	if w < 100 {
		return 100
	}
	if w > 900 {
		return 900
	}
	return w
}

// clusterWeights greedily merges sorted weights within the tolerance,
// keeping per cluster whichever member sits closest to a standard weight.
func clusterWeights(sorted []int) []int {
	var out []int
	var cluster []int

	flush := func() {
		if len(cluster) == 0 {
			return
		}
		best := cluster[0]
		for _, w := range cluster[1:] {
			if distToStandard(w) < distToStandard(best) {
				best = w
			}
		}
		out = append(out, best)
		cluster = nil
	}

	for _, w := range sorted {
		if len(cluster) > 0 && w-cluster[len(cluster)-1] > clusterTolerance {
			flush()
		}
		cluster = append(cluster, w)
	}
	flush()
	return out
}

func distToStandard(w int) int {
	best := 1 << 30
	for std := 100; std <= 900; std += 100 {
		d := w - std
		if d < 0 {
			d = -d
		}
		if d < best {
			best = d
		}
	}
	return best
}

func distinct(ws []int) []int {
	seen := make(map[int]bool, len(ws))
	out := make([]int, 0, len(ws))
	for _, w := range ws {
		if !seen[w] {
			seen[w] = true
			out = append(out, w)
		}
	}
	return out
}
