package resolve

import (
	"strings"
)

// floorScore keeps unrelated-but-popular candidates rankable instead of
// excluding them here; exclusion happens later via the minimum threshold.
const floorScore = 0.05

// Score computes a 0-1 relevance score between a candidate entity and the
// user's query. Rules apply in precedence order: exact match, prefix match,
// substring containment (either direction), token overlap, then tag matching.
func Score(candidateName string, candidateTags []string, query string) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	n := strings.ToLower(strings.TrimSpace(candidateName))
	if q == "" || n == "" {
		return floorScore
	}

	if n == q {
		return 1.0
	}
	if strings.HasPrefix(n, q) {
		return 0.9
	}
	if strings.Contains(n, q) || strings.Contains(q, n) {
		return 0.85
	}

	if r := tokenOverlap(q, n); r > 0.7 {
		return 0.8 * r
	} else if r > 0.4 {
		return 0.6 * r
	}

	best := 0.0
	for _, tag := range candidateTags {
		t := strings.ToLower(strings.TrimSpace(tag))
		if t == "" {
			continue
		}
		var s float64
		if strings.Contains(t, q) || strings.Contains(q, t) {
			s = 0.5
		} else {
			s = 0.3 * tokenOverlap(q, t)
		}
		if s > best {
			best = s
		}
	}
	if best > floorScore {
		return best
	}

	return floorScore
}

// tokenOverlap compares whitespace-delimited tokens of length > 1 from both
// strings. Each exact token pair scores 1.0, each one-contains-the-other pair
// 0.5; the sum is normalized by the larger token count.
func tokenOverlap(a, b string) float64 {
	aTokens := tokens(a)
	bTokens := tokens(b)
	if len(aTokens) == 0 || len(bTokens) == 0 {
		return 0
	}

	sum := 0.0
	for _, at := range aTokens {
		for _, bt := range bTokens {
			if at == bt {
				sum += 1.0
			} else if strings.Contains(at, bt) || strings.Contains(bt, at) {
				sum += 0.5
			}
		}
	}

	denom := len(aTokens)
	if len(bTokens) > denom {
		denom = len(bTokens)
	}
	ratio := sum / float64(denom)
	if ratio > 1 {
		ratio = 1
	}
	return ratio
}

func tokens(s string) []string {
	var out []string
	for _, tok := range strings.Fields(s) {
		if len(tok) > 1 {
			out = append(out, tok)
		}
	}
	return out
}
