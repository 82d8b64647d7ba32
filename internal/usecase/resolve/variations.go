package resolve

import (
	"strings"
)

// Variations generates the bounded, deduplicated set of search queries tried
// for one preference string: the original, lowercase and title-case forms,
// each individual word (length > 1) in those forms, and all 2-word
// combinations of the individual words. Order is deterministic: whole-string
// forms first, then single words, then pairs.
func Variations(query string) []string {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil
	}

	seen := make(map[string]bool)
	var out []string
	add := func(v string) {
		if v == "" || seen[v] {
			return
		}
		seen[v] = true
		out = append(out, v)
	}

	add(trimmed)
	add(strings.ToLower(trimmed))
	add(titleCase(trimmed))

	var words []string
	for _, w := range strings.Fields(trimmed) {
		if len(w) > 1 {
			words = append(words, w)
		}
	}

	for _, w := range words {
		add(w)
		add(strings.ToLower(w))
		add(titleCase(w))
	}

	for i := 0; i < len(words); i++ {
		for j := i + 1; j < len(words); j++ {
			add(words[i] + " " + words[j])
		}
	}

	return out
}

// titleCase upper-cases the first letter of each ASCII word. strings.Title is
// deprecated and full Unicode casing is overkill for search variations.
func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		if w[0] >= 'a' && w[0] <= 'z' {
			words[i] = string(w[0]-'a'+'A') + w[1:]
		}
	}
	return strings.Join(words, " ")
}
