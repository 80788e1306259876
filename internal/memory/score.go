package memory

import (
	"cmp"
	"slices"
	"strings"
	"unicode"
)

// terms splits a query into lowercase keywords.
func terms(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]bool, len(fields))
	out := fields[:0]
	for _, f := range fields {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

// score is the fraction of query terms found in the entry. Key hits count
// double.
func score(e Entry, queryTerms []string) float64 {
	if len(queryTerms) == 0 {
		return 0
	}
	key := strings.ToLower(e.Key)
	content := strings.ToLower(e.Content)
	var total float64
	for _, t := range queryTerms {
		if strings.Contains(key, t) {
			total += 2
		} else if strings.Contains(content, t) {
			total++
		}
	}
	return total / float64(2*len(queryTerms))
}

// rank scores entries against query, drops non-matches and sorts best first,
// newest first on ties. An empty query keeps every entry, newest first.
func rank(entries []Entry, query string, limit int) []Entry {
	queryTerms := terms(query)
	ranked := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if len(queryTerms) > 0 {
			e.Score = score(e, queryTerms)
			if e.Score == 0 {
				continue
			}
		}
		ranked = append(ranked, e)
	}
	slices.SortStableFunc(ranked, func(a, b Entry) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.Key, b.Key)
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
