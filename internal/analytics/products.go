package analytics

import (
	"sort"
	"strings"

	"ecomdash/internal/core"
)

// UnknownCategory labels records whose product category is null.
const UnknownCategory = "unknown"

// CategoryPopularity counts records per product category, most popular
// first. Ties are ordered by category label so the output is stable.
func CategoryPopularity(records []core.OrderRecord) []core.CategoryCount {
	counts := make(map[string]int)
	for _, r := range records {
		counts[categoryLabel(r.Category)]++
	}

	out := make([]core.CategoryCount, 0, len(counts))
	for cat, n := range counts {
		out = append(out, core.CategoryCount{Category: cat, ProductCount: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductCount != out[j].ProductCount {
			return out[i].ProductCount > out[j].ProductCount
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// TopCategories returns the n most popular categories.
func TopCategories(records []core.OrderRecord, n int) []core.CategoryCount {
	all := CategoryPopularity(records)
	if n < 0 {
		n = 0
	}
	if n < len(all) {
		all = all[:n]
	}
	return all
}

// BottomCategories returns the n least popular categories, least popular
// first.
func BottomCategories(records []core.OrderRecord, n int) []core.CategoryCount {
	all := CategoryPopularity(records)
	if n < 0 {
		n = 0
	}
	if n < len(all) {
		all = all[len(all)-n:]
	}
	out := make([]core.CategoryCount, len(all))
	for i, c := range all {
		out[len(all)-1-i] = c
	}
	return out
}

// ReviewScores counts each review score from 1 to 5 present in the input,
// most frequent first. Equal counts are ordered by higher score first.
// Scores that never occur are left out.
func ReviewScores(records []core.OrderRecord) []core.ScoreCount {
	var counts [6]int
	for _, r := range records {
		if r.HasReviewScore() {
			counts[r.ReviewScore]++
		}
	}

	out := make([]core.ScoreCount, 0, 5)
	for score := 5; score >= 1; score-- {
		if counts[score] > 0 {
			out = append(out, core.ScoreCount{Score: score, Count: counts[score]})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

func categoryLabel(c string) string {
	c = strings.TrimSpace(c)
	if c == "" {
		return UnknownCategory
	}
	return c
}
