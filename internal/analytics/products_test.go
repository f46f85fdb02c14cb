package analytics

import (
	"testing"

	"ecomdash/internal/core"
)

func categoryRecords(counts map[string]int) []core.OrderRecord {
	var out []core.OrderRecord
	for cat, n := range counts {
		for i := 0; i < n; i++ {
			out = append(out, core.OrderRecord{OrderID: cat, Category: cat})
		}
	}
	return out
}

func TestCategoryPopularityScenario(t *testing.T) {
	records := categoryRecords(map[string]int{"toys": 3, "books": 5, "": 1})
	got := CategoryPopularity(records)
	want := []core.CategoryCount{
		{Category: "books", ProductCount: 5},
		{Category: "toys", ProductCount: 3},
		{Category: UnknownCategory, ProductCount: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("got %+v want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("row %d: got %+v want %+v", i, got[i], want[i])
		}
	}
}

func TestCategoryPopularityTieBreakAndConservation(t *testing.T) {
	records := categoryRecords(map[string]int{"garden": 2, "audio": 2, "bed": 2, "pets": 4})
	got := CategoryPopularity(records)
	order := []string{"pets", "audio", "bed", "garden"}
	total := 0
	seen := map[string]bool{}
	for i, c := range got {
		if c.Category != order[i] {
			t.Fatalf("position %d: got %s want %s (%+v)", i, c.Category, order[i], got)
		}
		if seen[c.Category] {
			t.Fatalf("category %s listed twice", c.Category)
		}
		seen[c.Category] = true
		total += c.ProductCount
	}
	if total != len(records) {
		t.Fatalf("counts sum to %d, want %d", total, len(records))
	}
}

func TestTopAndBottomCategories(t *testing.T) {
	records := categoryRecords(map[string]int{"a": 6, "b": 5, "c": 4, "d": 3, "e": 2, "f": 1})

	top := TopCategories(records, 2)
	if len(top) != 2 || top[0].Category != "a" || top[1].Category != "b" {
		t.Fatalf("top: %+v", top)
	}
	bottom := BottomCategories(records, 2)
	if len(bottom) != 2 || bottom[0].Category != "f" || bottom[1].Category != "e" {
		t.Fatalf("bottom: %+v", bottom)
	}
	if got := TopCategories(records, 100); len(got) != 6 {
		t.Fatalf("top with large n: %+v", got)
	}
	if got := BottomCategories(records, 0); len(got) != 0 {
		t.Fatalf("bottom with zero n: %+v", got)
	}
}

func TestReviewScoresScenario(t *testing.T) {
	records := []core.OrderRecord{
		{ReviewScore: 5}, {ReviewScore: 5}, {ReviewScore: 4}, {ReviewScore: 1},
	}
	got := ReviewScores(records)
	want := []core.ScoreCount{{Score: 5, Count: 2}, {Score: 4, Count: 1}, {Score: 1, Count: 1}}
	if len(got) != len(want) {
		t.Fatalf("got %+v want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("row %d: got %+v want %+v", i, got[i], want[i])
		}
	}
}

func TestReviewScoresSkipsNullAndOutOfRange(t *testing.T) {
	records := []core.OrderRecord{
		{ReviewScore: 0}, {ReviewScore: 6}, {ReviewScore: -2},
		{ReviewScore: 2}, {ReviewScore: 3}, {ReviewScore: 3},
	}
	got := ReviewScores(records)
	total := 0
	for _, s := range got {
		total += s.Count
	}
	if total != 3 {
		t.Fatalf("expected 3 valid scores, got %d (%+v)", total, got)
	}
	if got[0].Score != 3 || got[0].Count != 2 {
		t.Fatalf("expected most frequent first: %+v", got)
	}
}
