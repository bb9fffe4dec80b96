package recommend

import (
	"sort"

	"github.com/lexflow/statrev/internal/models"
)

// FilterByPriority returns the recommendations at or above min, preserving
// emission order. The input is never mutated.
func FilterByPriority(recs []models.Recommendation, min models.Priority) []models.Recommendation {
	var out []models.Recommendation
	for _, r := range recs {
		if r.Priority >= min {
			out = append(out, r)
		}
	}
	return out
}

// FilterByCategory returns the recommendations in the given category,
// preserving emission order.
func FilterByCategory(recs []models.Recommendation, category models.Category) []models.Recommendation {
	var out []models.Recommendation
	for _, r := range recs {
		if r.Category == category {
			out = append(out, r)
		}
	}
	return out
}

// SortByPriority returns a copy sorted by priority descending. The sort is
// stable: ties keep their relative emission order.
func SortByPriority(recs []models.Recommendation) []models.Recommendation {
	out := make([]models.Recommendation, len(recs))
	copy(out, recs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})
	return out
}
