// Package scoring ranks contest entries by how close their guesses are to
// the reference color.
package scoring

import (
	"math"
	"sort"

	"github.com/color-game/contest/colors"
	"github.com/color-game/contest/models"
)

// Score converts a distance into a 0-100 closeness score, where 100 is a
// perfect match and maxDistance or further scores 0.
func Score(distance, maxDistance float64) int {
	if math.IsNaN(distance) || math.IsInf(distance, 0) || maxDistance <= 0 {
		return 0
	}

	score := int(math.Round((1 - (distance / maxDistance)) * 100))

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return score
}

// Rank orders entries by distance between their guessed color and
// reference, closest first. Ties keep insertion order. Entries without a
// defined distance, including every entry when reference is nil, sort last
// with no distance and score 0.
//
// Every entry at the minimum defined distance is a winner. Tied distances
// share a rank, and the next distinct distance skips ahead (1, 1, 3).
func Rank(entries []models.ContestEntry, reference *models.ColorSample, metric colors.Metric) []models.ScoredEntry {
	scored := make([]models.ScoredEntry, len(entries))
	distances := make([]float64, len(entries))
	for i, entry := range entries {
		d := colors.Undefined
		if reference != nil {
			d = metric.Distance(entry.GuessedColor, *reference)
		}
		distances[i] = d
		scored[i] = models.ScoredEntry{
			Entry:       entry.Clone(),
			Description: colors.QualitativeDescription(entry.GuessedColor),
		}
		if !math.IsInf(d, 1) {
			dist := d
			scored[i].Distance = &dist
			scored[i].Score = Score(d, metric.MaxDistance())
		}
	}

	order := make([]int, len(entries))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return distances[order[a]] < distances[order[b]]
	})

	ranked := make([]models.ScoredEntry, len(entries))
	best := colors.Undefined
	for pos, idx := range order {
		ranked[pos] = scored[idx]
		if pos > 0 && distances[idx] == distances[order[pos-1]] {
			ranked[pos].Rank = ranked[pos-1].Rank
		} else {
			ranked[pos].Rank = pos + 1
		}
		if distances[idx] < best {
			best = distances[idx]
		}
	}

	if !math.IsInf(best, 1) {
		for pos, idx := range order {
			if distances[idx] != best {
				break
			}
			ranked[pos].Winner = true
		}
	}
	return ranked
}

// Winners returns the winning rows of a ranking
func Winners(ranked []models.ScoredEntry) []models.ScoredEntry {
	var winners []models.ScoredEntry
	for _, row := range ranked {
		if row.Winner {
			winners = append(winners, row)
		}
	}
	return winners
}
