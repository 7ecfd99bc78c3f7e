package workset

import (
	"golang.org/x/text/cases"
)

// Collision groups two or more sources whose targets are identical after
// Unicode case folding. On a case-insensitive filesystem the later
// conversion silently overwrites the earlier one. Target carries the first
// colliding item's actual target path so warnings show a real path rather
// than a folded key.
type Collision struct {
	Target  string
	Sources []string
}

// FindTargetCollisions reports case-folded duplicate targets within the
// work set. Collisions are surfaced as warnings; conversion proceeds with
// last-writer-wins semantics, matching the tool's overwrite behavior.
func FindTargetCollisions(items []Item) []Collision {
	folder := cases.Fold()
	bySources := make(map[string][]string, len(items))
	firstTarget := make(map[string]string, len(items))
	order := make([]string, 0, len(items))
	for _, item := range items {
		key := folder.String(item.Target)
		if _, seen := bySources[key]; !seen {
			order = append(order, key)
			firstTarget[key] = item.Target
		}
		bySources[key] = append(bySources[key], item.Source)
	}

	var collisions []Collision
	for _, key := range order {
		sources := bySources[key]
		if len(sources) < 2 {
			continue
		}
		collisions = append(collisions, Collision{Target: firstTarget[key], Sources: sources})
	}
	return collisions
}
