// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package match intersects two venues' author indices and ranks the authors
// found in both.
package match

import (
	"sort"

	"github.com/pdiddy/venue-overlap/pkg/types"
)

// Match returns one result per identity key present in both a and b, ordered
// by combined paper count, highest first. Ties keep a's first-seen key order.
// The display name is the author name on a's first paper for the key.
func Match(a, b *types.AuthorIndex) []types.MatchResult {
	var results []types.MatchResult
	for _, key := range a.Keys() {
		papersB, ok := b.Papers(key)
		if !ok {
			continue
		}
		papersA, _ := a.Papers(key)
		if len(papersA) == 0 || len(papersB) == 0 {
			continue
		}
		results = append(results, types.MatchResult{
			Key:         key,
			DisplayName: papersA[0].AuthorName,
			PapersA:     papersA,
			PapersB:     papersB,
			CountA:      len(papersA),
			CountB:      len(papersB),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Total() > results[j].Total()
	})
	return results
}
