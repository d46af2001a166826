package quiz

import "context"

// The result ranking is cached after the first full read and patched in place
// as sessions finish, so listing does not hit the store every time.

type rankingCache struct {
	ordered   []ResultSummary
	indexByID map[string]int
}

func (s *Service) rankedResults(ctx context.Context, limit int) ([]ResultSummary, error) {
	s.rankingMu.Lock()
	defer s.rankingMu.Unlock()

	if s.ranking == nil {
		stored, err := s.results.ListResults(ctx, 0)
		if err != nil {
			return nil, err
		}
		s.setCachedRanking(stored)
	}

	entries := applyResultLimit(s.ranking.ordered, limit)
	out := make([]ResultSummary, len(entries))
	copy(out, entries)
	return out, nil
}

func (s *Service) setCachedRanking(entries []ResultSummary) {
	ordered := make([]ResultSummary, len(entries))
	copy(ordered, entries)

	indexByID := make(map[string]int, len(ordered))
	for idx := range ordered {
		indexByID[ordered[idx].ResultID] = idx
	}
	s.ranking = &rankingCache{ordered: ordered, indexByID: indexByID}
}

// updateCachedRanking inserts a freshly saved result. It is a no-op until the
// ranking has been materialized by a read.
func (s *Service) updateCachedRanking(summary ResultSummary) {
	s.rankingMu.Lock()
	defer s.rankingMu.Unlock()

	cache := s.ranking
	if cache == nil {
		return
	}

	idx, exists := cache.indexByID[summary.ResultID]
	if exists {
		cache.ordered[idx] = summary
	} else {
		cache.ordered = append(cache.ordered, summary)
		idx = len(cache.ordered) - 1
		cache.indexByID[summary.ResultID] = idx
	}
	bubbleRanking(cache, idx)
}

func bubbleRanking(cache *rankingCache, idx int) {
	for idx > 0 && rankedBefore(cache.ordered[idx], cache.ordered[idx-1]) {
		swapRanking(cache, idx, idx-1)
		idx--
	}
	for idx+1 < len(cache.ordered) && rankedBefore(cache.ordered[idx+1], cache.ordered[idx]) {
		swapRanking(cache, idx, idx+1)
		idx++
	}
}

func swapRanking(cache *rankingCache, i, j int) {
	cache.ordered[i], cache.ordered[j] = cache.ordered[j], cache.ordered[i]
	cache.indexByID[cache.ordered[i].ResultID] = i
	cache.indexByID[cache.ordered[j].ResultID] = j
}

// rankedBefore orders by score, then quicker time, then earlier finish, then
// result ID so output is deterministic.
func rankedBefore(a, b ResultSummary) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.TimeTaken != b.TimeTaken {
		return a.TimeTaken < b.TimeTaken
	}
	if !a.FinishedAt.Equal(b.FinishedAt) {
		return a.FinishedAt.Before(b.FinishedAt)
	}
	return a.ResultID < b.ResultID
}

func applyResultLimit(entries []ResultSummary, limit int) []ResultSummary {
	if limit <= 0 || limit >= len(entries) {
		return entries
	}
	return entries[:limit]
}
