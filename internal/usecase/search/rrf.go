package search

import (
	"sort"

	"github.com/topicboard/topicboard/internal/domain/post"
	"github.com/topicboard/topicboard/internal/domain/search/result"
)

// rrfK is the Reciprocal Rank Fusion constant (standard value from Cormack et al. 2009).
const rrfK = 60

// fuseRRF merges the lexical and vector rankings via Reciprocal Rank Fusion.
// score(d) = sum of 1/(k + rank_i(d)) over each ranking where d appears; a
// ranking d is absent from contributes nothing. The output is sorted by RRF
// score descending with a fully deterministic tie-break: popularity score
// descending, then post id ascending. Returns the top-limit hits and the size
// of the combined candidate set before truncation.
func fuseRRF(lexical, vector []result.RankedItem, limit int) ([]result.FusedHit, int) {
	type candidate struct {
		post        post.Post
		lexicalRank int
		vectorRank  int
		similarity  float64
		score       float64
	}

	merged := make(map[string]*candidate, len(lexical)+len(vector))

	for i := range lexical {
		it := &lexical[i]
		p := it.Post()
		merged[p.ID()] = &candidate{
			post:        p,
			lexicalRank: it.Rank(),
			score:       1.0 / float64(rrfK+it.Rank()),
		}
	}

	for i := range vector {
		it := &vector[i]
		p := it.Post()
		s := 1.0 / float64(rrfK+it.Rank())
		if c, ok := merged[p.ID()]; ok {
			c.vectorRank = it.Rank()
			c.similarity = it.Score()
			c.score += s
		} else {
			merged[p.ID()] = &candidate{
				post:       p,
				vectorRank: it.Rank(),
				similarity: it.Score(),
				score:      s,
			}
		}
	}

	fused := make([]result.FusedHit, 0, len(merged))
	for _, c := range merged {
		fused = append(fused, result.NewFusedHit(c.post, c.lexicalRank, c.vectorRank, c.similarity, c.score))
	}

	sort.Slice(fused, func(i, j int) bool {
		if fused[i].RRFScore() != fused[j].RRFScore() {
			return fused[i].RRFScore() > fused[j].RRFScore()
		}
		pi, pj := fused[i].Post(), fused[j].Post()
		if pi.Score() != pj.Score() {
			return pi.Score() > pj.Score()
		}
		return pi.ID() < pj.ID()
	})

	candidates := len(fused)
	if len(fused) > limit {
		fused = fused[:limit]
	}

	return fused, candidates
}
