package match

import (
	"cmp"
	"slices"
	"strings"

	"shape-mapper/internal/analyze"
)

// Candidate is a source member that may supply a target member.
type Candidate struct {
	Source *analyze.Member
	Target *analyze.Member

	NameScore  float64 // 0..1
	TypeCompat TypeCompatibilityResult

	// Combined score for ranking, higher is better
	Score float64
}

// CandidateList is sorted by Score descending.
type CandidateList []Candidate

const (
	nameWeight = 0.6
	typeWeight = 0.4
)

// RankCandidates scores every readable source member against target.
// Ties are broken by source member name.
func RankCandidates(target *analyze.Member, sources []*analyze.Member, c Coercer) CandidateList {
	candidates := make(CandidateList, 0, len(sources))

	for _, src := range sources {
		if !src.Readable() {
			continue
		}

		compat := ScoreTypeCompatibility(src.Type, target.Type, c)
		name := NameScore(src.Name, target.Name)

		candidates = append(candidates, Candidate{
			Source:     src,
			Target:     target,
			NameScore:  name,
			TypeCompat: compat,
			Score:      name*nameWeight + compat.Compatibility.Weight()*typeWeight,
		})
	}

	slices.SortStableFunc(candidates, func(a, b Candidate) int {
		if r := cmp.Compare(b.Score, a.Score); r != 0 {
			return r
		}

		return strings.Compare(a.Source.Name, b.Source.Name)
	})

	return candidates
}

// Best returns the best candidate, or nil if no candidates.
func (c CandidateList) Best() *Candidate {
	if len(c) == 0 {
		return nil
	}

	return &c[0]
}

// IsAmbiguous returns true if the top two candidates are within the threshold.
func (c CandidateList) IsAmbiguous(threshold float64) bool {
	if len(c) < 2 {
		return false
	}

	return c[0].Score-c[1].Score < threshold
}

// AboveThreshold returns candidates with a score of at least threshold.
func (c CandidateList) AboveThreshold(threshold float64) CandidateList {
	var result CandidateList

	for _, cand := range c {
		if cand.Score >= threshold {
			result = append(result, cand)
		}
	}

	return result
}

// HighConfidence returns the best candidate when it reaches minScore, is type
// compatible and leads the runner-up by at least minGap. Otherwise nil.
func (c CandidateList) HighConfidence(minScore, minGap float64) *Candidate {
	best := c.Best()
	if best == nil || best.Score < minScore {
		return nil
	}

	if best.TypeCompat.Compatibility < TypeNeedsTransform {
		return nil
	}

	if c.IsAmbiguous(minGap) {
		return nil
	}

	return best
}
