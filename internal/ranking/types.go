package ranking

import "image"

// Candidate pairs an opaque identifier with the image to compare. The ID is
// never interpreted, only carried through to the result.
type Candidate struct {
	ID    string
	Image image.Image
}

// Match is one ranked candidate. Higher scores are more similar.
type Match struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// RankedResult lists every candidate of a ranking call, most similar first.
type RankedResult []Match

// Top returns the best match, if there is one.
func (r RankedResult) Top() (Match, bool) {
	if len(r) == 0 {
		return Match{}, false
	}
	return r[0], true
}

func (r RankedResult) IDs() []string {
	ids := make([]string, len(r))
	for i, m := range r {
		ids[i] = m.ID
	}
	return ids
}

func (r RankedResult) Scores() []float64 {
	scores := make([]float64, len(r))
	for i, m := range r {
		scores[i] = m.Score
	}
	return scores
}
