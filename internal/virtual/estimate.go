package virtual

import "github.com/nao1215/pageflow/internal/model"

// AverageGap returns the mean vertical gap between consecutive sibling
// blocks: the sum of top(i) - bottom(i-1) for i = 1..n-1 divided by n-1.
// DefaultGap is returned when fewer than two blocks are given.
func AverageGap(blocks []model.Rect) float64 {
	if len(blocks) < 2 {
		return DefaultGap
	}

	var sum float64
	for i := 1; i < len(blocks); i++ {
		sum += blocks[i].Top - blocks[i-1].Bottom
	}
	return sum / float64(len(blocks)-1)
}

// Estimate computes stacked positions for the held descriptors.
//
// The running position starts at the store's padding. For every descriptor
// but the first the gap is added before the block height; the block's
// bottom position is the running total after adding its height. Heights come
// from model.EstimateHeight. The returned descriptors are copies numbered
// 0..n-1 and marked virtual; the store itself is not modified.
func (s *Store) Estimate(gap float64) []model.ContentDescriptor {
	out := make([]model.ContentDescriptor, len(s.descs))

	position := s.padding
	for i, d := range s.descs {
		height := model.EstimateHeight(d)
		if i > 0 {
			position += gap
		}
		position += height

		est := d.Clone()
		est.Height = height
		est.BottomPosition = position
		est.PageNumber = s.page
		est.ElementIndex = i
		est.Virtual = true
		out[i] = est
	}

	return out
}
