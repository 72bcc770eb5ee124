package analyzer

import (
	"github.com/nao1215/pageflow/internal/model"
)

// stackedPage builds a live page whose blocks are stacked from the given
// padding with the given gap, returning descriptors with measured bottoms.
func stackedPage(page int, padding, gap float64, heights ...float64) []model.ContentDescriptor {
	descs := make([]model.ContentDescriptor, len(heights))
	position := padding
	for i, h := range heights {
		if i > 0 {
			position += gap
		}
		position += h
		descs[i] = model.ContentDescriptor{
			TagName:        "p",
			Height:         h,
			BottomPosition: position,
			PageNumber:     page,
			ElementIndex:   i,
		}
	}
	return descs
}

// bottoms builds a live page from explicit bottom positions and heights.
func bottoms(page int, pairs ...[2]float64) []model.ContentDescriptor {
	descs := make([]model.ContentDescriptor, len(pairs))
	for i, p := range pairs {
		descs[i] = model.ContentDescriptor{
			TagName:        "p",
			Height:         p[0],
			BottomPosition: p[1],
			PageNumber:     page,
			ElementIndex:   i,
		}
	}
	return descs
}

func snapshotOf(pages ...[]model.ContentDescriptor) model.Snapshot {
	var all []model.ContentDescriptor
	for _, p := range pages {
		all = append(all, p...)
	}
	return model.NewSnapshot(all)
}
