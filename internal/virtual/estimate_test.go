package virtual

import (
	"testing"

	"github.com/nao1215/pageflow/internal/model"
)

// TestAverageGap verifies reference spacing sampling.
func TestAverageGap(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		blocks []model.Rect
		want   float64
	}{
		{name: "no blocks", blocks: nil, want: DefaultGap},
		{name: "single block", blocks: []model.Rect{{Top: 24, Bottom: 64}}, want: DefaultGap},
		{
			name: "uniform spacing",
			blocks: []model.Rect{
				{Top: 24, Bottom: 64},
				{Top: 70, Bottom: 100},
				{Top: 106, Bottom: 150},
			},
			want: 6,
		},
		{
			name: "uneven spacing is averaged",
			blocks: []model.Rect{
				{Top: 0, Bottom: 10},
				{Top: 12, Bottom: 20},
				{Top: 30, Bottom: 40},
			},
			want: 6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := AverageGap(tt.blocks); got != tt.want {
				t.Errorf("AverageGap() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestStoreEstimate verifies stacked position estimation.
func TestStoreEstimate(t *testing.T) {
	t.Parallel()

	t.Run("three blocks with gap 4 and padding 24", func(t *testing.T) {
		t.Parallel()

		s := NewStore(2, 24)
		s.Append(block("one", 40))
		s.Append(block("two", 35))
		s.Append(block("three", 50))

		got := s.Estimate(4)
		want := []float64{64, 103, 157}
		if len(got) != len(want) {
			t.Fatalf("expected %d descriptors, got %d", len(want), len(got))
		}
		for i, d := range got {
			if d.BottomPosition != want[i] {
				t.Errorf("block %d: bottom %v, want %v", i, d.BottomPosition, want[i])
			}
			if d.ElementIndex != i || d.PageNumber != 2 || !d.Virtual {
				t.Errorf("block %d: unexpected placement %+v", i, d)
			}
		}
	})

	t.Run("unmeasured blocks use the height heuristic", func(t *testing.T) {
		t.Parallel()

		s := NewStore(2, 24)
		s.Append(model.ContentDescriptor{TagName: "div", InnerMarkup: "<br>"})
		s.Append(model.ContentDescriptor{TagName: "h2", InnerMarkup: "Title"})

		got := s.Estimate(4)
		if got[0].Height != model.LineBreakHeight || got[0].BottomPosition != 59 {
			t.Errorf("line break: height %v bottom %v", got[0].Height, got[0].BottomPosition)
		}
		if got[1].Height != model.HeadingHeight || got[1].BottomPosition != 103 {
			t.Errorf("heading: height %v bottom %v", got[1].Height, got[1].BottomPosition)
		}
	})

	t.Run("estimate does not modify the store", func(t *testing.T) {
		t.Parallel()

		s := NewStore(2, 24)
		s.Append(block("one", 0))
		_ = s.Estimate(4)

		if d := s.Descriptors()[0]; d.Height != 0 || d.Virtual {
			t.Errorf("store mutated by Estimate: %+v", d)
		}
	})

	t.Run("empty store estimates nothing", func(t *testing.T) {
		t.Parallel()

		if got := NewStore(2, 24).Estimate(4); len(got) != 0 {
			t.Errorf("expected no descriptors, got %d", len(got))
		}
	})
}
