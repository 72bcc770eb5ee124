package model

import (
	"strings"
	"testing"
)

// TestEstimateHeight verifies the height heuristic used for unmeasured blocks.
func TestEstimateHeight(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		desc ContentDescriptor
		want float64
	}{
		{
			name: "stored height wins",
			desc: ContentDescriptor{TagName: "p", InnerMarkup: "text", Height: 77},
			want: 77,
		},
		{
			name: "line break block",
			desc: ContentDescriptor{TagName: "div", InnerMarkup: "<br>"},
			want: LineBreakHeight,
		},
		{
			name: "blank block",
			desc: ContentDescriptor{TagName: "p", InnerMarkup: "   "},
			want: LineBreakHeight,
		},
		{
			name: "heading block",
			desc: ContentDescriptor{TagName: "H2", InnerMarkup: "Chapter"},
			want: HeadingHeight,
		},
		{
			name: "short paragraph scales with length",
			desc: ContentDescriptor{TagName: "p", InnerMarkup: strings.Repeat("x", 50)},
			want: 30,
		},
		{
			name: "medium paragraph scales with length",
			desc: ContentDescriptor{TagName: "p", InnerMarkup: strings.Repeat("x", 100)},
			want: 40,
		},
		{
			name: "long paragraph clamps to maximum",
			desc: ContentDescriptor{TagName: "p", InnerMarkup: strings.Repeat("x", 1000)},
			want: MaxEstimatedHeight,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := EstimateHeight(tt.desc); got != tt.want {
				t.Errorf("EstimateHeight() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestNormalizeTag verifies tag folding.
func TestNormalizeTag(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"P":          "p",
		" h2 ":       "h2",
		"div":        "div",
		"BLOCKQUOTE": "blockquote",
	}
	for in, want := range tests {
		if got := NormalizeTag(in); got != want {
			t.Errorf("NormalizeTag(%q) = %q, want %q", in, got, want)
		}
	}
}

// TestContentDescriptorIsHeading covers heading detection.
func TestContentDescriptorIsHeading(t *testing.T) {
	t.Parallel()

	for _, tag := range []string{"h1", "H2", "h6"} {
		if !(ContentDescriptor{TagName: tag}).IsHeading() {
			t.Errorf("expected %q to be a heading", tag)
		}
	}
	for _, tag := range []string{"p", "h7", "hr", "header"} {
		if (ContentDescriptor{TagName: tag}).IsHeading() {
			t.Errorf("expected %q not to be a heading", tag)
		}
	}
}

// TestContentDescriptorClone verifies that clones do not share attributes.
func TestContentDescriptorClone(t *testing.T) {
	t.Parallel()

	orig := ContentDescriptor{TagName: "p", Attributes: map[string]string{"class": "a"}}
	clone := orig.Clone()
	clone.Attributes["class"] = "b"

	if orig.Attributes["class"] != "a" {
		t.Errorf("clone mutated original attributes: %v", orig.Attributes)
	}
}

// TestContentDescriptorSameContent verifies identity comparison.
func TestContentDescriptorSameContent(t *testing.T) {
	t.Parallel()

	base := ContentDescriptor{
		TagName:     "p",
		Attributes:  map[string]string{"class": "body", "id": "p1"},
		InnerMarkup: "hello",
		Height:      20,
		PageNumber:  1,
	}

	t.Run("geometry is ignored", func(t *testing.T) {
		t.Parallel()
		other := base.Clone()
		other.Height = 99
		other.BottomPosition = 400
		other.PageNumber = 3
		if !base.SameContent(other) {
			t.Error("expected same content")
		}
	})

	t.Run("attribute difference is detected", func(t *testing.T) {
		t.Parallel()
		other := base.Clone()
		other.Attributes["class"] = "quote"
		if base.SameContent(other) {
			t.Error("expected different content")
		}
	})

	t.Run("markup difference is detected", func(t *testing.T) {
		t.Parallel()
		other := base.Clone()
		other.InnerMarkup = "bye"
		if base.SameContent(other) {
			t.Error("expected different content")
		}
	})
}
