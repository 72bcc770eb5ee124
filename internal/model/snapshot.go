package model

import (
	"encoding/hex"
	"encoding/json"
	"slices"
	"sort"
	"strconv"

	"golang.org/x/crypto/sha3"
)

// Snapshot is an immutable, ordered capture of all content descriptors
// across all pages at one instant. Descriptors are ordered by page number,
// then by element index. A snapshot is replaced on every reflow cycle and is
// never mutated in place.
type Snapshot struct {
	// Descriptors holds every content block in global order.
	Descriptors []ContentDescriptor `json:"descriptors"`

	// PageNumbers lists every page present in the document at snapshot
	// time, including pages without content. When nil, the page set is
	// derived from the descriptors.
	PageNumbers []int `json:"pages,omitempty"`
}

// PageGroup is the slice of a snapshot that belongs to one page.
type PageGroup struct {
	// Number is the page number.
	Number int

	// Descriptors holds the page's blocks in element order.
	Descriptors []ContentDescriptor
}

// NewSnapshot builds a snapshot from descriptors, copying and sorting them
// into global order. Optional page numbers declare pages that exist but may
// hold no content.
func NewSnapshot(descs []ContentDescriptor, pages ...int) Snapshot {
	out := make([]ContentDescriptor, len(descs))
	for i, d := range descs {
		out[i] = d.Clone()
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PageNumber != out[j].PageNumber {
			return out[i].PageNumber < out[j].PageNumber
		}
		return out[i].ElementIndex < out[j].ElementIndex
	})

	var numbers []int
	if len(pages) > 0 {
		numbers = slices.Clone(pages)
		slices.Sort(numbers)
		numbers = slices.Compact(numbers)
	}
	return Snapshot{Descriptors: out, PageNumbers: numbers}
}

// Len returns the number of descriptors.
func (s Snapshot) Len() int {
	return len(s.Descriptors)
}

// IsEmpty reports whether the snapshot has no descriptors.
func (s Snapshot) IsEmpty() bool {
	return len(s.Descriptors) == 0
}

// Clone returns a deep copy that shares no memory with s.
func (s Snapshot) Clone() Snapshot {
	out := make([]ContentDescriptor, len(s.Descriptors))
	for i, d := range s.Descriptors {
		out[i] = d.Clone()
	}
	return Snapshot{Descriptors: out, PageNumbers: slices.Clone(s.PageNumbers)}
}

// Pages groups the snapshot by page number, pages sorted ascending.
// Pages listed in PageNumbers appear even when they hold no descriptors.
func (s Snapshot) Pages() []PageGroup {
	byPage := make(map[int][]ContentDescriptor)
	for _, n := range s.PageNumbers {
		byPage[n] = nil
	}
	for _, d := range s.Descriptors {
		byPage[d.PageNumber] = append(byPage[d.PageNumber], d)
	}

	numbers := make([]int, 0, len(byPage))
	for n := range byPage {
		numbers = append(numbers, n)
	}
	slices.Sort(numbers)

	groups := make([]PageGroup, len(numbers))
	for i, n := range numbers {
		groups[i] = PageGroup{Number: n, Descriptors: byPage[n]}
	}
	return groups
}

// Page returns the descriptors of a single page in element order.
func (s Snapshot) Page(number int) []ContentDescriptor {
	var out []ContentDescriptor
	for _, d := range s.Descriptors {
		if d.PageNumber == number {
			out = append(out, d)
		}
	}
	return out
}

// Fingerprint returns a SHA3-256 digest of the snapshot's content identity:
// tag, attributes, markup, page and index of every descriptor. Geometry is
// excluded so two snapshots of the same arrangement share a fingerprint even
// when measurements differ by rounding.
func (s Snapshot) Fingerprint() string {
	h := sha3.New256()
	for _, d := range s.Descriptors {
		h.Write([]byte(strconv.Itoa(d.PageNumber)))
		h.Write([]byte{0})
		h.Write([]byte(strconv.Itoa(d.ElementIndex)))
		h.Write([]byte{0})
		h.Write([]byte(NormalizeTag(d.TagName)))
		h.Write([]byte{0})

		keys := make([]string, 0, len(d.Attributes))
		for k := range d.Attributes {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			h.Write([]byte(k))
			h.Write([]byte{'='})
			h.Write([]byte(d.Attributes[k]))
			h.Write([]byte{0})
		}

		h.Write([]byte(d.InnerMarkup))
		h.Write([]byte{1})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Equivalent reports whether two snapshots hold the same ordered content:
// same tag, attributes, markup, page and index for every position. Position
// fields are not compared.
func (s Snapshot) Equivalent(other Snapshot) bool {
	if len(s.Descriptors) != len(other.Descriptors) {
		return false
	}
	for i, d := range s.Descriptors {
		o := other.Descriptors[i]
		if d.PageNumber != o.PageNumber || d.ElementIndex != o.ElementIndex {
			return false
		}
		if !d.SameContent(o) {
			return false
		}
	}
	return true
}

// MarshalSnapshot serializes a snapshot as an ordered list of descriptor
// records.
func MarshalSnapshot(s Snapshot) ([]byte, error) {
	descs := s.Descriptors
	if descs == nil {
		descs = []ContentDescriptor{}
	}
	return json.Marshal(descs)
}

// UnmarshalSnapshot parses the output of MarshalSnapshot.
func UnmarshalSnapshot(data []byte) (Snapshot, error) {
	var descs []ContentDescriptor
	if err := json.Unmarshal(data, &descs); err != nil {
		return Snapshot{}, err
	}
	for i := range descs {
		descs[i].TagName = NormalizeTag(descs[i].TagName)
	}
	return NewSnapshot(descs), nil
}
