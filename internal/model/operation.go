package model

import "fmt"

// OperationKind identifies the direction of a move.
type OperationKind int

const (
	// OperationOverflow moves a page's trailing block to the start of the
	// following page.
	OperationOverflow OperationKind = iota + 1

	// OperationUnderflow moves a page's leading block to the end of the
	// preceding page.
	OperationUnderflow
)

// String returns the kind name used in logs and reports.
func (k OperationKind) String() string {
	switch k {
	case OperationOverflow:
		return "OVERFLOW"
	case OperationUnderflow:
		return "UNDERFLOW"
	default:
		return "UNKNOWN"
	}
}

// Operation is a single-element move produced by a flow analyzer and
// consumed exactly once by the operation queue.
type Operation struct {
	// Kind is the move direction.
	Kind OperationKind `json:"type"`

	// ElementIndex is the index of the block on FromPage.
	ElementIndex int `json:"elementIndex"`

	// FromPage is the page the block leaves.
	FromPage int `json:"fromPage"`

	// ToPage is the destination page. For overflow it is always FromPage+1.
	ToPage int `json:"toPage"`
}

// NewOverflow returns an operation that moves the block at index on page
// to the start of page+1.
func NewOverflow(index, page int) Operation {
	return Operation{
		Kind:         OperationOverflow,
		ElementIndex: index,
		FromPage:     page,
		ToPage:       page + 1,
	}
}

// NewUnderflow returns an operation that moves the block at index on from
// to the end of to.
func NewUnderflow(index, from, to int) Operation {
	return Operation{
		Kind:         OperationUnderflow,
		ElementIndex: index,
		FromPage:     from,
		ToPage:       to,
	}
}

// Target returns the destination page of the operation.
func (o Operation) Target() int {
	if o.Kind == OperationOverflow {
		return o.FromPage + 1
	}
	return o.ToPage
}

// String implements fmt.Stringer.
func (o Operation) String() string {
	return fmt.Sprintf("%s{elementIndex:%d, fromPage:%d, toPage:%d}",
		o.Kind, o.ElementIndex, o.FromPage, o.Target())
}
