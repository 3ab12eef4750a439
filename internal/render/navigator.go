package render

import "github.com/phrazzld/lessondeck/internal/domain"

// Navigator holds the current slide index. Movement is clamped to the deck
// and refused while a generation is in flight.
type Navigator struct {
	index      int
	generating bool
}

// NewNavigator starts at index, clamped to the deck.
func NewNavigator(index int, generating bool) *Navigator {
	return &Navigator{index: clamp(index), generating: generating}
}

// Index returns the current slide index.
func (n *Navigator) Index() int { return n.index }

// SetGenerating toggles the in-flight flag.
func (n *Navigator) SetGenerating(g bool) { n.generating = g }

// CanNext reports whether Next would move.
func (n *Navigator) CanNext() bool {
	return !n.generating && n.index < domain.SlideCount-1
}

// CanPrev reports whether Prev would move.
func (n *Navigator) CanPrev() bool {
	return !n.generating && n.index > 0
}

// Next moves forward one slide and reports whether it moved.
func (n *Navigator) Next() bool {
	if !n.CanNext() {
		return false
	}
	n.index++
	return true
}

// Prev moves back one slide and reports whether it moved.
func (n *Navigator) Prev() bool {
	if !n.CanPrev() {
		return false
	}
	n.index--
	return true
}

// NavState is the navigation part of a slide response.
type NavState struct {
	Index        int  `json:"index"`
	Count        int  `json:"count"`
	Prev         *int `json:"prev"`
	Next         *int `json:"next"`
	PrevDisabled bool `json:"prev_disabled"`
	NextDisabled bool `json:"next_disabled"`
}

// State describes the navigator. Prev and Next are nil at the bounds.
func (n *Navigator) State() NavState {
	st := NavState{
		Index:        n.index,
		Count:        domain.SlideCount,
		PrevDisabled: !n.CanPrev(),
		NextDisabled: !n.CanNext(),
	}
	if n.index > 0 {
		p := n.index - 1
		st.Prev = &p
	}
	if n.index < domain.SlideCount-1 {
		nx := n.index + 1
		st.Next = &nx
	}
	return st
}

func clamp(i int) int {
	switch {
	case i < 0:
		return 0
	case i > domain.SlideCount-1:
		return domain.SlideCount - 1
	default:
		return i
	}
}
