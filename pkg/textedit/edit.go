// Package textedit applies offset-based text edits to a source buffer.
package textedit

import (
	"fmt"
	"sort"
	"strings"
)

// Edit replaces the bytes [Start, End) of a buffer with Text.
type Edit struct {
	Start int
	End   int
	Text  string
}

// Builder accumulates edits against a single buffer.
type Builder struct {
	edits []Edit
}

// Insert adds an edit that inserts text at offset.
func (b *Builder) Insert(offset int, text string) {
	b.edits = append(b.edits, Edit{Start: offset, End: offset, Text: text})
}

// Len returns the number of accumulated edits.
func (b *Builder) Len() int {
	return len(b.edits)
}

// Edits returns a copy of the accumulated edits.
func (b *Builder) Edits() []Edit {
	out := make([]Edit, len(b.edits))
	copy(out, b.edits)
	return out
}

// RangeError describes an edit that falls outside the buffer.
type RangeError struct {
	Edit   Edit
	Reason string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid edit [%d:%d]: %s", e.Edit.Start, e.Edit.End, e.Reason)
}

// ConflictError describes two overlapping edits.
type ConflictError struct {
	First  Edit
	Second Edit
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("overlapping edits: [%d:%d] and [%d:%d]",
		e.First.Start, e.First.End, e.Second.Start, e.Second.End)
}

// Prepare validates edits against a buffer of size n, sorts them by position,
// and rejects overlaps. Insertions at the same offset keep their relative order.
func Prepare(edits []Edit, n int) ([]Edit, error) {
	for _, e := range edits {
		switch {
		case e.Start < 0:
			return nil, &RangeError{Edit: e, Reason: "start offset is negative"}
		case e.End < e.Start:
			return nil, &RangeError{Edit: e, Reason: "end offset is before start offset"}
		case e.End > n:
			return nil, &RangeError{Edit: e, Reason: fmt.Sprintf("end offset %d exceeds length %d", e.End, n)}
		}
	}

	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	for i := 1; i < len(sorted); i++ {
		if sorted[i].Start < sorted[i-1].End {
			return nil, &ConflictError{First: sorted[i-1], Second: sorted[i]}
		}
	}

	return sorted, nil
}

// Apply validates and applies edits to src.
func Apply(src string, edits []Edit) (string, error) {
	if len(edits) == 0 {
		return src, nil
	}

	prepared, err := Prepare(edits, len(src))
	if err != nil {
		return "", err
	}

	delta := 0
	for _, e := range prepared {
		delta += len(e.Text) - (e.End - e.Start)
	}

	var out strings.Builder
	out.Grow(len(src) + delta)

	cursor := 0
	for _, e := range prepared {
		out.WriteString(src[cursor:e.Start])
		out.WriteString(e.Text)
		cursor = e.End
	}
	out.WriteString(src[cursor:])

	return out.String(), nil
}
