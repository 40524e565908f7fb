package pager

import (
	"context"
	"errors"
)

// FormatFunc converts a page of items into the outbound payload.
type FormatFunc[E any] func(ctx context.Context, v *View, items []E) (*Payload, error)

// OptionsFunc declares the child sources the user may drill into from a
// page of items.
type OptionsFunc[E any] func(ctx context.Context, v *View, items []E) ([]Option, error)

// ListSource paginates a fully materialized slice with a fixed page size.
// The slice is assumed immutable after construction.
type ListSource[E any] struct {
	Cursor

	items    []E
	pageSize int
	maxPages int
	format   FormatFunc[E]
	options  OptionsFunc[E]
}

// NewListSource creates a list-backed source. The page count is computed
// once up front.
func NewListSource[E any](items []E, pageSize int, format FormatFunc[E]) (*ListSource[E], error) {
	if pageSize <= 0 {
		return nil, errors.New("pager: page size must be positive")
	}
	if format == nil {
		return nil, errors.New("pager: format function is required")
	}
	return &ListSource[E]{
		items:    items,
		pageSize: pageSize,
		maxPages: ceilDiv(len(items), pageSize),
		format:   format,
	}, nil
}

// WithOptions sets the drill-down options callback.
func (s *ListSource[E]) WithOptions(fn OptionsFunc[E]) *ListSource[E] {
	s.options = fn
	return s
}

func (s *ListSource[E]) MaxPages() int { return s.maxPages }

func (s *ListSource[E]) GetPage(_ context.Context, index int) (any, error) {
	start := index * s.pageSize
	return pageSlice(s.items, start, start+s.pageSize), nil
}

func (s *ListSource[E]) FormatPage(ctx context.Context, v *View, page any) (*Payload, error) {
	return s.format(ctx, v, page.([]E))
}

func (s *ListSource[E]) PageOptions(ctx context.Context, v *View, page any) ([]Option, error) {
	if s.options == nil {
		return nil, nil
	}
	return s.options(ctx, v, page.([]E))
}

// pageSlice clamps [start, end) to the slice bounds, so out-of-range
// requests return a shorter or empty page instead of panicking.
func pageSlice[E any](items []E, start, end int) []E {
	if start > len(items) {
		start = len(items)
	}
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func ceilDiv(n, d int) int { return (n + d - 1) / d }
