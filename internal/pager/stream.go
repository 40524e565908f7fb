package pager

import (
	"context"
	"errors"
	"iter"
)

// Iterator produces items one at a time. Next returns End once the
// sequence is exhausted; any other error is a producer failure.
type Iterator[E any] interface {
	Next(ctx context.Context) (E, error)
}

// IteratorFunc adapts a function to the Iterator interface.
type IteratorFunc[E any] func(ctx context.Context) (E, error)

func (f IteratorFunc[E]) Next(ctx context.Context) (E, error) { return f(ctx) }

// FromSeq adapts a range-over-func sequence to a pull-based Iterator.
func FromSeq[E any](seq iter.Seq[E]) Iterator[E] {
	next, stop := iter.Pull(seq)
	return IteratorFunc[E](func(context.Context) (E, error) {
		item, ok := next()
		if !ok {
			stop()
			var zero E
			return zero, End
		}
		return item, nil
	})
}

// SliceIterator yields the elements of a slice in order.
func SliceIterator[E any](items []E) Iterator[E] {
	i := 0
	return IteratorFunc[E](func(context.Context) (E, error) {
		if i >= len(items) {
			var zero E
			return zero, End
		}
		item := items[i]
		i++
		return item, nil
	})
}

// StreamSource paginates a lazily produced, possibly unbounded sequence.
// It buffers one full page of lookahead beyond the requested page, so the
// layout can tell whether a next page exists without consuming the whole
// sequence.
type StreamSource[E any] struct {
	Cursor

	iterator Iterator[E]
	pageSize int
	format   FormatFunc[E]
	options  OptionsFunc[E]

	buffer    []E
	maxIndex  int
	exhausted bool
}

// NewStreamSource creates a stream-backed source.
func NewStreamSource[E any](iterator Iterator[E], pageSize int, format FormatFunc[E]) (*StreamSource[E], error) {
	if iterator == nil {
		return nil, errors.New("pager: iterator is required")
	}
	if pageSize <= 0 {
		return nil, errors.New("pager: page size must be positive")
	}
	if format == nil {
		return nil, errors.New("pager: format function is required")
	}
	return &StreamSource[E]{
		iterator: iterator,
		pageSize: pageSize,
		format:   format,
	}, nil
}

// WithOptions sets the drill-down options callback.
func (s *StreamSource[E]) WithOptions(fn OptionsFunc[E]) *StreamSource[E] {
	s.options = fn
	return s
}

// MaxPages reports one page beyond the highest fully buffered index while
// the producer may still yield more, and the exact final count once it is
// exhausted. The value never decreases.
func (s *StreamSource[E]) MaxPages() int {
	if s.exhausted {
		return s.maxIndex
	}
	return s.maxIndex + 1
}

func (s *StreamSource[E]) GetPage(ctx context.Context, index int) (any, error) {
	start := index * s.pageSize
	end := start + s.pageSize
	if s.exhausted {
		return pageSlice(s.buffer, start, end), nil
	}

	// Pull enough items to cover the requested page plus one lookahead
	// page, so next/last affordances stay accurate without claiming the
	// current page is final.
	required := end + s.pageSize - len(s.buffer)
	if required > 0 {
		maxIndex := index + 1
		for i := 0; i < required; i++ {
			item, err := s.iterator.Next(ctx)
			if errors.Is(err, End) {
				maxIndex = ceilDiv(len(s.buffer), s.pageSize)
				s.exhausted = true
				break
			}
			if err != nil {
				return nil, err
			}
			s.buffer = append(s.buffer, item)
		}
		s.maxIndex = maxIndex
	}

	return pageSlice(s.buffer, start, end), nil
}

func (s *StreamSource[E]) FormatPage(ctx context.Context, v *View, page any) (*Payload, error) {
	return s.format(ctx, v, page.([]E))
}

func (s *StreamSource[E]) PageOptions(ctx context.Context, v *View, page any) ([]Option, error) {
	if s.options == nil {
		return nil, nil
	}
	return s.options(ctx, v, page.([]E))
}
