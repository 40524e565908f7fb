package pager

import (
	"context"
	"errors"
	"testing"
)

func TestStreamSourceLookahead(t *testing.T) {
	// Five items, two per page: the first page pulls one extra page of
	// lookahead, so the count stays optimistic until the producer ends.
	src, err := NewStreamSource(SliceIterator(numbers(5)), 2, intFormat)
	if err != nil {
		t.Fatalf("NewStreamSource error: %v", err)
	}

	ctx := context.Background()

	if got := src.MaxPages(); got != 1 {
		t.Errorf("MaxPages before first page = %d, want 1", got)
	}

	page, err := src.GetPage(ctx, 0)
	if err != nil {
		t.Fatalf("GetPage(0) error: %v", err)
	}
	if items := page.([]int); len(items) != 2 || items[0] != 0 {
		t.Errorf("page 0 = %v, want [0 1]", items)
	}
	if got := src.MaxPages(); got != 2 {
		t.Errorf("MaxPages after page 0 = %d, want 2 (optimistic)", got)
	}

	page, err = src.GetPage(ctx, 2)
	if err != nil {
		t.Fatalf("GetPage(2) error: %v", err)
	}
	if items := page.([]int); len(items) != 1 || items[0] != 4 {
		t.Errorf("page 2 = %v, want [4]", items)
	}
	if got := src.MaxPages(); got != 3 {
		t.Errorf("MaxPages after exhaustion = %d, want 3 (exact)", got)
	}

	// Exhausted sources serve straight from the buffer.
	page, err = src.GetPage(ctx, 0)
	if err != nil {
		t.Fatalf("GetPage(0) after exhaustion error: %v", err)
	}
	if items := page.([]int); len(items) != 2 {
		t.Errorf("page 0 after exhaustion has %d items, want 2", len(items))
	}
}

func TestStreamSourceExhaustedExactCount(t *testing.T) {
	tests := []struct {
		name     string
		items    int
		pageSize int
		want     int
	}{
		{"empty", 0, 2, 0},
		{"partial page", 1, 2, 1},
		{"exact pages", 4, 2, 2},
		{"remainder", 5, 2, 3},
	}

	ctx := context.Background()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := NewStreamSource(SliceIterator(numbers(tt.items)), tt.pageSize, intFormat)
			if err != nil {
				t.Fatalf("NewStreamSource error: %v", err)
			}

			// Walk forward until the producer is exhausted.
			for i := 0; i < tt.items+1; i++ {
				if _, err := src.GetPage(ctx, i); err != nil {
					t.Fatalf("GetPage(%d) error: %v", i, err)
				}
				if src.exhausted {
					break
				}
			}

			if got := src.MaxPages(); got != tt.want {
				t.Errorf("MaxPages = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStreamSourceMonotonicMaxPages(t *testing.T) {
	src, err := NewStreamSource(SliceIterator(numbers(10)), 2, intFormat)
	if err != nil {
		t.Fatalf("NewStreamSource error: %v", err)
	}

	ctx := context.Background()
	prev := src.MaxPages()
	for _, index := range []int{0, 1, 0, 2, 1, 3, 4} {
		if _, err := src.GetPage(ctx, index); err != nil {
			t.Fatalf("GetPage(%d) error: %v", index, err)
		}
		got := src.MaxPages()
		if got < prev {
			t.Errorf("MaxPages decreased from %d to %d after page %d", prev, got, index)
		}
		prev = got
	}
}

func TestStreamSourceProducerError(t *testing.T) {
	boom := errors.New("producer broke")
	calls := 0
	iterator := IteratorFunc[int](func(context.Context) (int, error) {
		calls++
		if calls > 2 {
			return 0, boom
		}
		return calls, nil
	})

	src, err := NewStreamSource(iterator, 2, intFormat)
	if err != nil {
		t.Fatalf("NewStreamSource error: %v", err)
	}

	_, err = src.GetPage(context.Background(), 0)
	if !errors.Is(err, boom) {
		t.Errorf("GetPage error = %v, want %v", err, boom)
	}
	if src.exhausted {
		t.Error("producer failure must not mark the source exhausted")
	}
}

func TestFromSeq(t *testing.T) {
	seq := func(yield func(int) bool) {
		for i := 0; i < 3; i++ {
			if !yield(i) {
				return
			}
		}
	}

	it := FromSeq(seq)
	ctx := context.Background()
	for want := 0; want < 3; want++ {
		got, err := it.Next(ctx)
		if err != nil {
			t.Fatalf("Next error: %v", err)
		}
		if got != want {
			t.Errorf("Next = %d, want %d", got, want)
		}
	}
	if _, err := it.Next(ctx); !errors.Is(err, End) {
		t.Errorf("Next after exhaustion = %v, want End", err)
	}
}
