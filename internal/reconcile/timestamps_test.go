package reconcile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeTimeSource struct {
	mu     sync.Mutex
	times  map[uint64]uint64
	failAt map[uint64]bool
	calls  int
}

func (f *fakeTimeSource) BlockTimestamp(_ context.Context, number uint64) (uint64, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.failAt[number] {
		return 0, errors.New("header fetch failed")
	}
	return f.times[number], nil
}

func TestResolveTimestamps(t *testing.T) {
	src := &fakeTimeSource{times: map[uint64]uint64{
		100: 1700000000,
		200: 1700000600,
	}}

	got := ResolveTimestamps(context.Background(), src, []uint64{100, 200}, 4, nil)

	if len(got) != 2 {
		t.Fatalf("resolved %d blocks, want 2", len(got))
	}
	if want := time.Unix(1700000000, 0).UTC(); !got[100].Equal(want) {
		t.Fatalf("block 100 at %v, want %v", got[100], want)
	}
}

func TestResolveTimestampsPartialFailure(t *testing.T) {
	src := &fakeTimeSource{
		times:  make(map[uint64]uint64),
		failAt: map[uint64]bool{5: true},
	}
	blocks := make([]uint64, 0, 10)
	for i := uint64(1); i <= 10; i++ {
		blocks = append(blocks, i)
		src.times[i] = 1700000000 + i
	}

	got := ResolveTimestamps(context.Background(), src, blocks, 3, nil)

	if len(got) != 9 {
		t.Fatalf("resolved %d blocks, want 9", len(got))
	}
	if _, ok := got[5]; ok {
		t.Fatal("failed block present in result")
	}
	for _, n := range blocks {
		if n == 5 {
			continue
		}
		if want := time.Unix(int64(1700000000+n), 0).UTC(); !got[n].Equal(want) {
			t.Fatalf("block %d at %v, want %v", n, got[n], want)
		}
	}
}

func TestResolveTimestampsEmpty(t *testing.T) {
	src := &fakeTimeSource{}
	got := ResolveTimestamps(context.Background(), src, nil, 0, nil)
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
	if src.calls != 0 {
		t.Fatalf("expected no lookups, got %d", src.calls)
	}
}
