package reference

import (
	"context"
	"errors"
	"strconv"
	"testing"
)

func TestGenerator_NextInRange(t *testing.T) {
	g := NewGenerator()
	for i := 0; i < 500; i++ {
		s := g.Next()
		n, err := strconv.Atoi(s)
		if err != nil {
			t.Fatalf("not decimal: %q", s)
		}
		if n < Min || n > Max {
			t.Fatalf("out of range: %d", n)
		}
	}
}

func TestGenerator_BatchIsConsecutive(t *testing.T) {
	g := NewGeneratorWithSource(func(int) int { return 412240 })
	got, err := g.Batch(3)
	if err != nil {
		t.Fatalf("Batch: %v", err)
	}
	want := []string{"512240", "512241", "512242"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("batch[%d] = %s, want %s (all=%v)", i, got[i], want[i], got)
		}
	}
}

func TestGenerator_BatchStaysSixDigits(t *testing.T) {
	// source returns the largest allowed offset
	g := NewGeneratorWithSource(func(n int) int { return n - 1 })
	got, err := g.Batch(5)
	if err != nil {
		t.Fatalf("Batch: %v", err)
	}
	if got[len(got)-1] != "999999" {
		t.Fatalf("last = %s, want 999999", got[len(got)-1])
	}
	for _, s := range got {
		if len(s) != 6 {
			t.Fatalf("not six digits: %q", s)
		}
	}
}

func TestGenerator_BatchDistinctRandom(t *testing.T) {
	g := NewGenerator()
	for round := 0; round < 50; round++ {
		got, err := g.Batch(10)
		if err != nil {
			t.Fatalf("Batch: %v", err)
		}
		first, _ := strconv.Atoi(got[0])
		for i, s := range got {
			n, _ := strconv.Atoi(s)
			if n != first+i {
				t.Fatalf("not consecutive: %v", got)
			}
		}
	}
}

func TestGenerator_BatchTooLarge(t *testing.T) {
	g := NewGenerator()
	if got, err := g.Batch(MaxBatch); err != nil || len(got) != MaxBatch {
		t.Fatalf("Batch(MaxBatch) = %d numbers, %v", len(got), err)
	}
	for _, n := range []int{MaxBatch + 1, Max - Min + 2} {
		got, err := g.Batch(n)
		if !errors.Is(err, ErrBatchSize) {
			t.Fatalf("Batch(%d): want ErrBatchSize, got %v", n, err)
		}
		if got != nil {
			t.Fatalf("Batch(%d) returned numbers: %d", n, len(got))
		}
	}
}

type fakeRepo struct {
	taken    map[string]bool
	reserved []string
	existsFn func([]string) ([]string, error)
}

func (f *fakeRepo) Exists(_ context.Context, numbers []string) ([]string, error) {
	if f.existsFn != nil {
		return f.existsFn(numbers)
	}
	var out []string
	for _, n := range numbers {
		if f.taken[n] {
			out = append(out, n)
		}
	}
	return out, nil
}
func (f *fakeRepo) Reserve(_ context.Context, _ string, numbers []string) error {
	f.reserved = append(f.reserved, numbers...)
	return nil
}
func (f *fakeRepo) Resolve(context.Context, []string) (map[string]string, error) { return nil, nil }
func (f *fakeRepo) ReleaseByTransaction(context.Context, string) error { return nil }
func (f *fakeRepo) ReleaseAll(context.Context) error { return nil }

func TestAllocator_RetriesOnCollision(t *testing.T) {
	bases := []int{0, 0, 500}
	call := 0
	g := NewGeneratorWithSource(func(int) int {
		b := bases[call]
		call++
		return b
	})
	repo := &fakeRepo{taken: map[string]bool{"100001": true}}
	got, err := NewAllocator(g).Allocate(context.Background(), repo, "tx-1", 2)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if got[0] != "100500" || got[1] != "100501" {
		t.Fatalf("unexpected batch %v", got)
	}
	if call != 3 {
		t.Fatalf("expected 3 draws, got %d", call)
	}
	if len(repo.reserved) != 2 {
		t.Fatalf("reserved = %v", repo.reserved)
	}
}

func TestAllocator_Exhausted(t *testing.T) {
	g := NewGeneratorWithSource(func(int) int { return 0 })
	repo := &fakeRepo{taken: map[string]bool{"100000": true}}
	_, err := NewAllocator(g).Allocate(context.Background(), repo, "tx-1", 1)
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("want ErrExhausted, got %v", err)
	}
	if len(repo.reserved) != 0 {
		t.Fatalf("nothing should be reserved, got %v", repo.reserved)
	}
}

func TestAllocator_BatchTooLarge(t *testing.T) {
	repo := &fakeRepo{existsFn: func([]string) ([]string, error) {
		t.Fatalf("store must not be consulted")
		return nil, nil
	}}
	_, err := NewAllocator(NewGenerator()).Allocate(context.Background(), repo, "tx-1", MaxBatch+1)
	if !errors.Is(err, ErrBatchSize) {
		t.Fatalf("want ErrBatchSize, got %v", err)
	}
	if len(repo.reserved) != 0 {
		t.Fatalf("nothing should be reserved, got %v", repo.reserved)
	}
}

func TestAllocator_StoreError(t *testing.T) {
	boom := errors.New("boom")
	repo := &fakeRepo{existsFn: func([]string) ([]string, error) { return nil, boom }}
	_, err := NewAllocator(NewGenerator()).Allocate(context.Background(), repo, "tx-1", 3)
	if !errors.Is(err, boom) {
		t.Fatalf("want boom, got %v", err)
	}
}
