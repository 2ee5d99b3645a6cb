package reference

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
)

const (
	Min = 100000
	Max = 999999
)

// Generator draws reference numbers. Nothing is persisted here.
type Generator struct {
	intN func(n int) int
}

func NewGenerator() Generator { return Generator{intN: rand.IntN} }

// NewGeneratorWithSource is for deterministic tests.
func NewGeneratorWithSource(intN func(n int) int) Generator { return Generator{intN: intN} }

// Next returns a single random number in [Min, Max].
func (g Generator) Next() string {
	return strconv.Itoa(Min + g.intN(Max-Min+1))
}

// MaxBatch is the most lines a single take may carry.
const MaxBatch = 100

// Batch returns n consecutive numbers from one random base. The base is
// drawn so that the last number still has six digits.
func (g Generator) Batch(n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	if n > MaxBatch {
		return nil, fmt.Errorf("%w: %d lines, at most %d", ErrBatchSize, n, MaxBatch)
	}
	base := Min + g.intN(Max-Min+2-n)
	out := make([]string, n)
	for i := range out {
		out[i] = strconv.Itoa(base + i)
	}
	return out, nil
}

const defaultAttempts = 8

// Allocator hands out batches that are unique across the whole history by
// checking the reference_numbers table and retrying on collision.
type Allocator struct {
	gen      Generator
	attempts int
}

func NewAllocator(gen Generator) *Allocator {
	return &Allocator{gen: gen, attempts: defaultAttempts}
}

// Allocate must run inside the same db transaction as the take insert so
// that the reservation and the transaction commit together.
func (a *Allocator) Allocate(ctx context.Context, repo Repository, txID string, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	for i := 0; i < a.attempts; i++ {
		batch, err := a.gen.Batch(n)
		if err != nil {
			return nil, err
		}
		taken, err := repo.Exists(ctx, batch)
		if err != nil {
			return nil, err
		}
		if len(taken) > 0 {
			continue
		}
		if err := repo.Reserve(ctx, txID, batch); err != nil {
			return nil, err
		}
		return batch, nil
	}
	return nil, fmt.Errorf("%w after %d attempts", ErrExhausted, a.attempts)
}
