package utils

import (
	"context"
	"fmt"
	"sync"
)

// Result is the outcome of one Gather branch.
type Result[T any] struct {
	Index int
	Value T
	Err   error
}

// Gather runs fn for every index concurrently and waits for all branches.
// A failing branch never cancels its siblings; the caller inspects each
// Result and decides what to drop. Panics are captured as branch errors so
// one bad branch cannot take down the batch.
func Gather[T any](ctx context.Context, n int, fn func(ctx context.Context, i int) (T, error)) []Result[T] {
	results := make([]Result[T], n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					results[i] = Result[T]{Index: i, Err: fmt.Errorf("gather branch %d panicked: %v", i, r)}
				}
			}()
			value, err := fn(ctx, i)
			results[i] = Result[T]{Index: i, Value: value, Err: err}
		}(i)
	}
	wg.Wait()
	return results
}
