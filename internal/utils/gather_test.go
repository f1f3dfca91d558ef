package utils

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestGatherKeepsResultOrder(t *testing.T) {
	results := Gather(context.Background(), 4, func(ctx context.Context, i int) (int, error) {
		// Later branches finish first to prove order comes from the index.
		time.Sleep(time.Duration(4-i) * time.Millisecond)
		return i * 10, nil
	})

	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	for i, result := range results {
		if result.Index != i || result.Err != nil || result.Value != i*10 {
			t.Fatalf("unexpected result at %d: %#v", i, result)
		}
	}
}

func TestGatherCollectsPartialFailures(t *testing.T) {
	wantErr := errors.New("branch down")
	results := Gather(context.Background(), 3, func(ctx context.Context, i int) (string, error) {
		if i == 1 {
			return "", wantErr
		}
		return fmt.Sprintf("value-%d", i), nil
	})

	if results[0].Err != nil || results[2].Err != nil {
		t.Fatalf("healthy branches should not fail: %v, %v", results[0].Err, results[2].Err)
	}
	if !errors.Is(results[1].Err, wantErr) {
		t.Fatalf("expected branch error, got %v", results[1].Err)
	}
	if results[0].Value != "value-0" || results[2].Value != "value-2" {
		t.Fatalf("unexpected values: %q, %q", results[0].Value, results[2].Value)
	}
}

func TestGatherRecoversPanics(t *testing.T) {
	results := Gather(context.Background(), 2, func(ctx context.Context, i int) (int, error) {
		if i == 0 {
			panic("boom")
		}
		return 7, nil
	})

	if results[0].Err == nil {
		t.Fatal("expected panic to surface as an error")
	}
	if results[1].Err != nil || results[1].Value != 7 {
		t.Fatalf("sibling branch should survive a panic: %#v", results[1])
	}
}

func TestGatherZeroBranches(t *testing.T) {
	results := Gather(context.Background(), 0, func(ctx context.Context, i int) (int, error) {
		t.Fatal("fn should not be called")
		return 0, nil
	})
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
}
