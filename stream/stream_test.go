package stream

import (
	"context"
	"errors"
	"strconv"
	"testing"
)

func TestFromSlice_Collect(t *testing.T) {
	got, err := Collect(context.Background(), FromSlice([]int{1, 2, 3}))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Errorf("got %v, want [1 2 3]", got)
	}
}

func TestFromSlice_Empty(t *testing.T) {
	got, err := Collect(context.Background(), FromSlice([]int{}))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty, got %v", got)
	}
}

func TestTake(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{0, 5},
		{-1, 5},
		{2, 2},
		{10, 5},
	}
	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.n), func(t *testing.T) {
			got, err := Collect(context.Background(), Take(FromSlice([]int{1, 2, 3, 4, 5}), tt.n))
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != tt.want {
				t.Errorf("expected %d values, got %d", tt.want, len(got))
			}
		})
	}
}

func TestMap(t *testing.T) {
	it := Map(FromSlice([]int{1, 2}), func(_ context.Context, n int) (string, error) {
		return strconv.Itoa(n * 10), nil
	})
	got, err := Collect(context.Background(), it)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != "10" || got[1] != "20" {
		t.Errorf("got %v", got)
	}
}

func TestFromFunc_ErrorAndClose(t *testing.T) {
	boom := errors.New("boom")
	closed := false
	calls := 0
	it := FromFunc(func(_ context.Context) (int, bool, error) {
		calls++
		if calls == 2 {
			return 0, false, boom
		}
		return calls, true, nil
	}, func() error {
		closed = true
		return nil
	})

	got, err := Collect(context.Background(), it)
	if !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected 1 value before error, got %v", got)
	}
	if !closed {
		t.Error("expected iterator to be closed")
	}
}

func TestForEach_StopsOnError(t *testing.T) {
	stop := errors.New("stop")
	seen := 0
	err := ForEach(context.Background(), FromSlice([]int{1, 2, 3}), func(_ context.Context, n int) error {
		seen++
		if n == 2 {
			return stop
		}
		return nil
	})
	if !errors.Is(err, stop) {
		t.Errorf("expected stop, got %v", err)
	}
	if seen != 2 {
		t.Errorf("expected 2 calls, got %d", seen)
	}
}
