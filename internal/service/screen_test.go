package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestScreen_Phases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		rows  []int
		err   error
		phase Phase
	}{
		{"loaded", []int{1}, nil, PhaseLoaded},
		{"empty", []int{}, nil, PhaseEmpty},
		{"error", nil, errors.New("boom"), PhaseError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := NewListScreen[int]()
			var seen []Phase
			s.OnChange(func(v ScreenState[[]int]) { seen = append(seen, v.Phase) })

			v, ok := s.Load(context.Background(), func(context.Context) ([]int, error) {
				return tt.rows, tt.err
			}, "p")
			if !ok {
				t.Fatal("Load() result dropped")
			}
			if v.Phase != tt.phase {
				t.Errorf("phase = %v, want %v", v.Phase, tt.phase)
			}
			if len(seen) != 2 || seen[0] != PhaseLoading || seen[1] != tt.phase {
				t.Errorf("transitions = %v, want [loading %v]", seen, tt.phase)
			}
			if (v.Err != nil) != (tt.err != nil) {
				t.Errorf("err = %v, want %v", v.Err, tt.err)
			}
		})
	}
}

func TestScreen_LatestRequestWins(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	s := NewScreen[string](nil)
	slowStarted := make(chan struct{})
	releaseSlow := make(chan struct{})

	var wg sync.WaitGroup
	var slowOK bool
	var slowCtxErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, slowOK = s.Load(context.Background(), func(ctx context.Context) (string, error) {
			close(slowStarted)
			<-releaseSlow
			slowCtxErr = ctx.Err()
			return "stale", nil
		}, "range", "2024-01")
	}()
	<-slowStarted

	v, ok := s.Load(context.Background(), func(context.Context) (string, error) {
		return "fresh", nil
	}, "range", "2024-02")
	if !ok || v.Data != "fresh" {
		t.Fatalf("second Load() = (%+v, %v)", v, ok)
	}

	close(releaseSlow)
	wg.Wait()

	if slowOK {
		t.Error("superseded Load() reported its result as applied")
	}
	if !errors.Is(slowCtxErr, context.Canceled) {
		t.Errorf("superseded request context err = %v, want canceled", slowCtxErr)
	}
	cur := s.Current()
	if cur.Data != "fresh" || cur.Key != RequestKey("range", "2024-02") {
		t.Errorf("Current() = %+v, want fresh result", cur)
	}
}

func TestScreen_UnmountDropsResult(t *testing.T) {
	t.Parallel()

	s := NewScreen[int](nil)
	started := make(chan struct{})
	done := make(chan ScreenState[int])
	go func() {
		v, ok := s.Load(context.Background(), func(ctx context.Context) (int, error) {
			close(started)
			<-ctx.Done()
			return 42, nil
		})
		if ok {
			t.Error("result applied after Unmount")
		}
		done <- v
	}()
	<-started
	s.Unmount()

	select {
	case v := <-done:
		if v.Data == 42 {
			t.Errorf("state after Unmount = %+v", v)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Load() did not return after Unmount")
	}
	if s.Mounted() {
		t.Error("Mounted() = true after Unmount")
	}
	if _, ok := s.Load(context.Background(), func(context.Context) (int, error) { return 1, nil }); ok {
		t.Error("Load() after Unmount should be dropped")
	}
}

func TestRequestKey(t *testing.T) {
	t.Parallel()

	if RequestKey("a", "b") != RequestKey("a", "b") {
		t.Error("RequestKey is not deterministic")
	}
	if RequestKey("a", "b") == RequestKey("ab") {
		t.Error("RequestKey must separate parameters")
	}
}
