package stats

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeRecorder struct {
	mu     sync.Mutex
	users  map[int64]string
	counts map[string]int
	err    error
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{
		users:  make(map[int64]string),
		counts: make(map[string]int),
	}
}

func (f *fakeRecorder) UpsertUser(_ context.Context, userID int64, firstName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.users[userID] = firstName
	return nil
}

func (f *fakeRecorder) Increment(_ context.Context, action string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.counts[action]++
	return nil
}

func TestServiceRecords(t *testing.T) {
	rec := newFakeRecorder()
	svc := NewService(rec, time.Second)

	svc.TrackUser(context.Background(), 42, "Raj")
	svc.TrackUser(context.Background(), 42, "Rajesh")
	svc.Count(context.Background(), "bot_starts")
	svc.Count(context.Background(), "bot_starts")
	svc.Count(context.Background(), "view_c_gsssb")

	if rec.users[42] != "Rajesh" {
		t.Errorf("name = %q, want refresh to Rajesh", rec.users[42])
	}
	if rec.counts["bot_starts"] != 2 || rec.counts["view_c_gsssb"] != 1 {
		t.Errorf("counts = %v", rec.counts)
	}
}

func TestServiceSwallowsStorageErrors(t *testing.T) {
	rec := newFakeRecorder()
	rec.err = errors.New("connection refused")
	svc := NewService(rec, time.Second)

	// Must not panic or surface the error to callers.
	svc.TrackUser(context.Background(), 1, "x")
	svc.Count(context.Background(), "bot_starts")
}

func TestServiceIgnoresEmptyCounter(t *testing.T) {
	rec := newFakeRecorder()
	svc := NewService(rec, time.Second)
	svc.Count(context.Background(), "")
	if len(rec.counts) != 0 {
		t.Errorf("empty counter recorded: %v", rec.counts)
	}
}

func TestServiceConcurrentCounts(t *testing.T) {
	rec := newFakeRecorder()
	svc := NewService(rec, time.Second)

	var wg sync.WaitGroup
	const n = 50
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.Count(context.Background(), "bot_starts")
		}()
	}
	wg.Wait()

	if rec.counts["bot_starts"] != n {
		t.Errorf("count = %d, want %d", rec.counts["bot_starts"], n)
	}
}

func TestNilServiceIsSafe(t *testing.T) {
	var svc *Service
	svc.TrackUser(context.Background(), 1, "x")
	svc.Count(context.Background(), "y")
}
