package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventTypeString(t *testing.T) {
	testCases := []struct {
		eventType EventType
		expected  string
	}{
		{EventTypeCreated, "created"},
		{EventTypeModified, "modified"},
		{EventTypeDeleted, "deleted"},
		{EventTypeRenamed, "renamed"},
		{EventType(42), "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.eventType.String())
		})
	}
}

func TestDebouncerCoalesces(t *testing.T) {
	d := newDebouncer(50 * time.Millisecond)
	defer d.stop()

	d.add(ChangeEvent{Type: EventTypeCreated, Path: "b.json"})
	d.add(ChangeEvent{Type: EventTypeModified, Path: "a.json"})
	d.add(ChangeEvent{Type: EventTypeModified, Path: "b.json"})

	select {
	case events := <-d.output:
		require.Len(t, events, 2)
		assert.Equal(t, "a.json", events[0].Path)
		assert.Equal(t, "b.json", events[1].Path)
		assert.Equal(t, EventTypeModified, events[1].Type, "last event per path wins")
	case <-time.After(2 * time.Second):
		t.Fatal("debouncer never flushed")
	}

	select {
	case events := <-d.output:
		t.Fatalf("unexpected second batch: %v", events)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcherReportsSettledChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flyer-config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

	w, err := New(path, 100*time.Millisecond, nil)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(w.Path()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls int32
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(_ context.Context, events []ChangeEvent) error {
			atomic.AddInt32(&calls, 1)
			return nil
		})
	}()

	// give the watch loop a moment to start selecting
	time.Sleep(50 * time.Millisecond)

	// a sibling file must not trigger the handler
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte(`{}`), 0o644))
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte(`{"layout":{"active":"2-fold"}}`), 0o644))
	}

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&calls) >= 1 }, 3*time.Second, 20*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls), "burst of writes settles into one batch")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestNewRejectsMissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing", "flyer-config.json"), 0, nil)
	assert.Error(t, err)
}
