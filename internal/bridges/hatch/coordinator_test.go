package hatch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/FutureGUIs/hatchrest/internal/babyrest"
)

// fakeDevice implements Device for tests.
type fakeDevice struct {
	mu    sync.Mutex
	state babyrest.State
	err   error
	delay time.Duration

	refreshCalls  int32
	inFlight      int32
	maxInFlight   int32
	disconnected  bool
	powerCommands []bool
}

func (f *fakeDevice) RefreshData(ctx context.Context) (babyrest.State, error) {
	atomic.AddInt32(&f.refreshCalls, 1)

	current := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	for {
		max := atomic.LoadInt32(&f.maxInFlight)
		if current <= max || atomic.CompareAndSwapInt32(&f.maxInFlight, max, current) {
			break
		}
	}

	f.mu.Lock()
	delay := f.delay
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return babyrest.State{}, ctx.Err()
		case <-time.After(delay):
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return babyrest.State{}, f.err
	}
	return f.state, nil
}

func (f *fakeDevice) Address() string { return "AA:BB:CC:DD:EE:FF" }
func (f *fakeDevice) Name() string    { return "Nursery Rest" }

func (f *fakeDevice) Disconnect() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disconnected = true
	return nil
}

func (f *fakeDevice) SetPower(ctx context.Context, on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.powerCommands = append(f.powerCommands, on)
	f.state.Power = on
	return nil
}

func (f *fakeDevice) SetColour(ctx context.Context, red, green, blue, brightness int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.Red, f.state.Green, f.state.Blue, f.state.Brightness = red, green, blue, brightness
	return nil
}

func (f *fakeDevice) SetSound(ctx context.Context, track int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.Sound = track
	return nil
}

func (f *fakeDevice) SetVolume(ctx context.Context, volume int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.Volume = volume
	return nil
}

func (f *fakeDevice) setError(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *fakeDevice) setState(s babyrest.State) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
}

func TestCoordinator_RefreshSuccess(t *testing.T) {
	dev := &fakeDevice{}
	dev.setState(babyrest.State{Power: true, Brightness: 200})

	c := NewCoordinator(CoordinatorOptions{Client: dev})

	if err := c.Refresh(); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	if !c.HasData() {
		t.Error("HasData() = false after successful refresh")
	}
	if !c.LastUpdateSuccess() {
		t.Error("LastUpdateSuccess() = false after successful refresh")
	}
	if c.LastError() != nil {
		t.Errorf("LastError() = %v, want nil", c.LastError())
	}
	if got := c.Snapshot(); !got.Power || got.Brightness != 200 {
		t.Errorf("Snapshot() = %+v, want power on, brightness 200", got)
	}
}

func TestCoordinator_TimeoutClassified(t *testing.T) {
	dev := &fakeDevice{delay: 200 * time.Millisecond}

	c := NewCoordinator(CoordinatorOptions{
		Client:         dev,
		RefreshTimeout: 20 * time.Millisecond,
	})

	err := c.Refresh()
	if err == nil {
		t.Fatal("Refresh() expected error")
	}

	var updateErr *UpdateFailedError
	if !errors.As(err, &updateErr) {
		t.Fatalf("Refresh() error = %T, want *UpdateFailedError", err)
	}
	if updateErr.Cause != CauseTimeout {
		t.Errorf("Cause = %q, want %q", updateErr.Cause, CauseTimeout)
	}
	if err.Error() != CauseTimeout {
		t.Errorf("Error() = %q, want %q", err.Error(), CauseTimeout)
	}
}

func TestCoordinator_TransportFailureClassified(t *testing.T) {
	dev := &fakeDevice{}
	dev.setError(babyrest.ErrTransport)

	c := NewCoordinator(CoordinatorOptions{Client: dev})

	err := c.Refresh()
	var updateErr *UpdateFailedError
	if !errors.As(err, &updateErr) {
		t.Fatalf("Refresh() error = %T, want *UpdateFailedError", err)
	}
	if updateErr.Cause != CauseFetchFailed {
		t.Errorf("Cause = %q, want %q", updateErr.Cause, CauseFetchFailed)
	}
	if !errors.Is(err, babyrest.ErrTransport) {
		t.Error("expected wrapped transport error to survive errors.Is")
	}
}

func TestCoordinator_UnrecognisedErrorPassesThrough(t *testing.T) {
	sentinel := errors.New("something else entirely")
	dev := &fakeDevice{}
	dev.setError(sentinel)

	c := NewCoordinator(CoordinatorOptions{Client: dev})

	err := c.Refresh()
	if !errors.Is(err, sentinel) {
		t.Fatalf("Refresh() error = %v, want the original error", err)
	}

	var updateErr *UpdateFailedError
	if errors.As(err, &updateErr) {
		t.Error("unrecognised errors must not be reclassified")
	}
}

func TestCoordinator_SnapshotRetainedOnFailure(t *testing.T) {
	dev := &fakeDevice{}
	dev.setState(babyrest.State{Power: true, Red: 255})

	c := NewCoordinator(CoordinatorOptions{Client: dev})

	if err := c.Refresh(); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	dev.setError(babyrest.ErrTransport)
	if err := c.Refresh(); err == nil {
		t.Fatal("Refresh() expected error")
	}

	if got := c.Snapshot(); !got.Power || got.Red != 255 {
		t.Errorf("Snapshot() = %+v, want previous good state retained", got)
	}
	if c.LastUpdateSuccess() {
		t.Error("LastUpdateSuccess() = true after failed refresh")
	}
	if !c.HasData() {
		t.Error("HasData() = false despite an earlier success")
	}
}

func TestCoordinator_AtMostOneRefreshInFlight(t *testing.T) {
	dev := &fakeDevice{delay: 30 * time.Millisecond}

	c := NewCoordinator(CoordinatorOptions{
		Client:         dev,
		RefreshTimeout: time.Second,
	})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Refresh() //nolint:errcheck // Concurrency test
		}()
	}
	wg.Wait()

	if max := atomic.LoadInt32(&dev.maxInFlight); max != 1 {
		t.Errorf("max concurrent refreshes = %d, want 1", max)
	}
}

func TestCoordinator_ListenersNotified(t *testing.T) {
	dev := &fakeDevice{}
	dev.setState(babyrest.State{Power: true})

	c := NewCoordinator(CoordinatorOptions{Client: dev})

	var mu sync.Mutex
	var outcomes []error
	c.AddListener(func(state babyrest.State, err error) {
		mu.Lock()
		outcomes = append(outcomes, err)
		mu.Unlock()
	})

	c.Refresh() //nolint:errcheck // Outcome captured via listener
	dev.setError(babyrest.ErrTransport)
	c.Refresh() //nolint:errcheck // Outcome captured via listener

	mu.Lock()
	defer mu.Unlock()
	if len(outcomes) != 2 {
		t.Fatalf("listener called %d times, want 2", len(outcomes))
	}
	if outcomes[0] != nil {
		t.Errorf("first outcome = %v, want nil", outcomes[0])
	}
	if outcomes[1] == nil {
		t.Error("second outcome = nil, want refresh error")
	}
}

func TestCoordinator_RemoveListener(t *testing.T) {
	dev := &fakeDevice{}
	c := NewCoordinator(CoordinatorOptions{Client: dev})

	var kept, removed int32
	c.AddListener(func(state babyrest.State, err error) {
		atomic.AddInt32(&kept, 1)
	})
	remove := c.AddListener(func(state babyrest.State, err error) {
		atomic.AddInt32(&removed, 1)
	})

	c.Refresh() //nolint:errcheck
	remove()
	remove() // Safe to call again
	c.Refresh() //nolint:errcheck

	if got := atomic.LoadInt32(&kept); got != 2 {
		t.Errorf("kept listener called %d times, want 2", got)
	}
	if got := atomic.LoadInt32(&removed); got != 1 {
		t.Errorf("removed listener called %d times, want 1", got)
	}
}

func TestCoordinator_StopSuppressesNotifications(t *testing.T) {
	dev := &fakeDevice{}

	c := NewCoordinator(CoordinatorOptions{Client: dev})

	var notified int32
	c.AddListener(func(state babyrest.State, err error) {
		atomic.AddInt32(&notified, 1)
	})

	c.Start()
	// Let the initial refresh complete
	time.Sleep(50 * time.Millisecond)
	c.Stop()

	before := atomic.LoadInt32(&notified)

	// A manual refresh after Stop must not reach listeners
	if err := c.Refresh(); !errors.Is(err, context.Canceled) {
		t.Errorf("Refresh() after Stop error = %v, want context.Canceled", err)
	}
	if after := atomic.LoadInt32(&notified); after != before {
		t.Errorf("listener called %d times after Stop", after-before)
	}
}

func TestCoordinator_StopIdempotent(t *testing.T) {
	dev := &fakeDevice{}
	c := NewCoordinator(CoordinatorOptions{Client: dev})

	c.Start()
	c.Stop()
	c.Stop() // Must not panic
}

func TestCoordinator_PollLoopRuns(t *testing.T) {
	dev := &fakeDevice{}

	c := NewCoordinator(CoordinatorOptions{
		Client:   dev,
		Interval: 20 * time.Millisecond,
	})

	c.Start()
	time.Sleep(70 * time.Millisecond)
	c.Stop()

	if calls := atomic.LoadInt32(&dev.refreshCalls); calls < 2 {
		t.Errorf("refresh calls = %d, want at least 2 (initial + ticks)", calls)
	}
}
