package hatch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/FutureGUIs/hatchrest/internal/babyrest"
)

// Polling defaults.
const (
	// defaultPollInterval is how often the coordinator refreshes device state.
	defaultPollInterval = 30 * time.Second

	// defaultRefreshTimeout bounds a single refresh attempt.
	defaultRefreshTimeout = 10 * time.Second
)

// Logger is the structured logging interface used across the bridge.
// Satisfied by logging.Logger.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// DeviceClient is the device surface the coordinator polls.
// Satisfied by *babyrest.Device; mocked in tests.
type DeviceClient interface {
	// RefreshData reads the device state.
	RefreshData(ctx context.Context) (babyrest.State, error)

	// Address returns the device's Bluetooth MAC address.
	Address() string

	// Name returns the advertised device name (may be empty).
	Name() string

	// Disconnect tears down the BLE link.
	Disconnect() error
}

// Listener is notified after every completed refresh attempt.
//
// On success, state is the fresh snapshot and err is nil. On failure,
// state is the retained previous snapshot and err describes the failure.
type Listener func(state babyrest.State, err error)

// Coordinator owns the polling loop for one device.
//
// It refreshes the device on a fixed interval, retains the last good
// snapshot across failures, and fans each outcome out to registered
// listeners. At most one refresh is in flight at a time; a manual
// Refresh during a scheduled poll waits its turn.
//
// Thread Safety: All methods are safe for concurrent use.
type Coordinator struct {
	client         DeviceClient
	interval       time.Duration
	refreshTimeout time.Duration

	// refreshMu serialises refresh attempts.
	refreshMu sync.Mutex

	// snapshot is the last good state; retained across failures.
	snapshot     babyrest.State
	lastErr      error
	lastSuccess  bool
	lastDuration time.Duration
	hasData      bool
	stateMu      sync.RWMutex

	// listeners receive every refresh outcome, in registration order.
	listeners      []registeredListener
	nextListenerID int
	listenerMu     sync.RWMutex

	// Shutdown coordination
	done      chan struct{}
	wg        sync.WaitGroup
	stopOnce  sync.Once
	ctx       context.Context
	ctxCancel context.CancelFunc

	// Logger (optional)
	logger   Logger
	loggerMu sync.RWMutex
}

// CoordinatorOptions holds configuration for creating a coordinator.
type CoordinatorOptions struct {
	// Client is the device to poll. Required.
	Client DeviceClient

	// Interval between polls. Default: 30 seconds.
	Interval time.Duration

	// RefreshTimeout bounds a single refresh. Default: 10 seconds.
	RefreshTimeout time.Duration

	// Logger is optional structured logging.
	Logger Logger
}

// NewCoordinator creates a coordinator. Call Start to begin polling.
func NewCoordinator(opts CoordinatorOptions) *Coordinator {
	interval := opts.Interval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	refreshTimeout := opts.RefreshTimeout
	if refreshTimeout <= 0 {
		refreshTimeout = defaultRefreshTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Coordinator{
		client:         opts.Client,
		interval:       interval,
		refreshTimeout: refreshTimeout,
		done:           make(chan struct{}),
		ctx:            ctx,
		ctxCancel:      cancel,
		logger:         opts.Logger,
	}
}

// AddListener registers a listener for refresh outcomes.
// Listeners are invoked synchronously, in registration order, after each
// attempt completes. They must not block for long.
//
// Returns:
//   - func(): Removes the listener; safe to call more than once
func (c *Coordinator) AddListener(l Listener) func() {
	c.listenerMu.Lock()
	id := c.nextListenerID
	c.nextListenerID++
	c.listeners = append(c.listeners, registeredListener{id: id, fn: l})
	c.listenerMu.Unlock()

	return func() {
		c.listenerMu.Lock()
		for i, reg := range c.listeners {
			if reg.id == id {
				c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
				break
			}
		}
		c.listenerMu.Unlock()
	}
}

// registeredListener pairs a listener with its removal handle.
type registeredListener struct {
	id int
	fn Listener
}

// Start begins the polling loop. An initial refresh runs immediately,
// then one per interval. Call Stop to shut down.
func (c *Coordinator) Start() {
	c.wg.Add(1)
	go c.pollLoop()
}

// pollLoop drives scheduled refreshes until Stop.
func (c *Coordinator) pollLoop() {
	defer c.wg.Done()

	// Initial refresh before the first tick
	c.refreshAndNotify()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.refreshAndNotify()
		}
	}
}

// Refresh performs an immediate refresh outside the schedule, for
// example after a command write. The outcome is fanned out to listeners
// like any scheduled poll.
//
// Returns:
//   - error: The classified refresh error, or nil on success
func (c *Coordinator) Refresh() error {
	return c.refreshAndNotify()
}

// refreshAndNotify runs one refresh attempt and notifies listeners.
func (c *Coordinator) refreshAndNotify() error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	// Shutdown may have started while waiting for the lock
	select {
	case <-c.done:
		return context.Canceled
	default:
	}

	ctx, cancel := context.WithTimeout(c.ctx, c.refreshTimeout)
	defer cancel()

	started := time.Now()
	state, err := c.client.RefreshData(ctx)
	duration := time.Since(started)
	err = classifyRefreshError(err)

	c.stateMu.Lock()
	if err == nil {
		c.snapshot = state
		c.hasData = true
	}
	c.lastErr = err
	c.lastSuccess = err == nil
	c.lastDuration = duration
	snapshot := c.snapshot
	c.stateMu.Unlock()

	if errors.Is(err, context.Canceled) {
		// Shutdown race; nothing to report
		return err
	}

	if err != nil {
		c.logWarn("refresh failed", "device", c.client.Address(), "error", err)
	} else {
		c.logDebug("refresh complete", "device", c.client.Address(), "power", snapshot.Power)
	}

	c.notify(snapshot, err)
	return err
}

// classifyRefreshError maps raw refresh errors onto the stable failure
// causes. Errors that are neither timeouts nor transport failures pass
// through unchanged.
func classifyRefreshError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return &UpdateFailedError{Cause: CauseTimeout, Err: err}
	case errors.Is(err, babyrest.ErrTransport), errors.Is(err, babyrest.ErrNotConnected):
		return &UpdateFailedError{Cause: CauseFetchFailed, Err: err}
	default:
		return err
	}
}

// notify fans a refresh outcome out to all listeners.
func (c *Coordinator) notify(state babyrest.State, err error) {
	c.listenerMu.RLock()
	listeners := make([]registeredListener, len(c.listeners))
	copy(listeners, c.listeners)
	c.listenerMu.RUnlock()

	for _, reg := range listeners {
		reg.fn(state, err)
	}
}

// Snapshot returns the last good device state. The zero State is
// returned until the first successful refresh.
func (c *Coordinator) Snapshot() babyrest.State {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.snapshot
}

// HasData reports whether at least one refresh has succeeded.
func (c *Coordinator) HasData() bool {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.hasData
}

// LastError returns the error from the most recent refresh attempt, or
// nil if it succeeded.
func (c *Coordinator) LastError() error {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.lastErr
}

// LastRefreshDuration returns how long the most recent refresh attempt
// took, successful or not. Zero until the first attempt completes.
func (c *Coordinator) LastRefreshDuration() time.Duration {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.lastDuration
}

// LastUpdateSuccess reports whether the most recent refresh succeeded.
func (c *Coordinator) LastUpdateSuccess() bool {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.lastSuccess
}

// Stop halts polling and waits for any in-flight refresh to finish.
// Safe to call multiple times. Listeners receive no further
// notifications after Stop returns.
func (c *Coordinator) Stop() {
	c.stopOnce.Do(func() {
		close(c.done)
		c.ctxCancel()
		c.wg.Wait()
		c.logInfo("coordinator stopped", "device", c.client.Address())
	})
}

// SetLogger sets the logger for this coordinator.
func (c *Coordinator) SetLogger(logger Logger) {
	c.loggerMu.Lock()
	c.logger = logger
	c.loggerMu.Unlock()
}

func (c *Coordinator) getLogger() Logger {
	c.loggerMu.RLock()
	defer c.loggerMu.RUnlock()
	return c.logger
}

func (c *Coordinator) logDebug(msg string, keysAndValues ...any) {
	if l := c.getLogger(); l != nil {
		l.Debug(msg, keysAndValues...)
	}
}

func (c *Coordinator) logInfo(msg string, keysAndValues ...any) {
	if l := c.getLogger(); l != nil {
		l.Info(msg, keysAndValues...)
	}
}

func (c *Coordinator) logWarn(msg string, keysAndValues ...any) {
	if l := c.getLogger(); l != nil {
		l.Warn(msg, keysAndValues...)
	}
}
