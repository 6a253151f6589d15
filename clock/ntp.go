package clock

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/beevik/ntp"
	"go.uber.org/zap"
)

const (
	DefaultNTPServer      = "time.google.com"
	DefaultSyncInterval   = 5 * time.Minute
	DefaultBackoffInitial = 5 * time.Second
	DefaultBackoffMax     = 5 * time.Minute
)

// QueryFunc returns the offset of the local clock from server.
type QueryFunc func(server string) (time.Duration, error)

func queryNTP(server string) (time.Duration, error) {
	resp, err := ntp.Query(server)
	if err != nil {
		return 0, err
	}
	if err := resp.Validate(); err != nil {
		return 0, err
	}
	return resp.ClockOffset, nil
}

// NTP is the local clock corrected by the offset reported by an NTP server.
//
// Now never waits on the network. It reads the last known offset from an
// atomic and, once SyncInterval has elapsed, starts at most one background
// resync. Failed syncs keep the last known offset and retry with exponential
// backoff between BackoffInitial and BackoffMax.
type NTP struct {
	server          string
	syncInterval    time.Duration
	backoffInitial  time.Duration
	backoffMax      time.Duration
	unhealthyOffset time.Duration
	query           QueryFunc
	local           func() time.Time
	logger          *zap.Logger

	offset   atomic.Int64 // time.Duration
	nextSync atomic.Int64 // local unix nanos at which a resync is due
	syncing  atomic.Bool
	inflight sync.WaitGroup

	mu       sync.Mutex
	closed   bool
	lastSync time.Time
	backoff  time.Duration
	lastErr  error
}

type NTPOption func(*NTP)

// WithSyncInterval sets how long a successful sync stays fresh.
func WithSyncInterval(d time.Duration) NTPOption {
	return func(c *NTP) { c.syncInterval = d }
}

// WithBackoff sets the retry delay after the first failed sync and its cap.
func WithBackoff(initial, limit time.Duration) NTPOption {
	return func(c *NTP) {
		c.backoffInitial = initial
		c.backoffMax = limit
	}
}

// WithUnhealthyOffset makes Health report false when |offset| exceeds d.
func WithUnhealthyOffset(d time.Duration) NTPOption {
	return func(c *NTP) { c.unhealthyOffset = d }
}

// WithQuery replaces the NTP query, mainly so tests stay off the network.
func WithQuery(q QueryFunc) NTPOption {
	return func(c *NTP) { c.query = q }
}

// WithLocalClock replaces the uncorrected local time source.
func WithLocalClock(now func() time.Time) NTPOption {
	return func(c *NTP) { c.local = now }
}

// WithLogger sets the logger for sync results.
func WithLogger(l *zap.Logger) NTPOption {
	return func(c *NTP) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewNTP creates the clock and performs an initial sync before returning. A
// failed initial sync is not fatal: the offset stays zero and the error
// shows in Health.
func NewNTP(server string, opts ...NTPOption) *NTP {
	if server == "" {
		server = DefaultNTPServer
	}
	c := &NTP{
		server:         server,
		syncInterval:   DefaultSyncInterval,
		backoffInitial: DefaultBackoffInitial,
		backoffMax:     DefaultBackoffMax,
		query:          queryNTP,
		local:          func() time.Time { return time.Now().UTC() },
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.sync(c.local())
	return c
}

// Now returns the corrected time. It does not block.
func (c *NTP) Now() time.Time {
	local := c.local()
	offset := time.Duration(c.offset.Load())
	if local.UnixNano() >= c.nextSync.Load() {
		c.startSync(local)
	}
	return local.Add(offset)
}

// Close stops further resyncs and waits for one in flight to finish. Now
// keeps working with the last known offset.
func (c *NTP) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.inflight.Wait()
	return nil
}

// Health reports whether the last sync succeeded and the offset is within
// the configured bound, along with the current offset and last sync time.
func (c *NTP) Health() (healthy bool, offset time.Duration, lastSync time.Time, lastErr error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	offset, lastSync, lastErr = time.Duration(c.offset.Load()), c.lastSync, c.lastErr
	if lastErr != nil {
		return false, offset, lastSync, lastErr
	}
	if c.unhealthyOffset > 0 && (offset > c.unhealthyOffset || offset < -c.unhealthyOffset) {
		return false, offset, lastSync, nil
	}
	return true, offset, lastSync, nil
}

func (c *NTP) startSync(local time.Time) {
	if !c.syncing.CompareAndSwap(false, true) {
		return
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.syncing.Store(false)
		return
	}
	c.inflight.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.inflight.Done()
		defer c.syncing.Store(false)
		c.sync(local)
	}()
}

// sync runs one query and schedules the next attempt. Callers guarantee
// that at most one sync runs at a time.
func (c *NTP) sync(local time.Time) {
	offset, err := c.query(c.server)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.lastErr = err
		if c.backoff == 0 {
			c.backoff = c.backoffInitial
		} else {
			c.backoff *= 2
		}
		if c.backoff > c.backoffMax {
			c.backoff = c.backoffMax
		}
		c.nextSync.Store(local.Add(c.backoff).UnixNano())
		c.logger.Warn("ntp sync failed",
			zap.String("server", c.server),
			zap.Duration("retry_in", c.backoff),
			zap.Error(err))
		return
	}
	c.offset.Store(int64(offset))
	c.lastSync = local
	c.lastErr = nil
	c.backoff = 0
	c.nextSync.Store(local.Add(c.syncInterval).UnixNano())
	c.logger.Debug("ntp sync", zap.String("server", c.server), zap.Duration("offset", offset))
}

var _ Clock = (*NTP)(nil)
