package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

const (
	OrdersCreated      = "orders_created"
	CheckoutFailures   = "checkout_failures"
	CheckoutBlocked    = "checkout_blocked"
	CartWarnings       = "cart_validation_warnings"
	OrdersCancelled    = "orders_cancelled"
	OrderStatusChanges = "order_status_changes"
	NotifyFailures     = "notification_failures"
)

type Counter struct {
	value uint64
}

func (c *Counter) Inc() {
	atomic.AddUint64(&c.value, 1)
}

func (c *Counter) Add(n uint64) {
	atomic.AddUint64(&c.value, n)
}

func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// Registry holds named counters. A nil *Registry is valid and discards
// every update.
type Registry struct {
	mu       sync.RWMutex
	counters map[string]*Counter
	started  time.Time
}

func NewRegistry() *Registry {
	return &Registry{counters: make(map[string]*Counter), started: time.Now()}
}

func (r *Registry) Counter(name string) *Counter {
	r.mu.RLock()
	c, ok := r.counters[name]
	r.mu.RUnlock()
	if ok {
		return c
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok = r.counters[name]; !ok {
		c = &Counter{}
		r.counters[name] = c
	}
	return c
}

func (r *Registry) Inc(name string) {
	r.Add(name, 1)
}

func (r *Registry) Add(name string, n uint64) {
	if r == nil {
		return
	}
	r.Counter(name).Add(n)
}

type Snapshot struct {
	UptimeSeconds int64             `json:"uptime_seconds"`
	Counters      map[string]uint64 `json:"counters"`
}

func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := Snapshot{
		UptimeSeconds: int64(time.Since(r.started).Seconds()),
		Counters:      make(map[string]uint64, len(r.counters)),
	}
	for name, c := range r.counters {
		out.Counters[name] = c.Load()
	}
	return out
}
