package ratelimit

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"
)

// WindowConfig is one sliding-window ceiling: at most Limit admitted requests
// within any trailing Span.
type WindowConfig struct {
	Name  string
	Span  time.Duration
	Limit int
}

// DefaultWindows returns the minute/hour/day ceilings used when none are
// configured.
func DefaultWindows() []WindowConfig {
	return []WindowConfig{
		{Name: "minute", Span: time.Minute, Limit: 6},
		{Name: "hour", Span: time.Hour, Limit: 60},
		{Name: "day", Span: 24 * time.Hour, Limit: 300},
	}
}

const defaultNoticeCooldown = 60 * time.Second

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed bool

	// Window names the granularity that denied the request.
	Window string

	// RetryAfter is how long until the denying window frees a slot.
	RetryAfter time.Duration

	// Notify reports whether the caller-facing layer should surface a
	// human-readable denial. At most one notice per cooldown; further
	// denials within it stay silent while still being rejected.
	Notify bool
}

// RetryMessage renders the advisory denial text.
func (d Decision) RetryMessage() string {
	secs := int(math.Ceil(d.RetryAfter.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return fmt.Sprintf("rate limit exceeded (%s window), try again in %d seconds", d.Window, secs)
}

// Clock abstracts time.Now for tests.
type Clock func() time.Time

type callerState struct {
	mu         sync.Mutex
	hits       [][]time.Time // parallel to the limiter's window configs
	lastNotice time.Time
	lastAccess time.Time
}

// Limiter admits or rejects caller requests against independent sliding
// windows per granularity. Window lists are pruned lazily on each check;
// per-caller updates are serialized by a per-caller mutex.
type Limiter struct {
	windows        []WindowConfig
	noticeCooldown time.Duration
	now            Clock

	mu      sync.Mutex
	callers map[string]*callerState
}

func NewLimiter(windows []WindowConfig, noticeCooldown time.Duration, clock Clock) *Limiter {
	if len(windows) == 0 {
		windows = DefaultWindows()
	}
	if noticeCooldown <= 0 {
		noticeCooldown = defaultNoticeCooldown
	}
	if clock == nil {
		clock = time.Now
	}
	return &Limiter{
		windows:        windows,
		noticeCooldown: noticeCooldown,
		now:            clock,
		callers:        make(map[string]*callerState),
	}
}

// Check admits the request if no window is at its ceiling; admission appends
// the current timestamp to every window.
func (l *Limiter) Check(callerID string) Decision {
	cs := l.callerFor(callerID)

	cs.mu.Lock()
	defer cs.mu.Unlock()

	now := l.now()
	cs.lastAccess = now

	for i, w := range l.windows {
		cs.hits[i] = prune(cs.hits[i], now.Add(-w.Span))
	}

	for i, w := range l.windows {
		if len(cs.hits[i]) >= w.Limit {
			d := Decision{
				Window:     w.Name,
				RetryAfter: cs.hits[i][0].Add(w.Span).Sub(now),
			}
			if now.Sub(cs.lastNotice) >= l.noticeCooldown {
				cs.lastNotice = now
				d.Notify = true
			}
			return d
		}
	}

	for i := range l.windows {
		cs.hits[i] = append(cs.hits[i], now)
	}
	return Decision{Allowed: true}
}

// StartCleanup evicts callers idle for longer than the largest window span.
// Runs until the context is cancelled.
func (l *Limiter) StartCleanup(ctx context.Context) {
	var longest time.Duration
	for _, w := range l.windows {
		if w.Span > longest {
			longest = w.Span
		}
	}

	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				cutoff := l.now().Add(-longest)
				l.mu.Lock()
				for id, cs := range l.callers {
					cs.mu.Lock()
					stale := cs.lastAccess.Before(cutoff)
					cs.mu.Unlock()
					if stale {
						delete(l.callers, id)
					}
				}
				l.mu.Unlock()
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (l *Limiter) callerFor(callerID string) *callerState {
	l.mu.Lock()
	defer l.mu.Unlock()

	cs, ok := l.callers[callerID]
	if !ok {
		cs = &callerState{hits: make([][]time.Time, len(l.windows))}
		l.callers[callerID] = cs
	}
	return cs
}

// prune drops timestamps at or before the cutoff. Entries are appended in
// order, so the retained suffix starts at the first timestamp after it.
func prune(hits []time.Time, cutoff time.Time) []time.Time {
	idx := 0
	for idx < len(hits) && !hits[idx].After(cutoff) {
		idx++
	}
	if idx == 0 {
		return hits
	}
	return append(hits[:0:0], hits[idx:]...)
}
