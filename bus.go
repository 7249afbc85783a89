package qfield

import (
	"log"
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// HoverState is the single global pointer state per bus. A new hover event
// for any surface overwrites it. When Active is false the remaining fields
// are stale and consumers must ignore them.
type HoverState struct {
	Active  bool
	Surface SurfaceID
	UV      Vec2
	Intent  Intent
}

// Impulse is a transient point disturbance created by a burst event. It is
// immutable after creation except for Age, which grows monotonically from 0
// to 1 over the configured decay duration; the bus evicts it at 1.
type Impulse struct {
	// Seq is a bus-wide monotonic sequence number. Consumers that turn
	// impulses into one-shot injections use it to tell new impulses from
	// ones already applied.
	Seq       uint64
	Surface   SurfaceID
	UV        Vec2
	Radius    float32
	Amplitude float32
	Start     time.Time
	Age       float32
}

// Anchor is a persistent oscillating source placed by a latch event. Anchors
// live until explicitly removed or evicted by capacity.
type Anchor struct {
	Surface  SurfaceID
	UV       Vec2
	Strength float32

	// Phase offsets the anchor's oscillation so coexisting anchors do not
	// pulse in lockstep. Assigned at creation, kept across overwrites.
	Phase   float32
	Created time.Time

	seq uint64 // creation order, breaks eviction ties on equal timestamps
}

// Snapshot is an immutable, versioned view of bus state. Every state change
// produces a fresh snapshot object, so subscribers may use reference
// equality to detect change and may safely read a snapshot from any
// goroutine. The slice and map are never aliased by live bus state.
type Snapshot struct {
	Version  uint64
	Hover    HoverState
	Impulses []Impulse
	Anchors  map[SurfaceID]Anchor
}

// Counters exposes the silent policy decisions for testing and debug
// overlays: rejected events and capacity evictions are counted, never
// surfaced as errors.
type Counters struct {
	DroppedEvents    uint64
	ImpulseEvictions uint64
	AnchorEvictions  uint64
}

type subscriber struct {
	id int
	fn func(*Snapshot)
}

// FieldBus ingests interaction events and owns hover, impulse, and anchor
// state. Emit may be called from any goroutine; Tick must be called from a
// single simulation goroutine and is the only method that mutates state.
type FieldBus struct {
	cfgMu sync.RWMutex
	cfg   Config

	queue   eventQueue
	scratch []Event

	hover    HoverState
	impulses []Impulse
	anchors  map[SurfaceID]Anchor

	impulseSeq uint64
	anchorSeq  uint64
	phaseIndex int

	version uint64
	snap    atomic.Pointer[Snapshot]

	subMu     sync.Mutex
	subs      []subscriber
	nextSubID int

	dropped          atomic.Uint64
	impulseEvictions atomic.Uint64
	anchorEvictions  atomic.Uint64
}

// NewFieldBus constructs a bus with the given configuration. Zero-valued
// capacity or decay knobs fall back to the defaults.
func NewFieldBus(cfg Config) *FieldBus {
	if cfg.MaxImpulses <= 0 {
		cfg.MaxImpulses = DefaultMaxImpulses
	}
	if cfg.MaxAnchors <= 0 {
		cfg.MaxAnchors = DefaultMaxAnchors
	}
	if cfg.ImpulseDecayMs <= 0 {
		cfg.ImpulseDecayMs = DefaultImpulseDecayMs
	}
	b := &FieldBus{
		cfg:     cfg,
		anchors: make(map[SurfaceID]Anchor),
	}
	b.snap.Store(&Snapshot{Anchors: map[SurfaceID]Anchor{}})
	return b
}

// Emit validates and enqueues one event. Non-blocking and safe to call from
// input-handling goroutines. Malformed events are logged, counted, and
// dropped; they never reach simulation state.
func (b *FieldBus) Emit(ev Event) {
	if err := ev.validate(); err != nil {
		b.dropped.Add(1)
		log.Printf("fieldbus: dropped event: %v", err)
		return
	}
	b.queue.push(ev)
}

// Snapshot returns the current immutable view in O(1).
func (b *FieldBus) Snapshot() *Snapshot {
	return b.snap.Load()
}

// Counters returns the debug counters.
func (b *FieldBus) Counters() Counters {
	return Counters{
		DroppedEvents:    b.dropped.Load(),
		ImpulseEvictions: b.impulseEvictions.Load(),
		AnchorEvictions:  b.anchorEvictions.Load(),
	}
}

// Subscribe registers fn to run synchronously after every tick that changed
// state. The returned function unsubscribes; calling it from inside a
// callback is safe.
func (b *FieldBus) Subscribe(fn func(*Snapshot)) func() {
	b.subMu.Lock()
	id := b.nextSubID
	b.nextSubID++
	b.subs = append(b.subs, subscriber{id: id, fn: fn})
	b.subMu.Unlock()

	return func() {
		b.subMu.Lock()
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				break
			}
		}
		b.subMu.Unlock()
	}
}

// Config returns a copy of the current configuration.
func (b *FieldBus) Config() Config {
	b.cfgMu.RLock()
	defer b.cfgMu.RUnlock()
	return b.cfg
}

// SetConfig merges the set fields of p into the configuration. Resolution
// changes do not propagate automatically; solvers must be resized
// explicitly.
func (b *FieldBus) SetConfig(p Partial) {
	b.cfgMu.Lock()
	b.cfg.merge(p)
	b.cfgMu.Unlock()
}

// Tick drains pending events in emission order, applies them, then ages
// impulses by dtMs and evicts those whose age reached 1. Splitting an
// elapsed span across several ticks converges to the same state as one
// large tick. Subscribers run synchronously if anything changed.
func (b *FieldBus) Tick(dtMs float64, now time.Time) {
	cfg := b.Config()

	b.scratch = b.queue.drain(b.scratch[:0])
	changed := false
	for _, ev := range b.scratch {
		if b.apply(ev, cfg, now) {
			changed = true
		}
	}

	if dtMs > 0 && len(b.impulses) > 0 {
		changed = true
		step := float32(dtMs / cfg.ImpulseDecayMs)
		live := b.impulses[:0]
		for _, imp := range b.impulses {
			imp.Age += step
			if imp.Age >= 1 {
				continue
			}
			live = append(live, imp)
		}
		b.impulses = live
	}

	if changed {
		b.publish()
	}
}

// apply mutates state for one accepted event and reports whether anything
// changed.
func (b *FieldBus) apply(ev Event, cfg Config, now time.Time) bool {
	switch ev.Type {
	case EventHover:
		next := HoverState{Active: true, Surface: ev.Surface, UV: ev.UV, Intent: ev.Intent}
		if b.hover == next {
			return false
		}
		b.hover = next
		return true

	case EventHoverLeave:
		if !b.hover.Active || b.hover.Surface != ev.Surface {
			return false
		}
		b.hover = HoverState{}
		return true

	case EventBurst:
		if len(b.impulses) >= cfg.MaxImpulses {
			// Oldest-first eviction, by emission order: the most recent
			// interaction always wins over the oldest.
			drop := len(b.impulses) - cfg.MaxImpulses + 1
			b.impulses = append(b.impulses[:0], b.impulses[drop:]...)
			b.impulseEvictions.Add(uint64(drop))
		}
		b.impulseSeq++
		start := ev.Timestamp
		if start.IsZero() {
			start = now
		}
		b.impulses = append(b.impulses, Impulse{
			Seq:       b.impulseSeq,
			Surface:   ev.Surface,
			UV:        ev.UV,
			Radius:    ev.Radius,
			Amplitude: ev.Amplitude,
			Start:     start,
		})
		return true

	case EventLatch:
		return b.applyLatch(ev, cfg, now)
	}
	return false
}

// applyLatch mutates the anchor map per the event's mode.
func (b *FieldBus) applyLatch(ev Event, cfg Config, now time.Time) bool {
	key := ev.latchKey()
	_, present := b.anchors[key]

	mode := ev.Mode
	if mode == LatchToggle {
		if present {
			mode = LatchRemove
		} else {
			mode = LatchAdd
		}
	}

	switch mode {
	case LatchRemove:
		if !present {
			return false
		}
		delete(b.anchors, key)
		return true

	case LatchAdd:
		created := ev.Timestamp
		if created.IsZero() {
			created = now
		}
		next := Anchor{
			Surface:  ev.Surface,
			UV:       ev.UV,
			Strength: ev.Strength,
			Created:  created,
		}
		if prev, ok := b.anchors[key]; ok {
			// Overwrite keeps identity: phase and creation bookkeeping
			// survive so the oscillation does not jump.
			next.Phase = prev.Phase
			next.Created = prev.Created
			next.seq = prev.seq
			if prev == next {
				return false
			}
			b.anchors[key] = next
			return true
		}
		if len(b.anchors) >= cfg.MaxAnchors {
			b.evictOldestAnchor()
		}
		b.anchorSeq++
		next.seq = b.anchorSeq
		next.Phase = float32(b.phaseIndex) * (math.Pi / 4)
		b.phaseIndex = (b.phaseIndex + 1) % 8
		b.anchors[key] = next
		return true
	}
	return false
}

// evictOldestAnchor drops the anchor with the earliest creation time, ties
// broken by creation order.
func (b *FieldBus) evictOldestAnchor() {
	var oldestKey SurfaceID
	var oldest Anchor
	first := true
	for key, a := range b.anchors {
		if first || a.Created.Before(oldest.Created) ||
			(a.Created.Equal(oldest.Created) && a.seq < oldest.seq) {
			first = false
			oldestKey = key
			oldest = a
		}
	}
	if !first {
		delete(b.anchors, oldestKey)
		b.anchorEvictions.Add(1)
	}
}

// publish builds a fresh snapshot from live state and notifies subscribers.
func (b *FieldBus) publish() {
	b.version++
	snap := &Snapshot{
		Version:  b.version,
		Hover:    b.hover,
		Impulses: append([]Impulse(nil), b.impulses...),
		Anchors:  make(map[SurfaceID]Anchor, len(b.anchors)),
	}
	for key, a := range b.anchors {
		snap.Anchors[key] = a
	}
	b.snap.Store(snap)

	b.subMu.Lock()
	fns := make([]func(*Snapshot), len(b.subs))
	for i, s := range b.subs {
		fns[i] = s.fn
	}
	b.subMu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}
