package qfield

import "time"

// SurfaceID names the interactive surface an event originated from. A single
// bus may serve several surfaces; hover state is global across them (single
// pointer assumption).
type SurfaceID string

// Intent distinguishes the two interaction modes. Classification (dwell
// timing, modifier keys) is owned entirely by the instrumentation layer; the
// bus stores the last value verbatim.
type Intent uint8

const (
	// IntentProbe is a lightweight hover preview.
	IntentProbe Intent = iota

	// IntentEtch is sustained drawing interaction; the trail accumulator
	// injects ink only under etch intent.
	IntentEtch
)

// LatchMode selects the anchor mutation a latch event performs.
type LatchMode uint8

const (
	LatchAdd LatchMode = iota
	LatchRemove
	LatchToggle
)

// EventType discriminates the four interaction event shapes.
type EventType uint8

const (
	// EventHover updates the global hover state.
	// Trigger: pointer move over a surface | Fields: Surface, UV, Intent
	EventHover EventType = iota

	// EventHoverLeave clears hover if the named surface still owns it.
	// Trigger: pointer leaves a surface | Fields: Surface
	EventHoverLeave

	// EventBurst creates a time-decaying impulse.
	// Trigger: click/tap | Fields: Surface, UV, Amplitude, Radius
	EventBurst

	// EventLatch mutates the persistent anchor map.
	// Trigger: explicit pin gesture | Fields: Surface, Anchor, UV, Mode, Strength
	EventLatch
)

// Event is one interaction delivered to FieldBus.Emit. Only the fields for
// the event's type are meaningful; the constructors below fill them in.
type Event struct {
	Type      EventType
	Surface   SurfaceID
	Anchor    SurfaceID // latch key; defaults to Surface when empty
	UV        Vec2
	Intent    Intent
	Mode      LatchMode
	Amplitude float32
	Radius    float32
	Strength  float32
	Timestamp time.Time
}

// HoverEvent reports the pointer at uv on the given surface.
func HoverEvent(surface SurfaceID, uv Vec2, intent Intent) Event {
	return Event{Type: EventHover, Surface: surface, UV: uv, Intent: intent, Timestamp: time.Now()}
}

// HoverLeaveEvent reports the pointer leaving the given surface.
func HoverLeaveEvent(surface SurfaceID) Event {
	return Event{Type: EventHoverLeave, Surface: surface, Timestamp: time.Now()}
}

// BurstEvent requests a transient impulse at uv.
func BurstEvent(surface SurfaceID, uv Vec2, amplitude, radius float32) Event {
	return Event{Type: EventBurst, Surface: surface, UV: uv, Amplitude: amplitude, Radius: radius, Timestamp: time.Now()}
}

// LatchEvent requests an anchor mutation keyed by anchor (or surface when
// anchor is empty).
func LatchEvent(surface, anchor SurfaceID, uv Vec2, mode LatchMode, strength float32) Event {
	return Event{Type: EventLatch, Surface: surface, Anchor: anchor, UV: uv, Mode: mode, Strength: strength, Timestamp: time.Now()}
}

// validate rejects events that could corrupt simulation state. Anything
// accepted here is guaranteed to process to completion in the tick loop.
func (ev Event) validate() error {
	switch ev.Type {
	case EventHover:
		if !finite32(ev.UV.X) || !finite32(ev.UV.Y) {
			return &DomainError{Op: "emit hover", Reason: "non-finite uv"}
		}
	case EventHoverLeave:
		// Nothing to check; carries only the surface id.
	case EventBurst:
		if !finite32(ev.UV.X) || !finite32(ev.UV.Y) {
			return &DomainError{Op: "emit burst", Reason: "non-finite uv"}
		}
		if !finite32(ev.Amplitude) || ev.Amplitude < 0 {
			return &DomainError{Op: "emit burst", Reason: "negative or non-finite amplitude"}
		}
		if !finite32(ev.Radius) || ev.Radius < 0 {
			return &DomainError{Op: "emit burst", Reason: "negative or non-finite radius"}
		}
	case EventLatch:
		if !finite32(ev.UV.X) || !finite32(ev.UV.Y) {
			return &DomainError{Op: "emit latch", Reason: "non-finite uv"}
		}
		// Strength 0 is valid: present but inert.
		if !finite32(ev.Strength) || ev.Strength < 0 {
			return &DomainError{Op: "emit latch", Reason: "negative or non-finite strength"}
		}
		if ev.Mode > LatchToggle {
			return &DomainError{Op: "emit latch", Reason: "unknown latch mode"}
		}
	default:
		return &DomainError{Op: "emit", Reason: "unknown event type"}
	}
	return nil
}

// latchKey resolves the anchor map key a latch event addresses.
func (ev Event) latchKey() SurfaceID {
	if ev.Anchor != "" {
		return ev.Anchor
	}
	return ev.Surface
}
