package qfield

// Default configuration values. The numeric simulation constants carry the
// tuning the surfaces ship with; the wave coefficients keep the explicit
// scheme inside its CFL stability bound on the default grid, and the per-step
// clamp guarantees boundedness even when a caller overrides them badly.
const (
	DefaultResolution      = 256
	DefaultImpulseDecayMs  = 900.0
	DefaultProbeRadius     = 0.04
	DefaultTrailDecay      = 0.02
	DefaultWaveSpeed       = 0.5
	DefaultWaveDamping     = 0.004
	DefaultAnchorFrequency = 2.4
	DefaultAnchorRadius    = 0.05
	DefaultMaxImpulses     = 24
	DefaultMaxAnchors      = 8
	DefaultEtchDwellMs     = 120.0
)

// Config is the flat set of knobs shared by a FieldBus and the two field
// integrators driven from it. No knob has a hidden interdependency: changing
// Resolution takes effect only through an explicit Resize on each solver.
type Config struct {
	// Resolution is the width and height, in cells, of both scalar fields.
	Resolution int

	// ImpulseDecayMs is how long a burst impulse stays live; age runs from
	// 0 to 1 over this span and the impulse is evicted at 1.
	ImpulseDecayMs float64

	// ProbeRadius is the UV-space radius of hover-driven injection.
	ProbeRadius float32

	// TrailDecay is the default per-step trail fade fraction; 0 freezes.
	TrailDecay float32

	// WaveSpeed is the c² coefficient of the finite-difference update.
	WaveSpeed float32

	// WaveDamping bleeds energy out of the wave field each step.
	WaveDamping float32

	// AnchorFrequency is the anchor oscillation rate in radians per second.
	AnchorFrequency float32

	// AnchorRadius is the UV-space falloff radius of anchor forcing.
	AnchorRadius float32

	// MaxImpulses bounds the live impulse set; overflow evicts oldest-first.
	MaxImpulses int

	// MaxAnchors bounds the anchor map; overflow evicts the oldest anchor.
	MaxAnchors int

	// EtchDwellMs is the stationary-hover threshold the instrumentation
	// layer uses before upgrading probe intent to etch. The bus itself
	// never reads it; it lives here so callers share one tuning surface.
	EtchDwellMs float64
}

// DefaultConfig returns the configuration the surfaces are tuned for.
func DefaultConfig() Config {
	return Config{
		Resolution:      DefaultResolution,
		ImpulseDecayMs:  DefaultImpulseDecayMs,
		ProbeRadius:     DefaultProbeRadius,
		TrailDecay:      DefaultTrailDecay,
		WaveSpeed:       DefaultWaveSpeed,
		WaveDamping:     DefaultWaveDamping,
		AnchorFrequency: DefaultAnchorFrequency,
		AnchorRadius:    DefaultAnchorRadius,
		MaxImpulses:     DefaultMaxImpulses,
		MaxAnchors:      DefaultMaxAnchors,
		EtchDwellMs:     DefaultEtchDwellMs,
	}
}

// Partial carries an optional override for each Config field. Nil fields are
// left untouched by Merge, so a zero override (for example TrailDecay 0 to
// freeze the trail) is distinguishable from "not set".
type Partial struct {
	Resolution      *int
	ImpulseDecayMs  *float64
	ProbeRadius     *float32
	TrailDecay      *float32
	WaveSpeed       *float32
	WaveDamping     *float32
	AnchorFrequency *float32
	AnchorRadius    *float32
	MaxImpulses     *int
	MaxAnchors      *int
	EtchDwellMs     *float64
}

// merge applies the set fields of p onto c and reports whether anything
// changed.
func (c *Config) merge(p Partial) bool {
	changed := false
	if p.Resolution != nil && *p.Resolution != c.Resolution {
		c.Resolution = *p.Resolution
		changed = true
	}
	if p.ImpulseDecayMs != nil && *p.ImpulseDecayMs != c.ImpulseDecayMs {
		c.ImpulseDecayMs = *p.ImpulseDecayMs
		changed = true
	}
	if p.ProbeRadius != nil && *p.ProbeRadius != c.ProbeRadius {
		c.ProbeRadius = *p.ProbeRadius
		changed = true
	}
	if p.TrailDecay != nil && *p.TrailDecay != c.TrailDecay {
		c.TrailDecay = *p.TrailDecay
		changed = true
	}
	if p.WaveSpeed != nil && *p.WaveSpeed != c.WaveSpeed {
		c.WaveSpeed = *p.WaveSpeed
		changed = true
	}
	if p.WaveDamping != nil && *p.WaveDamping != c.WaveDamping {
		c.WaveDamping = *p.WaveDamping
		changed = true
	}
	if p.AnchorFrequency != nil && *p.AnchorFrequency != c.AnchorFrequency {
		c.AnchorFrequency = *p.AnchorFrequency
		changed = true
	}
	if p.AnchorRadius != nil && *p.AnchorRadius != c.AnchorRadius {
		c.AnchorRadius = *p.AnchorRadius
		changed = true
	}
	if p.MaxImpulses != nil && *p.MaxImpulses != c.MaxImpulses {
		c.MaxImpulses = *p.MaxImpulses
		changed = true
	}
	if p.MaxAnchors != nil && *p.MaxAnchors != c.MaxAnchors {
		c.MaxAnchors = *p.MaxAnchors
		changed = true
	}
	if p.EtchDwellMs != nil && *p.EtchDwellMs != c.EtchDwellMs {
		c.EtchDwellMs = *p.EtchDwellMs
		changed = true
	}
	return changed
}
