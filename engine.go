package ink

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// tailEpsilon is the smallest distance*velocity product trusted as the
// denominator of the lift-off tail ratio. Below it the ratio is taken as 1.
const tailEpsilon = 1e-6

// Kinematics is a snapshot of the per-stroke state of an Engine.
// Nil pointers mark values that are unset until the first position of a
// stroke is drawn.
type Kinematics struct {
	PreviousPosition  *Position
	PreviousBrushSize *float64
	PreviousVelocity  float64 // px/ms
	PreviousDistance  float64 // px
	Accelerate        float64 // current over previous velocity
	ExpectedNext      *Point
}

// Stats counts stamp activity since the engine was created.
type Stats struct {
	// Attempts is the number of stamp positions visited along segments.
	Attempts int
	// Drawn is the number of stamps that reached the surface.
	Drawn int
}

// Engine turns raw pointer samples into stamped ink.
//
// Positions are smoothed by averaging the most recent samples, the brush
// size follows pen pressure when reported and velocity otherwise, and the
// brush sprite is stamped about once per pixel along each segment. Engine
// also tracks the bounding box of all ink drawn since the last Clear.
//
// Engine is not safe for concurrent use. Callers deliver the samples of a
// stroke in order from a single goroutine.
type Engine struct {
	cfg         Config
	surface     Surface
	brush       *Brush
	rng         *rand.Rand
	widthRatio  float64
	heightRatio float64
	bounds      Bounds
	stats       Stats

	inStroke     bool
	buffer       []Sample
	prev         *Position
	prevSize     float64
	hasPrevSize  bool
	prevVelocity float64
	prevDistance float64
	accelerate   float64
	expected     *Point
}

// NewEngine creates an engine drawing onto surface.
// It returns an error wrapping ErrInvalidConfig when the configuration or
// the display ratio is unusable.
func NewEngine(surface Surface, opts ...EngineOption) (*Engine, error) {
	if surface == nil {
		return nil, fmt.Errorf("%w: nil surface", ErrInvalidConfig)
	}
	o := defaultEngineOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.config.Validate(); err != nil {
		return nil, err
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) //nolint:gosec // visual noise only
	}

	e := &Engine{
		cfg:     o.config,
		surface: surface,
		brush:   o.brush,
		rng:     o.rng,
		buffer:  make([]Sample, 0, o.config.BufferingSize),
	}
	if err := e.SetRatio(o.widthRatio, o.heightRatio); err != nil {
		return nil, err
	}
	e.Clear()
	return e, nil
}

// Config returns the brush model configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Surface returns the raster surface the engine draws onto.
func (e *Engine) Surface() Surface {
	return e.surface
}

// SetBrush swaps the brush sprite. A nil brush disables drawing.
func (e *Engine) SetBrush(b *Brush) {
	e.brush = b
}

// Brush returns the current brush sprite, nil if none is set.
func (e *Engine) Brush() *Brush {
	return e.brush
}

// SetRatio sets the x/y scale factors that convert a logical brush size into
// device pixel stamp size. It must be set before stamping when the surface
// resolution differs from on-screen pixels.
func (e *Engine) SetRatio(width, height float64) error {
	if !(width > 0) || !(height > 0) || math.IsInf(width, 0) || math.IsInf(height, 0) {
		return fmt.Errorf("%w: ratio %vx%v must be positive and finite", ErrInvalidConfig, width, height)
	}
	e.widthRatio = width
	e.heightRatio = height
	return nil
}

// Ratio returns the x/y display ratio.
func (e *Engine) Ratio() (width, height float64) {
	return e.widthRatio, e.heightRatio
}

// Bounds returns the extent of all ink drawn since the last Clear.
func (e *Engine) Bounds() Bounds {
	return e.bounds
}

// Stats returns stamp counters.
func (e *Engine) Stats() Stats {
	return e.stats
}

// InStroke reports whether a stroke is in progress.
func (e *Engine) InStroke() bool {
	return e.inStroke
}

// Kinematics returns a copy of the current stroke state.
func (e *Engine) Kinematics() Kinematics {
	k := Kinematics{
		PreviousVelocity: e.prevVelocity,
		PreviousDistance: e.prevDistance,
		Accelerate:       e.accelerate,
	}
	if e.prev != nil {
		p := *e.prev
		k.PreviousPosition = &p
	}
	if e.hasPrevSize {
		s := e.prevSize
		k.PreviousBrushSize = &s
	}
	if e.expected != nil {
		n := *e.expected
		k.ExpectedNext = &n
	}
	return k
}

// Clear resets the bounds and erases the surface.
// A stroke in progress should be ended first.
func (e *Engine) Clear() {
	e.bounds = EmptyBounds()
	e.surface.Clear()
}

// BeginStroke starts a new stroke, resetting the sample buffer and all
// kinematics. A stroke still in progress is ended first.
func (e *Engine) BeginStroke() {
	if e.inStroke {
		e.EndStroke()
	}
	e.buffer = e.buffer[:0]
	e.prev = nil
	e.prevSize = 0
	e.hasPrevSize = false
	e.prevVelocity = 0
	e.prevDistance = 0
	e.accelerate = 0
	e.expected = nil
	e.inStroke = true
}

// AddStrokePosition buffers a sample and draws the resulting segment.
// A sample arriving outside a stroke begins one.
func (e *Engine) AddStrokePosition(s Sample) {
	if !e.inStroke {
		e.BeginStroke()
	}
	e.push(s)
	e.Draw()
}

// EndStroke finishes the stroke in progress. When the pen lifts off while
// still speeding up, a short extrapolated tail is drawn so the stroke
// tapers out the way a flicked brush does.
func (e *Engine) EndStroke() {
	if !e.inStroke {
		return
	}
	e.inStroke = false

	if e.accelerate <= 1 || e.prev == nil || e.expected == nil {
		return
	}

	ratio := 1.0
	if d := e.prevDistance * e.prevVelocity; d > tailEpsilon {
		ratio = e.accelerate / d
	}
	tail := Sample{
		X:        e.expected.X,
		Y:        e.expected.Y,
		T:        e.prev.T + math.Min(ratio, e.cfg.MaxTailDelay),
		Pressure: e.prev.Pressure.Scale(math.Min(ratio, 1)),
	}
	// Fill the whole averaging window so the last position is the tail
	// itself rather than a blend with older samples.
	for range e.cfg.BufferingSize {
		e.push(tail)
	}
	Logger().Debug("ink: stroke tail synthesized",
		"accelerate", e.accelerate, "ratio", ratio, "x", tail.X, "y", tail.Y)
	e.Draw()
}

// Draw renders the segment from the previous smoothed position to the
// current one and advances the stroke state. It is a no-op with an empty
// buffer.
func (e *Engine) Draw() {
	pos, ok := e.smoothed()
	if !ok {
		return
	}
	if e.prev == nil {
		first := pos
		e.prev = &first
	}
	prev := *e.prev

	dt := pos.T - prev.T
	distance := prev.Point().Distance(pos.Point())
	velocity := distance / math.Max(1, dt)
	accelerate := 0.0
	if e.prevVelocity != 0 {
		accelerate = velocity / e.prevVelocity
	}

	pos.Size = e.brushSize(velocity, pos.Pressure)
	e.drawStroke(prev, pos, pos.Size, distance)

	next := prev.Point().Lerp(pos.Point(), 1+accelerate)
	e.accelerate = accelerate
	e.expected = &next
	e.prev = &pos
	e.prevSize = pos.Size
	e.hasPrevSize = true
	e.prevVelocity = velocity
	e.prevDistance = distance
}

// BrushSize returns the brush diameter for a pen moving at velocity px/ms
// with the given pressure reading. A valid pressure reading always wins
// over the velocity response.
func (e *Engine) BrushSize(velocity float64, p Pressure) float64 {
	return e.brushSize(velocity, p)
}

func (e *Engine) brushSize(velocity float64, p Pressure) float64 {
	lo, hi := e.cfg.MinSize, e.cfg.MaxSize
	if p.Valid {
		return clamp(math.Max(lo, hi*p.Value), lo, hi)
	}
	// Linear response: maxSize at rest, shrinking by (maxSize+minSize)
	// every VelocityPressureCoff px/ms.
	size := hi - (hi+lo)*velocity/e.cfg.VelocityPressureCoff
	return clamp(size, lo, hi)
}

// drawStroke stamps the brush along start→end, about one stamp per pixel,
// interpolating the size from the previous brush size to size.
func (e *Engine) drawStroke(start, end Position, size, distance float64) {
	from := size
	if e.hasPrevSize {
		from = e.prevSize
	}
	if distance <= 0 || math.IsNaN(distance) {
		e.stampAt(end.Point(), math.Min(size, e.cfg.MaxSize))
		return
	}

	delta := size - from
	a, b := start.Point(), end.Point()
	n := int(math.Ceil(distance))
	for i := range n {
		t := float64(i) / distance
		e.stampAt(a.Lerp(b, t), math.Min(from+delta*t, e.cfg.MaxSize))
	}
}

func (e *Engine) stampAt(p Point, size float64) {
	e.stats.Attempts++

	w := size * e.widthRatio
	h := size * e.heightRatio
	if w <= 1 || h <= 1 {
		return
	}
	if e.rng.Float64() < e.cfg.SkipProbability {
		return
	}
	if e.brush == nil {
		return
	}

	jitter := math.Floor(e.rng.Float64() * e.cfg.JitterAmplitude)
	if e.rng.IntN(2) == 0 {
		jitter = -jitter
	}
	x := p.X - w/2 + jitter
	y := p.Y - h/2 + jitter

	e.bounds = e.bounds.Extend(x, y, x+w, y+h)
	e.surface.Stamp(e.brush, x, y, w, h)
	e.stats.Drawn++
}

// push appends s, keeping only the samples inside the averaging window.
func (e *Engine) push(s Sample) {
	if len(e.buffer) == e.cfg.BufferingSize {
		copy(e.buffer, e.buffer[1:])
		e.buffer = e.buffer[:len(e.buffer)-1]
	}
	e.buffer = append(e.buffer, s)
}

// smoothed averages the buffered samples. Pressure is averaged over the
// samples that carry a reading and stays absent if none does.
func (e *Engine) smoothed() (Position, bool) {
	n := len(e.buffer)
	if n == 0 {
		return Position{}, false
	}
	var pos Position
	var pSum float64
	var pCount int
	for _, s := range e.buffer {
		pos.X += s.X
		pos.Y += s.Y
		pos.T += s.T
		if s.Pressure.Valid {
			pSum += s.Pressure.Value
			pCount++
		}
	}
	pos.X /= float64(n)
	pos.Y /= float64(n)
	pos.T /= float64(n)
	if pCount > 0 {
		pos.Pressure = PressureOf(pSum / float64(pCount))
	}
	return pos, true
}
