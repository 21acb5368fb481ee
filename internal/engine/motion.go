package engine

import "time"

const (
	baseStep           = 10
	deadZoneFraction   = 10  // delta < window/deadZoneFraction stays at the floor speed
	floorSpeedFraction = 0.1 // speed floor as a fraction of mouse_sensitivity
	minSpeed           = 0.1
)

// nowMillis is monotonic-enough for the acceleration ramp: only deltas
// between calls matter, never the absolute value.
func nowMillis() int64 { return time.Now().UnixMilli() }

// tick is C5, spec.md §4.5: invoked when mousePressed is true and either the
// poll timed out or a key event just arrived while in mouse mode. It
// computes the held-direction vector, applies the acceleration ramp, and
// emits the resulting relative motion through the mouse sink.
func (e *Engine) tick() error {
	if !e.mousePressed {
		return nil
	}

	var dx, dy int32
	if e.mouseDirs.left {
		dx -= baseStep
	}
	if e.mouseDirs.right {
		dx += baseStep
	}
	if e.mouseDirs.up {
		dy -= baseStep
	}
	if e.mouseDirs.down {
		dy += baseStep
	}

	if dx == 0 && dy == 0 {
		e.mouseLastPressTs = 0
		return nil
	}

	now := nowMillis()
	if e.mouseLastPressTs == 0 {
		e.mouseLastPressTs = now
	}

	delta := now - e.mouseLastPressTs
	window := int64(e.km.MouseSpeedupMs)
	speed := e.rampSpeed(delta, window)

	dx = int32(float64(dx) * speed)
	dy = int32(float64(dy) * speed)

	return e.mouse.Move(dx, dy)
}

// rampSpeed implements spec.md §4.5's three-segment ramp: full speed once
// delta reaches the window, a floor during the initial dead zone, and a
// linear interpolation between the two.
func (e *Engine) rampSpeed(delta, window int64) float64 {
	sensitivity := e.km.MouseSensitivity

	var speed float64
	switch {
	case delta >= window:
		speed = sensitivity
	case delta < window/deadZoneFraction:
		speed = sensitivity * floorSpeedFraction
	default:
		speed = sensitivity * (float64(delta) / float64(window))
	}

	if speed < minSpeed {
		speed = minSpeed
	}
	return speed
}
