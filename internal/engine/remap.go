package engine

import (
	"time"

	"github.com/gvalkov/golang-evdev"

	"github.com/alexveden/uberkb-sub001/internal/remap"
)

const (
	keyRelease = 0
	keyPress   = 1
	keyRepeat  = 2

	clickSettleDelay = 20 * time.Millisecond
)

// handleEvent is C4: the decision tree from spec.md §4.4. It consumes one
// evdev.InputEvent and emits zero or more events to the keyboard/mouse
// sinks. It is only called for events that actually arrived; deciding
// whether a motion tick follows is left to loop.go.
func (e *Engine) handleEvent(ev evdev.InputEvent) error {
	code := ev.Code
	value := ev.Value

	if int(code) >= remap.KeyMax {
		return e.emitKey(code, value)
	}

	// Step 1: mouse trigger bookkeeping (spec.md §4.4 step 1).
	if e.km.MouseKeyCode != 0 && code == e.km.MouseKeyCode {
		e.mousePressed = value > 0
		e.mouseLastPressTs = 0
		if !e.mousePressed {
			e.mouseDirs.up, e.mouseDirs.down, e.mouseDirs.left, e.mouseDirs.right = false, false, false, false
		}
		return nil
	}

	// Step 2: modifier bookkeeping with stuck-key rescue (spec.md §4.4 step 2).
	if e.km.ModKeyCode != 0 && code == e.km.ModKeyCode {
		if e.modPressed && value == keyRelease && e.lastKeyMod != 0 {
			if err := e.rescueRelease(e.lastKeyMod); err != nil {
				return err
			}
		}
		e.modPressed = value > 0
		e.lastKeyMod = 0
		return nil
	}

	// Step 3: not a trigger key.
	switch {
	case e.modPressed:
		mapped := e.km.ModMap[code]
		if mapped == 0 {
			return nil // modifier mode swallows unmapped keys
		}
		if value == keyRepeat {
			e.lastKeyMod = mapped // the emitted key is what rescueRelease must release
		}
		if err := e.emitKey(mapped, value); err != nil {
			return err
		}
		return e.kbd.EmitSyn()

	case e.mousePressed:
		return e.dispatchMouseMapped(code, value)

	default:
		mapped := e.km.DirectMap[code]
		if mapped == 0 {
			mapped = code
		}
		return e.emitKey(mapped, value)
	}
}

// emitKey writes a single KEY event followed by its SYN, matching every
// "emit verbatim"/"emit the rewritten event" instruction in spec.md §4.4.
func (e *Engine) emitKey(code uint16, value int32) error {
	if err := e.kbd.Emit(uint16(evdev.EV_KEY), code, value); err != nil {
		return err
	}
	return e.kbd.EmitSyn()
}

// rescueRelease implements spec.md §4.4 step 2's synthetic release: it tells
// the kernel to stop autorepeating the mapped key that latched while the
// modifier was held. Omitting it leaves a mapped navigation key stuck down.
func (e *Engine) rescueRelease(code uint16) error {
	if err := e.kbd.Emit(uint16(evdev.EV_MSC), uint16(evdev.MSC_SCAN), int32(code)); err != nil {
		return err
	}
	if err := e.kbd.Emit(uint16(evdev.EV_KEY), code, keyRelease); err != nil {
		return err
	}
	return e.kbd.EmitSyn()
}

// dispatchMouseMapped implements spec.md §4.4's mouse-mode branch: buttons
// click or wheel, direction keys latch into mouseDirs for C5 to drain,
// unmapped codes forward verbatim.
func (e *Engine) dispatchMouseMapped(code uint16, value int32) error {
	mapped := e.km.MouseMap[code]
	if mapped == 0 {
		return e.emitKey(code, value)
	}

	switch mapped {
	case evdev.BTN_LEFT, evdev.BTN_RIGHT, evdev.BTN_MIDDLE:
		if value == keyRepeat {
			return nil
		}
		return e.click(mapped, value == keyPress)
	case evdev.BTN_GEAR_UP:
		if value != keyPress {
			return nil
		}
		return e.mouse.Wheel(1)
	case evdev.BTN_GEAR_DOWN:
		if value != keyPress {
			return nil
		}
		return e.mouse.Wheel(-1)
	case evdev.KEY_UP:
		e.mouseDirs.up = value > 0
		return nil
	case evdev.KEY_DOWN:
		e.mouseDirs.down = value > 0
		return nil
	case evdev.KEY_LEFT:
		e.mouseDirs.left = value > 0
		return nil
	case evdev.KEY_RIGHT:
		e.mouseDirs.right = value > 0
		return nil
	default:
		return assertionErr("dispatch mouse-mapped code", nil)
	}
}

// click implements spec.md §4.4's click sequence: a virtual release of the
// trigger, the button event on the mouse sink, a 20ms settle, then a
// virtual re-press plus autorepeat of the trigger — so downstream software
// watching the trigger as a modifier sees a standalone click rather than
// "trigger+button".
func (e *Engine) click(button uint16, pressed bool) error {
	if err := e.kbd.Emit(uint16(evdev.EV_MSC), uint16(evdev.MSC_SCAN), 0); err != nil {
		return err
	}
	if err := e.kbd.Emit(uint16(evdev.EV_KEY), e.km.MouseKeyCode, keyRelease); err != nil {
		return err
	}
	if err := e.kbd.EmitSyn(); err != nil {
		return err
	}

	if err := e.mouse.Click(button, pressed); err != nil {
		return err
	}

	time.Sleep(clickSettleDelay)

	if err := e.kbd.Emit(uint16(evdev.EV_MSC), uint16(evdev.MSC_SCAN), 0); err != nil {
		return err
	}
	if err := e.kbd.Emit(uint16(evdev.EV_KEY), e.km.MouseKeyCode, keyPress); err != nil {
		return err
	}
	if err := e.kbd.EmitSyn(); err != nil {
		return err
	}
	if err := e.kbd.Emit(uint16(evdev.EV_KEY), e.km.MouseKeyCode, keyRepeat); err != nil {
		return err
	}
	return e.kbd.EmitSyn()
}
