package input

import (
	"fmt"

	"github.com/ThomasT75/uinput"
	"github.com/gvalkov/golang-evdev"
)

const mouseName = "UberKeyboardMappperVirtualMouse"

// MouseSink is C3: a uinput mouse device exposing move/click/wheel.
// Adapted from internal/input/uinput_handler.go's uInputHandler, rebased
// from waymon's proto.MouseEvent wire type onto the raw operations spec.md
// §4.3 names, using ThomasT75/uinput's high-level Mouse for the device
// itself (its Move/*Press/*Release/Wheel API is a clean match — unlike the
// keyboard sink, nothing here needs a raw MSC_SCAN packet).
type MouseSink struct {
	mouse uinput.Mouse
}

// NewMouseSink creates the virtual mouse. Called only when
// KeyMap.MouseKeyCode != 0, per spec.md §3 ("present iff mouse_key_code ≠ 0").
func NewMouseSink() (*MouseSink, error) {
	mouse, err := uinput.CreateMouse("/dev/uinput", []byte(mouseName))
	if err != nil {
		return nil, fmt.Errorf("create virtual mouse: %w", err)
	}
	return &MouseSink{mouse: mouse}, nil
}

// Move emits REL_X if nonzero, REL_Y if nonzero, then SYN_REPORT — spec.md
// §4.3. ThomasT75/uinput's Move already folds the SYN into one call. A zero
// vector emits nothing at all.
func (m *MouseSink) Move(dx, dy int32) error {
	if dx == 0 && dy == 0 {
		return nil
	}
	return m.mouse.Move(dx, dy)
}

// Click emits {KEY/button/pressed, SYN} on the mouse sink — the middle step
// of spec.md §4.4's click sequence; the trigger release/re-press around it
// happens on the keyboard sink, driven by the engine.
func (m *MouseSink) Click(button uint16, pressed bool) error {
	switch button {
	case evdev.BTN_LEFT:
		if pressed {
			return m.mouse.LeftPress()
		}
		return m.mouse.LeftRelease()
	case evdev.BTN_RIGHT:
		if pressed {
			return m.mouse.RightPress()
		}
		return m.mouse.RightRelease()
	case evdev.BTN_MIDDLE:
		if pressed {
			return m.mouse.MiddlePress()
		}
		return m.mouse.MiddleRelease()
	default:
		return fmt.Errorf("unsupported mouse button code %d", button)
	}
}

// Wheel emits REL_WHEEL then SYN_REPORT — spec.md §4.3.
func (m *MouseSink) Wheel(v int32) error {
	return m.mouse.Wheel(false, v)
}

// Close destroys the virtual mouse device.
func (m *MouseSink) Close() error {
	return m.mouse.Close()
}
