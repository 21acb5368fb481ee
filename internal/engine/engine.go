// Package engine implements the remap state machine (C4), the mouse motion
// driver (C5), and the event loop (C6) from spec.md §4.4–§4.6, collapsed
// onto a single Engine type per SPEC_FULL.md's engine module section
// ("collapse the method-table into an inherent implementation").
package engine

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/gvalkov/golang-evdev"

	"github.com/alexveden/uberkb-sub001/internal/input"
	"github.com/alexveden/uberkb-sub001/internal/logger"
	"github.com/alexveden/uberkb-sub001/internal/remap"
)

// kbdSink is the subset of *input.KeyboardSink the state machine drives.
// Narrowed to an interface so C4/C5's decision logic can be unit tested
// against a fake sink instead of a real /dev/uinput device, the way
// uinput_test.go (bnema-waymon) falls back to t.Skip only for the parts that
// genuinely need the kernel module.
type kbdSink interface {
	Emit(typ, code uint16, value int32) error
	EmitSyn() error
	Close() error
}

// mouseSink is the subset of *input.MouseSink the state machine drives.
type mouseSink interface {
	Move(dx, dy int32) error
	Click(button uint16, pressed bool) error
	Wheel(v int32) error
	Close() error
}

// deviceHandle is the subset of *input.Device the event loop drives.
type deviceHandle interface {
	Fd() uintptr
	Read() ([]evdev.InputEvent, error)
	Release() error
}

// Engine is spec.md §3's EngineState: the three owned handles plus the
// mutable bookkeeping the state machine and motion driver read and write.
type Engine struct {
	km *remap.KeyMap

	device deviceHandle
	kbd    kbdSink
	mouse  mouseSink

	modPressed   bool
	mousePressed bool
	lastKeyMod   uint16

	mouseDirs struct {
		up, down, left, right bool
	}
	mouseLastPressTs int64 // monotonic milliseconds; 0 when idle

	running atomic.Bool
}

// Create implements spec.md §3's create(config, device_selector): it opens
// the physical device (by path if the selector begins with "/dev/",
// otherwise by name search), creates the keyboard sink unconditionally and
// the mouse sink iff MouseKeyCode != 0, and leaves no partial state behind
// on any failure (invariant 5).
func Create(km *remap.KeyMap, deviceSelector string) (*Engine, error) {
	e := &Engine{km: km}

	device, err := openDevice(deviceSelector)
	if err != nil {
		return nil, err
	}
	e.device = device

	kbd, err := input.NewKeyboardSink()
	if err != nil {
		device.Release()
		return nil, ioErr("create keyboard sink", err)
	}
	e.kbd = kbd

	if km.MouseKeyCode != 0 {
		mouse, err := input.NewMouseSink()
		if err != nil {
			kbd.Close()
			device.Release()
			return nil, ioErr("create mouse sink", err)
		}
		e.mouse = mouse
	}

	e.running.Store(true)
	return e, nil
}

func openDevice(selector string) (*input.Device, error) {
	if strings.HasPrefix(selector, "/dev/") {
		dev, err := input.OpenByPath(selector)
		if err != nil {
			if strings.Contains(err.Error(), "not a QWERTY") {
				return nil, invalidArgErr("open device by path", err)
			}
			return nil, ioErr("open device by path", err)
		}
		return dev, nil
	}

	dev, err := input.OpenByName(selector)
	if err != nil {
		if strings.Contains(err.Error(), "no QWERTY keyboard named") {
			return nil, notFoundErr("open device by name", err)
		}
		return nil, ioErr("open device by name", err)
	}
	return dev, nil
}

// Stop flips the running flag so the next loop iteration exits cleanly;
// wired to SIGTERM/SIGINT by cmd/root.go per SPEC_FULL.md Open Question #3.
func (e *Engine) Stop() { e.running.Store(false) }

// Destroy releases resources in reverse order of acquisition: mouse sink,
// keyboard sink, then the physical device ungrab — spec.md §5's resource
// discipline. Safe to call on a partially-initialized Engine.
func (e *Engine) Destroy() error {
	var firstErr error
	record := func(op string, err error) {
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("%s: %w", op, err)
		}
	}

	if e.mouse != nil {
		record("close mouse sink", e.mouse.Close())
		e.mouse = nil
	}
	if e.kbd != nil {
		record("close keyboard sink", e.kbd.Close())
		e.kbd = nil
	}
	if e.device != nil {
		record("release device", e.device.Release())
		e.device = nil
	}

	e.modPressed = false
	e.mousePressed = false
	e.lastKeyMod = 0
	e.mouseDirs.up, e.mouseDirs.down, e.mouseDirs.left, e.mouseDirs.right = false, false, false, false
	e.mouseLastPressTs = 0
	e.running.Store(false)

	if firstErr != nil {
		logger.Warnf("teardown encountered an error: %v", firstErr)
	}
	return firstErr
}
