// Package input implements the device-facing half of uberkb: acquiring the
// physical keyboard (C1) and creating the two virtual uinput sinks the
// remap engine writes through (C2, C3).
package input

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alexveden/uberkb-sub001/internal/logger"
	"github.com/gvalkov/golang-evdev"
)

// qwertyProbeKeys are the codes spec.md §4.1 requires a device to advertise
// before it is trusted as the primary physical keyboard.
var qwertyProbeKeys = []int{evdev.KEY_Q, evdev.KEY_W, evdev.KEY_E, evdev.KEY_ESC, evdev.KEY_CAPSLOCK}

// Device wraps a grabbed evdev keyboard. Its File.Fd() is what C6's poll
// loop watches; Read forwards to the underlying evdev.InputDevice.
type Device struct {
	dev *evdev.InputDevice
}

// Fd returns the underlying file descriptor, used by the event loop's poll.
func (d *Device) Fd() uintptr { return d.dev.File.Fd() }

// Read fetches whatever events are queued, exactly as evdev.InputDevice.Read
// returns them; no SYN-drop re-sync is done here.
func (d *Device) Read() ([]evdev.InputEvent, error) { return d.dev.Read() }

// Release ungrabs and closes the device, per spec.md §5's teardown order.
func (d *Device) Release() error {
	if err := d.dev.Release(); err != nil {
		logger.Debugf("ungrab failed (ignoring, device may already be gone): %v", err)
	}
	return d.dev.File.Close()
}

// OpenByPath implements spec.md §4.1's "by path" entry point: open
// read-only, verify QWERTY, grab exclusively. Grounded on
// internal/input/evdev_capture.go's open/grab sequencing (bnema-waymon).
func OpenByPath(path string) (*Device, error) {
	dev, err := evdev.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	if !isQwerty(dev) {
		dev.File.Close()
		return nil, fmt.Errorf("%s is not a QWERTY keyboard", path)
	}

	if err := dev.Grab(); err != nil {
		dev.File.Close()
		return nil, fmt.Errorf("grab %s: %w", path, err)
	}

	return &Device{dev: dev}, nil
}

// OpenByName implements spec.md §4.1's "by name" entry point: enumerate
// /dev/input/event*, logging each candidate's name/phys/QWERTY status, and
// grab the first exact name match that also passes the QWERTY test.
// Grounded on device_selector.go's listDevices shape, with the huh
// interactive picker dropped — selection here is automatic, not interactive
// (Non-goal: no GUI).
func OpenByName(name string) (*Device, error) {
	candidates, err := evdev.ListInputDevices("/dev/input/event*")
	if err != nil {
		return nil, fmt.Errorf("list /dev/input/event*: %w", err)
	}

	for _, dev := range candidates {
		qwerty := isQwerty(dev)
		logger.Debug("candidate device", "path", dev.Fn, "name", dev.Name, "phys", dev.Phys, "qwerty", qwerty)

		if dev.Name != name || !qwerty {
			dev.File.Close()
			continue
		}

		if err := dev.Grab(); err != nil {
			dev.File.Close()
			return nil, fmt.Errorf("grab %s: %w", dev.Fn, err)
		}
		return &Device{dev: dev}, nil
	}

	return nil, fmt.Errorf("no QWERTY keyboard named %q found under /dev/input", name)
}

// isQwerty implements spec.md §4.1's QWERTY test: key events plus
// {Q, W, E, Esc, CapsLock}, and a Phys path ending in /input0 — multi-input
// composite devices typically expose the keyboard on input0; the others are
// consumer-control or HID device nodes that must not be grabbed.
func isQwerty(dev *evdev.InputDevice) bool {
	keyCodes, ok := dev.CapabilitiesFlat[evdev.EV_KEY]
	if !ok || len(keyCodes) == 0 {
		return false
	}

	have := make(map[int]bool, len(keyCodes))
	for _, c := range keyCodes {
		have[c] = true
	}
	for _, probe := range qwertyProbeKeys {
		if !have[probe] {
			return false
		}
	}

	return strings.HasSuffix(filepath.ToSlash(dev.Phys), "/input0")
}
