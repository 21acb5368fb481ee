// Package remap defines the keymap data model used by the remap state
// machine: the validated, array-backed lookup tables that turn one physical
// keycode into whatever the active mode says it should become.
package remap

import (
	"fmt"

	"github.com/gvalkov/golang-evdev"
)

// KeyMax bounds every code array in a KeyMap. Grounded on the kernel's
// compile-time KEY_MAX, exported by the evdev binding rather than
// hand-maintained a second time (see SPEC_FULL.md Open Question #2).
const KeyMax = evdev.KEY_MAX + 1

const (
	minMouseSensitivity = 0.1
	maxMouseSensitivity = 10
	defaultSensitivity  = 1.0
	maxMouseSpeedupMs   = 10000
)

// Profile is the on-disk shape of a keymap: sparse maps keyed by keycode,
// plus the scalar knobs that govern the modifier and mouse overlays. It is
// the unit `internal/config` unmarshals from TOML; NewKeyMap turns it into
// the dense, validated KeyMap the engine actually runs against.
type Profile struct {
	DirectMap        map[uint16]uint16 `mapstructure:"direct_map"`
	ModMap           map[uint16]uint16 `mapstructure:"mod_map"`
	MouseMap         map[uint16]uint16 `mapstructure:"mouse_map"`
	ModKeyCode       uint16            `mapstructure:"mod_key_code"`
	MouseKeyCode     uint16            `mapstructure:"mouse_key_code"`
	MouseSensitivity float64           `mapstructure:"mouse_sensitivity"`
	MouseSpeedupMs   int               `mapstructure:"mouse_speedup_ms"`
	Debug            bool              `mapstructure:"debug"`
}

// KeyMap is the immutable, array-backed remap table the engine consults on
// every event. Zero is "identity" in DirectMap and "unmapped" in ModMap and
// MouseMap, matching spec.md §3 exactly.
type KeyMap struct {
	DirectMap        [KeyMax]uint16
	ModMap           [KeyMax]uint16
	MouseMap         [KeyMax]uint16
	ModKeyCode       uint16
	MouseKeyCode     uint16
	MouseSensitivity float64
	MouseSpeedupMs   int
	Debug            bool
}

// NewKeyMap validates a Profile and expands its sparse maps into the dense
// arrays the state machine indexes directly. Boundary behavior follows
// spec.md §8: a non-positive sensitivity is clamped to 1.0 first, then the
// clamped value is checked against the open range (0.1, 10) — so anything
// that lands at or below 0.1, or at or past 10, is rejected outright.
func NewKeyMap(p Profile) (*KeyMap, error) {
	km := &KeyMap{
		ModKeyCode:       p.ModKeyCode,
		MouseKeyCode:     p.MouseKeyCode,
		MouseSensitivity: p.MouseSensitivity,
		MouseSpeedupMs:   p.MouseSpeedupMs,
		Debug:            p.Debug,
	}

	if km.MouseSensitivity <= 0 {
		km.MouseSensitivity = defaultSensitivity
	}
	if km.MouseSensitivity <= minMouseSensitivity {
		return nil, fmt.Errorf("mouse_sensitivity %.2f out of range (0.1, 10)", km.MouseSensitivity)
	}
	if km.MouseSensitivity >= maxMouseSensitivity {
		return nil, fmt.Errorf("mouse_sensitivity %.2f out of range (0.1, 10)", km.MouseSensitivity)
	}

	if km.MouseSpeedupMs <= 0 || km.MouseSpeedupMs > maxMouseSpeedupMs {
		return nil, fmt.Errorf("mouse_speedup_ms %d out of range (0, 10000]", km.MouseSpeedupMs)
	}

	if err := fillTable(&km.DirectMap, p.DirectMap); err != nil {
		return nil, fmt.Errorf("direct_map: %w", err)
	}
	if err := fillTable(&km.ModMap, p.ModMap); err != nil {
		return nil, fmt.Errorf("mod_map: %w", err)
	}
	if err := fillTable(&km.MouseMap, p.MouseMap); err != nil {
		return nil, fmt.Errorf("mouse_map: %w", err)
	}

	return km, nil
}

func fillTable(table *[KeyMax]uint16, sparse map[uint16]uint16) error {
	for code, mapped := range sparse {
		if int(code) >= evdev.KEY_MAX {
			return fmt.Errorf("keycode %d >= KEY_MAX (%d)", code, evdev.KEY_MAX)
		}
		table[code] = mapped
	}
	return nil
}
