package input

import (
	"os"
	"testing"

	"github.com/gvalkov/golang-evdev"
)

func TestIsQwertyRequiresProbeKeysAndInput0(t *testing.T) {
	full := make([]int, 0, len(qwertyProbeKeys))
	full = append(full, qwertyProbeKeys...)

	tests := []struct {
		name string
		caps map[int][]int
		phys string
		want bool
	}{
		{"missing EV_KEY capability entirely", map[int][]int{}, "usb-0000:00:14.0-1/input0", false},
		{"missing one probe key", map[int][]int{evdev.EV_KEY: full[:len(full)-1]}, "usb-0000:00:14.0-1/input0", false},
		{"all probe keys but wrong phys suffix", map[int][]int{evdev.EV_KEY: full}, "usb-0000:00:14.0-1/input1", false},
		{"all probe keys and input0 phys", map[int][]int{evdev.EV_KEY: full}, "usb-0000:00:14.0-1/input0", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := &evdev.InputDevice{
				CapabilitiesFlat: tt.caps,
				Phys:             tt.phys,
			}
			if got := isQwerty(dev); got != tt.want {
				t.Errorf("isQwerty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOpenByPathRequiresRoot(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("running as root: permission checks below would not fail as expected")
	}
	if _, err := os.Stat("/dev/input/event0"); os.IsNotExist(err) {
		t.Skip("/dev/input/event0 does not exist in this environment")
	}

	if _, err := OpenByPath("/dev/input/event0"); err == nil {
		t.Error("expected OpenByPath to fail without root privileges")
	}
}

func TestOpenByNameNoMatch(t *testing.T) {
	if _, err := os.Stat("/dev/input"); os.IsNotExist(err) {
		t.Skip("/dev/input does not exist in this environment")
	}

	if _, err := OpenByName("definitely-not-a-real-keyboard-name"); err == nil {
		t.Error("expected OpenByName to fail for a name with no matching device")
	}
}
