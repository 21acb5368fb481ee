package input

import (
	"os"
	"testing"

	"github.com/gvalkov/golang-evdev"
)

func TestNewMouseSinkIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping uinput integration test in short mode")
	}
	if _, err := os.Stat("/dev/uinput"); os.IsNotExist(err) {
		t.Skip("/dev/uinput does not exist - uinput module not loaded")
	}

	sink, err := NewMouseSink()
	if err != nil {
		t.Skipf("cannot create mouse sink (try: sudo, or add user to input group): %v", err)
	}
	defer func() { _ = sink.Close() }()

	if err := sink.Move(5, -5); err != nil {
		t.Errorf("Move failed: %v", err)
	}
	if err := sink.Click(evdev.BTN_LEFT, true); err != nil {
		t.Errorf("Click press failed: %v", err)
	}
	if err := sink.Click(evdev.BTN_LEFT, false); err != nil {
		t.Errorf("Click release failed: %v", err)
	}
	if err := sink.Wheel(1); err != nil {
		t.Errorf("Wheel failed: %v", err)
	}
}

func TestMouseSinkMoveIsNoopAtOrigin(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping uinput integration test in short mode")
	}
	if _, err := os.Stat("/dev/uinput"); os.IsNotExist(err) {
		t.Skip("/dev/uinput does not exist - uinput module not loaded")
	}

	sink, err := NewMouseSink()
	if err != nil {
		t.Skipf("cannot create mouse sink: %v", err)
	}
	defer func() { _ = sink.Close() }()

	if err := sink.Move(0, 0); err != nil {
		t.Errorf("Move(0, 0) should be a no-op, got error: %v", err)
	}
}

func TestMouseSinkRejectsUnsupportedButton(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping uinput integration test in short mode")
	}
	if _, err := os.Stat("/dev/uinput"); os.IsNotExist(err) {
		t.Skip("/dev/uinput does not exist - uinput module not loaded")
	}

	sink, err := NewMouseSink()
	if err != nil {
		t.Skipf("cannot create mouse sink: %v", err)
	}
	defer func() { _ = sink.Close() }()

	if err := sink.Click(evdev.BTN_SIDE, true); err == nil {
		t.Error("expected an error for an unsupported mouse button code")
	}
}
