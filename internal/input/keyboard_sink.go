package input

import (
	"encoding/binary"
	"fmt"
	"os"
	"time"
	"unsafe"

	"github.com/gvalkov/golang-evdev"
	"golang.org/x/sys/unix"
)

// uinput ioctl numbers, from <linux/uinput.h>. Grounded on
// other_examples/bnema-uinputd-go's internal/uinput/constants.go, the one
// place in the corpus that hand-computes these rather than going through a
// high-level wrapper — exactly the layer C2 needs, since the rescue-release
// and virtual-click sequences (spec.md §4.4) require a raw MSC_SCAN event
// ahead of the KEY event that ThomasT75/uinput's Keyboard does not expose.
const (
	uiSetEvBit   = 0x40045564
	uiSetKeyBit  = 0x40045565
	uiDevCreate  = 0x5501
	uiDevDestroy = 0x5502
	uiDevSetup   = 0x405c5503
)

const (
	busUSB          = 0x03 // BUS_USB, from <linux/input.h>
	keyboardVendor  = 0x1234
	keyboardProduct = 0x0001
	keyboardName    = "UberKeyboardMappper"
)

// uiSetup mirrors struct uinput_setup from <linux/uinput.h>.
type uiSetup struct {
	ID           inputID
	Name         [80]byte
	FFEffectsMax uint32
}

// inputID mirrors struct input_id from <linux/input.h>.
type inputID struct {
	Bustype uint16
	Vendor  uint16
	Product uint16
	Version uint16
}

// KeyboardSink is C2: a uinput device advertising every keycode up to
// KEY_MAX, exposing a single synchronous Emit. Grounded on
// other_examples/bnema-uinputd-go's internal/uinput/device.go and events.go.
type KeyboardSink struct {
	fd *os.File
}

// NewKeyboardSink opens /dev/uinput, advertises EV_KEY/EV_SYN/EV_MSC and
// every code in [0, KEY_MAX), and creates the device with the vendor/
// product/name spec.md §6 fixes.
func NewKeyboardSink() (*KeyboardSink, error) {
	fd, err := os.OpenFile("/dev/uinput", os.O_WRONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("open /dev/uinput: %w", err)
	}

	sink := &KeyboardSink{fd: fd}
	if err := sink.setup(); err != nil {
		fd.Close()
		return nil, fmt.Errorf("keyboard sink setup: %w", err)
	}
	return sink, nil
}

func (s *KeyboardSink) setup() error {
	if err := s.ioctl(uiSetEvBit, uintptr(evdev.EV_KEY)); err != nil {
		return fmt.Errorf("UI_SET_EVBIT EV_KEY: %w", err)
	}
	if err := s.ioctl(uiSetEvBit, uintptr(evdev.EV_SYN)); err != nil {
		return fmt.Errorf("UI_SET_EVBIT EV_SYN: %w", err)
	}
	if err := s.ioctl(uiSetEvBit, uintptr(evdev.EV_MSC)); err != nil {
		return fmt.Errorf("UI_SET_EVBIT EV_MSC: %w", err)
	}

	for code := 0; code < evdev.KEY_MAX; code++ {
		if err := s.ioctl(uiSetKeyBit, uintptr(code)); err != nil {
			return fmt.Errorf("UI_SET_KEYBIT %d: %w", code, err)
		}
	}

	setup := uiSetup{
		ID: inputID{
			Bustype: busUSB,
			Vendor:  keyboardVendor,
			Product: keyboardProduct,
			Version: 1,
		},
	}
	copy(setup.Name[:], keyboardName)

	if err := s.ioctlPtr(uiDevSetup, unsafe.Pointer(&setup)); err != nil {
		return fmt.Errorf("UI_DEV_SETUP: %w", err)
	}
	if err := s.ioctl(uiDevCreate, 0); err != nil {
		return fmt.Errorf("UI_DEV_CREATE: %w", err)
	}
	return nil
}

// Emit writes one exact 24-byte input_event record. Callers are responsible
// for following every semantic packet with a SYN, per spec.md §4.2.
func (s *KeyboardSink) Emit(typ, code uint16, value int32) error {
	buf := make([]byte, 24)
	now := time.Now()
	binary.LittleEndian.PutUint64(buf[0:8], uint64(now.Unix()))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(now.Nanosecond()/1000))
	binary.LittleEndian.PutUint16(buf[16:18], typ)
	binary.LittleEndian.PutUint16(buf[18:20], code)
	binary.LittleEndian.PutUint32(buf[20:24], uint32(value))

	n, err := s.fd.Write(buf)
	if err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	if n != len(buf) {
		return fmt.Errorf("incomplete event write: %d/%d bytes", n, len(buf))
	}
	return nil
}

// EmitSyn is a shorthand for the SYN_REPORT every semantic packet ends with.
func (s *KeyboardSink) EmitSyn() error {
	return s.Emit(uint16(evdev.EV_SYN), uint16(evdev.SYN_REPORT), 0)
}

// Close destroys the virtual device and closes the fd, per spec.md §5.
func (s *KeyboardSink) Close() error {
	if s.fd == nil {
		return nil
	}
	_ = s.ioctl(uiDevDestroy, 0) // best-effort; the fd close below releases it either way
	err := s.fd.Close()
	s.fd = nil
	return err
}

func (s *KeyboardSink) ioctl(req uintptr, arg uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, s.fd.Fd(), req, arg)
	if errno != 0 {
		return errno
	}
	return nil
}

func (s *KeyboardSink) ioctlPtr(req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, s.fd.Fd(), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}
