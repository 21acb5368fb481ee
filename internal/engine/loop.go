package engine

import (
	"errors"
	"syscall"

	"github.com/gvalkov/golang-evdev"
	"golang.org/x/sys/unix"
)

const mouseTickTimeoutMs = 10

// Run is C6, spec.md §4.6: the single-threaded poll/dispatch loop. It reads
// whichever events evdev already has queued, blocks on the input fd's
// POLLIN (10ms timeout while mousePressed, else indefinitely) when nothing
// is queued, routes every key event through handleEvent (C4), and invokes
// tick (C5) when the poll timed out or a key event just arrived while mouse
// mode is active.
//
// The REDESIGN FLAG in spec.md §9 — handle_mouse_move reading a possibly
// stale ev.type == EV_KEY after a poll timeout — is resolved here by
// threading explicit timedOut/eventArrived booleans through each iteration
// instead of inspecting leftover event state.
func (e *Engine) Run() error {
	for e.running.Load() {
		events, timedOut, err := e.fetchEvents()
		if err != nil {
			return err
		}

		eventArrived := false
		for _, ev := range events {
			switch ev.Type {
			case evdev.EV_KEY:
				eventArrived = true
				if err := e.handleEvent(ev); err != nil {
					return err
				}
			case evdev.EV_SYN, evdev.EV_MSC:
				// Physical SYN/MSC packets carry no remap decision of
				// their own; every emitted packet gets its own SYN from
				// the sinks, so these are not forwarded.
			default:
				return assertionErr("event loop dispatch", errUnsupportedEventType(ev.Type))
			}
		}

		if e.mousePressed && (timedOut || eventArrived) {
			if err := e.tick(); err != nil {
				return err
			}
		}
	}
	return nil
}

// fetchEvents implements spec.md §4.6 steps 1–2: ask evdev whether an event
// is already queued (a non-blocking Read, since the device fd is opened
// O_NONBLOCK), falling back to poll(2) with the mouse-driven timeout when
// nothing is ready. Any Read error other than EAGAIN is returned as a fatal
// IO error. A kernel SYN_DROPPED report arrives as an ordinary EV_SYN event,
// which Run absorbs like every other EV_SYN: the drop is not logged and the
// device state is not re-read in sync mode.
func (e *Engine) fetchEvents() (events []evdev.InputEvent, timedOut bool, err error) {
	events, err = e.device.Read()
	if err == nil {
		return events, false, nil
	}
	if !errors.Is(err, syscall.EAGAIN) {
		return nil, false, ioErr("read input event", err)
	}

	timeout := -1
	if e.mousePressed {
		timeout = mouseTickTimeoutMs
	}

	fds := []unix.PollFd{{Fd: int32(e.device.Fd()), Events: unix.POLLIN}}
	n, perr := unix.Poll(fds, timeout)
	if perr != nil {
		if errors.Is(perr, syscall.EINTR) {
			return nil, false, nil
		}
		return nil, false, ioErr("poll input fd", perr)
	}
	if n == 0 {
		return nil, true, nil
	}

	events, err = e.device.Read()
	if err != nil {
		if errors.Is(err, syscall.EAGAIN) {
			return nil, false, nil
		}
		return nil, false, ioErr("read input event after poll", err)
	}
	return events, false, nil
}

type errUnsupportedEventType uint16

func (e errUnsupportedEventType) Error() string {
	return "unsupported event type on grabbed keyboard device"
}
