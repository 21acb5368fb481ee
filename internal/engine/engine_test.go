package engine

import (
	"github.com/alexveden/uberkb-sub001/internal/remap"
)

// emittedEvent records one call to fakeKbd.Emit, for assertions in the
// decision-tree tests that don't need a real /dev/uinput device.
type emittedEvent struct {
	typ, code uint16
	value     int32
}

type fakeKbd struct {
	events []emittedEvent
	syns   int
}

func (f *fakeKbd) Emit(typ, code uint16, value int32) error {
	f.events = append(f.events, emittedEvent{typ, code, value})
	return nil
}

func (f *fakeKbd) EmitSyn() error {
	f.syns++
	return nil
}

func (f *fakeKbd) Close() error { return nil }

type fakeMouseCall struct {
	kind    string // "move", "click", "wheel"
	dx, dy  int32
	button  uint16
	pressed bool
	wheel   int32
}

type fakeMouse struct {
	calls []fakeMouseCall
}

func (f *fakeMouse) Move(dx, dy int32) error {
	f.calls = append(f.calls, fakeMouseCall{kind: "move", dx: dx, dy: dy})
	return nil
}

func (f *fakeMouse) Click(button uint16, pressed bool) error {
	f.calls = append(f.calls, fakeMouseCall{kind: "click", button: button, pressed: pressed})
	return nil
}

func (f *fakeMouse) Wheel(v int32) error {
	f.calls = append(f.calls, fakeMouseCall{kind: "wheel", wheel: v})
	return nil
}

func (f *fakeMouse) Close() error { return nil }

// newTestEngine builds an Engine around fake sinks, bypassing Create's
// hardware acquisition entirely, so the state machine (C4) and motion
// driver (C5) can be exercised without a grabbed device or /dev/uinput.
func newTestEngine(p remap.Profile) (*Engine, *fakeKbd, *fakeMouse) {
	km, err := remap.NewKeyMap(p)
	if err != nil {
		panic(err)
	}

	kbd := &fakeKbd{}
	mouse := &fakeMouse{}
	e := &Engine{km: km, kbd: kbd, mouse: mouse}
	e.running.Store(true)
	return e, kbd, mouse
}
