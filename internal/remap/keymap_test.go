package remap

import "testing"

func TestNewKeyMapDefaults(t *testing.T) {
	p := Profile{MouseSpeedupMs: 400}

	km, err := NewKeyMap(p)
	if err != nil {
		t.Fatalf("NewKeyMap returned error: %v", err)
	}

	if km.MouseSensitivity != defaultSensitivity {
		t.Errorf("expected non-positive sensitivity to clamp to %v, got %v", defaultSensitivity, km.MouseSensitivity)
	}
}

func TestNewKeyMapSensitivityBounds(t *testing.T) {
	tests := []struct {
		name        string
		sensitivity float64
		wantErr     bool
		wantValue   float64
	}{
		{"zero clamps to default", 0, false, defaultSensitivity},
		{"negative clamps to default", -2.5, false, defaultSensitivity},
		{"in range passes through", 3.0, false, 3.0},
		{"at lower bound rejected", minMouseSensitivity, true, 0},
		{"below lower bound rejected", 0.05, true, 0},
		{"at upper bound rejected", maxMouseSensitivity, true, 0},
		{"past upper bound rejected", maxMouseSensitivity + 1, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Profile{MouseSensitivity: tt.sensitivity, MouseSpeedupMs: 400}
			km, err := NewKeyMap(p)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected an error for sensitivity %v, got none", tt.sensitivity)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if km.MouseSensitivity != tt.wantValue {
				t.Errorf("expected sensitivity %v, got %v", tt.wantValue, km.MouseSensitivity)
			}
		})
	}
}

func TestNewKeyMapSpeedupBounds(t *testing.T) {
	tests := []struct {
		name    string
		speedup int
		wantErr bool
	}{
		{"zero rejected", 0, true},
		{"negative rejected", -1, true},
		{"in range accepted", 400, false},
		{"at upper bound accepted", maxMouseSpeedupMs, false},
		{"past upper bound rejected", maxMouseSpeedupMs + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Profile{MouseSpeedupMs: tt.speedup}
			_, err := NewKeyMap(p)

			if tt.wantErr && err == nil {
				t.Fatalf("expected an error for mouse_speedup_ms %d, got none", tt.speedup)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestNewKeyMapRejectsCodeAboveKeyMax(t *testing.T) {
	p := Profile{
		MouseSpeedupMs: 400,
		DirectMap:      map[uint16]uint16{uint16(KeyMax + 10): 1},
	}

	if _, err := NewKeyMap(p); err == nil {
		t.Fatal("expected an error for a direct_map keycode >= KEY_MAX, got none")
	}
}

func TestNewKeyMapExpandsSparseTables(t *testing.T) {
	p := Profile{
		MouseSpeedupMs: 400,
		DirectMap:      map[uint16]uint16{30: 48},
		ModMap:         map[uint16]uint16{17: 103},
		MouseMap:       map[uint16]uint16{37: 272},
	}

	km, err := NewKeyMap(p)
	if err != nil {
		t.Fatalf("NewKeyMap returned error: %v", err)
	}

	if got := km.DirectMap[30]; got != 48 {
		t.Errorf("expected DirectMap[30] == 48, got %d", got)
	}
	if got := km.DirectMap[31]; got != 0 {
		t.Errorf("expected DirectMap[31] == 0 (identity), got %d", got)
	}
	if got := km.ModMap[17]; got != 103 {
		t.Errorf("expected ModMap[17] == 103, got %d", got)
	}
	if got := km.MouseMap[37]; got != 272 {
		t.Errorf("expected MouseMap[37] == 272, got %d", got)
	}
}
