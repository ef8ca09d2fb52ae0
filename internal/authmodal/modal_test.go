package authmodal

import (
	"testing"
)

func TestNew(t *testing.T) {
	m := New()

	if m.Visible() {
		t.Error("New() modal should be hidden")
	}
	if m.Mode() != ModeLogin {
		t.Errorf("New() mode = %v, want %v", m.Mode(), ModeLogin)
	}
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name string
		args []Mode
		want Mode
	}{
		{"no argument", nil, ModeLogin},
		{"register", []Mode{ModeRegister}, ModeRegister},
		{"login", []Mode{ModeLogin}, ModeLogin},
		{"unknown falls back to login", []Mode{"bogus"}, ModeLogin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New()
			m.Open(tt.args...)

			got := m.Snapshot()
			if !got.Visible {
				t.Error("Open() should make the modal visible")
			}
			if got.Mode != tt.want {
				t.Errorf("Open(%v) mode = %v, want %v", tt.args, got.Mode, tt.want)
			}
		})
	}
}

func TestCloseThenOpenKeepsLastMode(t *testing.T) {
	m := New()
	m.Open(ModeRegister)
	m.Close()

	if m.Visible() {
		t.Fatal("Close() should hide the modal")
	}
	if m.Mode() != ModeRegister {
		t.Fatalf("Close() mode = %v, want %v", m.Mode(), ModeRegister)
	}

	m.Open()

	if !m.Visible() || m.Mode() != ModeRegister {
		t.Errorf("Open() after Close() = %+v, want visible register", m.Snapshot())
	}
}

func TestToggleMode(t *testing.T) {
	m := New()

	m.ToggleMode()
	if m.Mode() != ModeRegister {
		t.Errorf("ToggleMode() = %v, want %v", m.Mode(), ModeRegister)
	}
	if m.Visible() {
		t.Error("ToggleMode() should not change visibility")
	}

	m.ToggleMode()
	if m.Mode() != ModeLogin {
		t.Errorf("ToggleMode() = %v, want %v", m.Mode(), ModeLogin)
	}
}

func TestSetMode(t *testing.T) {
	m := New()

	if !m.SetMode(ModeRegister) {
		t.Error("SetMode(register) = false, want true")
	}
	if m.Mode() != ModeRegister {
		t.Errorf("mode = %v, want %v", m.Mode(), ModeRegister)
	}

	if m.SetMode("bogus") {
		t.Error("SetMode(bogus) = true, want false")
	}
	if m.Mode() != ModeRegister {
		t.Errorf("SetMode(bogus) changed mode to %v", m.Mode())
	}
}

func TestParseMode(t *testing.T) {
	if m, ok := ParseMode(" Register "); !ok || m != ModeRegister {
		t.Errorf("ParseMode(Register) = %v, %v", m, ok)
	}
	if _, ok := ParseMode("admin"); ok {
		t.Error("ParseMode(admin) should fail")
	}
}

func TestOnChange(t *testing.T) {
	m := New()
	var seen []State
	m.OnChange(func(s State) { seen = append(seen, s) })

	m.Open(ModeRegister)
	m.SetMode("bogus")
	m.Close()

	if len(seen) != 2 {
		t.Fatalf("OnChange fired %d times, want 2", len(seen))
	}
	if seen[1] != (State{Visible: false, Mode: ModeRegister}) {
		t.Errorf("last state = %+v", seen[1])
	}
}

func TestRestore(t *testing.T) {
	m := New()
	called := false
	m.OnChange(func(State) { called = true })

	m.Restore(State{Visible: true, Mode: ModeRegister})
	if m.Snapshot() != (State{Visible: true, Mode: ModeRegister}) {
		t.Errorf("Restore() = %+v", m.Snapshot())
	}

	m.Restore(State{Mode: "weird"})
	if m.Mode() != ModeLogin {
		t.Errorf("Restore() with invalid mode = %v, want login", m.Mode())
	}
	if called {
		t.Error("Restore() should not fire OnChange")
	}
}
