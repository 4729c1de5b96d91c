package tray

import (
	"testing"

	"github.com/ayusman/theremin/internal/tone"
)

func TestLastPulseTitle(t *testing.T) {
	tests := []struct {
		name  string
		pulse *tone.Pulse
		want  string
	}{
		{name: "none", pulse: nil, want: "Last: none"},
		{name: "concert A", pulse: &tone.Pulse{Params: tone.Params{Frequency: 440}}, want: "Last: 440.0 Hz"},
		{name: "rounded", pulse: &tone.Pulse{Params: tone.Params{Frequency: 1254.96}}, want: "Last: 1255.0 Hz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := lastPulseTitle(tt.pulse); got != tt.want {
				t.Errorf("lastPulseTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTray_Toggle(t *testing.T) {
	tr := New()

	if !tr.IsEnabled() {
		t.Fatal("tray should start enabled")
	}

	var got []bool
	tr.OnToggle(func(enabled bool) { got = append(got, enabled) })

	tr.handleToggle()
	tr.handleToggle()

	if len(got) != 2 || got[0] != false || got[1] != true {
		t.Errorf("toggle callbacks = %v, want [false true]", got)
	}
	if !tr.IsEnabled() {
		t.Error("tray should be enabled after two toggles")
	}
}

func TestTray_SetEnabled(t *testing.T) {
	tr := New()

	called := false
	tr.OnToggle(func(bool) { called = true })

	tr.SetEnabled(false)

	if tr.IsEnabled() {
		t.Error("IsEnabled() should be false")
	}
	if called {
		t.Error("SetEnabled must not fire the toggle callback")
	}

	// No menu yet; updating the last pulse is a no-op.
	tr.SetLastPulse(tone.Pulse{}, false)
}

func TestTray_Settings(t *testing.T) {
	tr := New()

	opened := 0
	tr.OnSettings(func() { opened++ })
	tr.handleSettings()

	if opened != 1 {
		t.Errorf("settings callback called %d times, want 1", opened)
	}
}
