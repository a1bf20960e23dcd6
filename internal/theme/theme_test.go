package theme

import "testing"

func TestInitializeDisabled(t *testing.T) {
	if err := Initialize(""); err != nil {
		t.Fatal(err)
	}
	if IsEnabled() || Current() != nil {
		t.Error("empty theme name should disable theming")
	}
	if DesktopBg() == nil || TitleFocusedBg() == nil {
		t.Error("fallback palette returned nil")
	}
}

func TestInitializeUnknownFallsBack(t *testing.T) {
	t.Cleanup(func() { _ = Initialize("") })

	if err := Initialize("definitely-not-a-theme"); err != nil {
		t.Fatal(err)
	}
	if !IsEnabled() {
		t.Fatal("expected theming enabled")
	}
	if Name() != "default" {
		t.Errorf("Name() = %q, want default", Name())
	}
	if Current() == nil {
		t.Error("Current() returned nil while enabled")
	}
}

func TestBlueScreenIgnoresTheme(t *testing.T) {
	t.Cleanup(func() { _ = Initialize("") })

	before := BlueScreenBg()
	_ = Initialize("default")
	if BlueScreenBg() != before {
		t.Error("blue screen colour changed with theme")
	}
}
