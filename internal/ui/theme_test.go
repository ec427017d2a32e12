package ui

import (
	"testing"
)

func TestGetTheme_FallsBackToNightfox(t *testing.T) {
	if got := GetTheme("does-not-exist").Name; got != "Nightfox" {
		t.Fatalf("GetTheme(unknown) = %q, want Nightfox", got)
	}
	if got := GetTheme("Slate").Name; got != "Slate" {
		t.Fatalf("GetTheme(Slate) = %q, want Slate", got)
	}
}

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	if len(names) != 3 {
		t.Fatalf("ThemeNames() returned %d names, want 3", len(names))
	}
	for _, name := range names {
		if GetTheme(name).Name != name {
			t.Fatalf("GetTheme(%q) returned a different theme", name)
		}
	}
}

func TestThemesCoverTargetStatuses(t *testing.T) {
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		for _, status := range []string{"processing", "success", "failed", "active", "inactive"} {
			if th.StatusColors[status] == "" {
				t.Fatalf("theme %s has no color for %q", name, status)
			}
		}
	}
}

func TestStatusStyle_UnknownUsesMuted(t *testing.T) {
	th := GetTheme("Nightfox")
	styles := th.Styles()
	got := styles.StatusStyle("mystery").GetBackground()
	want := styles.StatusStyle("").GetBackground()
	if got != want {
		t.Fatalf("StatusStyle(mystery) background = %v, want %v", got, want)
	}
}
