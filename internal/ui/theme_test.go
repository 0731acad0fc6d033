package ui

import "testing"

func TestGetTheme_UnknownFallsBackToNoir(t *testing.T) {
	if got := GetTheme("Dracula").Name; got != "Noir" {
		t.Fatalf("GetTheme(Dracula) = %q, want Noir", got)
	}
	if got := GetTheme("Slate").Name; got != "Slate" {
		t.Fatalf("GetTheme(Slate) = %q, want Slate", got)
	}
}

func TestNextTheme_CyclesAndWraps(t *testing.T) {
	names := ThemeNames()
	current := names[0]
	for i := 1; i <= len(names); i++ {
		current = NextTheme(current)
		if want := names[i%len(names)]; current != want {
			t.Fatalf("step %d: NextTheme = %q, want %q", i, current, want)
		}
	}
	if got := NextTheme("missing"); got != names[0] {
		t.Fatalf("NextTheme(missing) = %q, want %q", got, names[0])
	}
}

func TestThemesDefineEveryColor(t *testing.T) {
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		colors := map[string]string{
			"Background":    th.Background,
			"Surface":       th.Surface,
			"SurfaceAlt":    th.SurfaceAlt,
			"SelectionBg":   th.SelectionBg,
			"SelectionText": th.SelectionText,
			"Text":          th.Text,
			"Muted":         th.Muted,
			"Accent":        th.Accent,
			"Warning":       th.Warning,
			"Danger":        th.Danger,
			"Price":         th.Price,
		}
		for field, value := range colors {
			if len(value) != 7 || value[0] != '#' {
				t.Fatalf("%s.%s = %q, want #rrggbb", name, field, value)
			}
		}
	}
}
