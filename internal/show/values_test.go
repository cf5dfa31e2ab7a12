package show

import "testing"

func TestApplyDelta_OnlySetFieldsOverwrite(t *testing.T) {
	base := FixtureValues{R: Level(10), G: Level(20)}
	delta := FixtureValues{G: Level(99), B: Level(30)}

	base.ApplyDelta(delta)

	if base.R == nil || *base.R != 10 {
		t.Errorf("R should be untouched at 10, got %v", base.R)
	}
	if base.G == nil || *base.G != 99 {
		t.Errorf("G should be overwritten to 99, got %v", base.G)
	}
	if base.B == nil || *base.B != 30 {
		t.Errorf("B should be set to 30, got %v", base.B)
	}
	if base.Intensity != nil {
		t.Errorf("Intensity should remain unset, got %v", *base.Intensity)
	}
}

func TestApplyDelta_ZeroIsAValue(t *testing.T) {
	base := FixtureValues{R: Level(200)}
	base.ApplyDelta(FixtureValues{R: Level(0)})

	if base.R == nil || *base.R != 0 {
		t.Errorf("R should be overwritten to 0, got %v", base.R)
	}
}

func TestIsAllNone(t *testing.T) {
	if !(FixtureValues{}).IsAllNone() {
		t.Error("empty values should be all-none")
	}
	if (FixtureValues{B: Level(0)}).IsAllNone() {
		t.Error("a set field (even 0) is not none")
	}
}

func TestResolved_IsTotal(t *testing.T) {
	v := FixtureValues{G: Level(42)}.Resolved()

	for name, field := range map[string]*byte{
		"intensity": v.Intensity, "r": v.R, "g": v.G, "b": v.B,
	} {
		if field == nil {
			t.Errorf("resolved %s should be set", name)
		}
	}
	if *v.G != 42 {
		t.Errorf("resolved G = %d, want 42", *v.G)
	}
	if *v.R != 0 {
		t.Errorf("resolved R = %d, want 0", *v.R)
	}
}

func TestClone_DoesNotAlias(t *testing.T) {
	orig := FixtureValues{Intensity: Level(100)}
	cp := orig.Clone()
	*cp.Intensity = 7

	if *orig.Intensity != 100 {
		t.Errorf("mutating the clone changed the original: %d", *orig.Intensity)
	}
}
