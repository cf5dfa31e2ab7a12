package programmer

import (
	"testing"

	"github.com/bbernstein/lightcore-go/internal/show"
)

func testShow(t *testing.T) *show.Show {
	t.Helper()
	s := show.New("Test")
	if err := s.Patch.AddFixture(show.FixtureInstance{FixtureID: 1, Name: "PAR 1", FixtureType: "rgb_par_3ch", Universe: 1, Address: 1}); err != nil {
		t.Fatalf("AddFixture: %v", err)
	}
	if err := s.Patch.AddFixture(show.FixtureInstance{FixtureID: 10, Name: "DIM 1", FixtureType: "dimmer_1ch", Universe: 1, Address: 100}); err != nil {
		t.Fatalf("AddFixture: %v", err)
	}
	return s
}

func TestRender_RGBPar(t *testing.T) {
	s := testShow(t)

	p := New()
	p.SelectOne(1)
	p.SetRGB(10, 20, 30)

	live, err := p.Render(s)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	nz := live.Nonzero()
	if len(nz) != 3 {
		t.Fatalf("nonzero = %v", nz)
	}
	for i, want := range []struct {
		addr uint16
		val  byte
	}{{1, 10}, {2, 20}, {3, 30}} {
		if nz[i].Universe != 1 || nz[i].Address != want.addr || nz[i].Value != want.val {
			t.Errorf("nonzero[%d] = %v, want (1,%d,%d)", i, nz[i], want.addr, want.val)
		}
	}
}

func TestRender_DimmerIntensity(t *testing.T) {
	s := testShow(t)

	p := New()
	p.SelectOne(10)
	p.SetIntensityPercent(100)

	live, err := p.Render(s)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := live.Get(1, 100); got != 255 {
		t.Errorf("U1:100 = %d, want 255", got)
	}
}

func TestRender_UnknownFixtureFails(t *testing.T) {
	s := testShow(t)

	p := New()
	p.SelectOne(42)
	p.SetIntensityPercent(50)

	if _, err := p.Render(s); err == nil {
		t.Error("rendering an unpatched fixture should fail")
	}
}

func TestRender_AddressOutOfRangeFails(t *testing.T) {
	s := testShow(t)
	if err := s.Patch.AddFixture(show.FixtureInstance{FixtureID: 99, Name: "Edge", FixtureType: "rgb_par_3ch", Universe: 1, Address: 511}); err != nil {
		t.Fatalf("AddFixture: %v", err)
	}

	p := New()
	p.SelectOne(99)
	p.SetRGB(1, 2, 3)

	if _, err := p.Render(s); err == nil {
		t.Error("channel past address 512 should be a render error")
	}
}

func TestSetIntensityPercent_ScalingAndClamp(t *testing.T) {
	p := New()

	p.SetIntensityPercent(50)
	if *p.Intensity != 127 {
		t.Errorf("50%% = %d, want 127", *p.Intensity)
	}

	p.SetIntensityPercent(100)
	if *p.Intensity != 255 {
		t.Errorf("100%% = %d, want 255", *p.Intensity)
	}

	p.SetIntensityPercent(130)
	if *p.Intensity != 255 {
		t.Errorf("over-100%% should clamp to 255, got %d", *p.Intensity)
	}

	p.SetIntensityPercent(0)
	if *p.Intensity != 0 {
		t.Errorf("0%% = %d, want 0", *p.Intensity)
	}
}

func TestSelectRange_OrderAgnostic(t *testing.T) {
	p := New()
	p.SelectRange(5, 3)

	want := []uint32{3, 4, 5}
	got := p.Selected()
	if len(got) != len(want) {
		t.Fatalf("Selected() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Selected()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestClearValuesKeepsSelection(t *testing.T) {
	p := New()
	p.SelectOne(1)
	p.SetRGB(1, 2, 3)

	p.ClearValues()
	if p.R != nil || p.G != nil || p.B != nil || p.Intensity != nil {
		t.Error("ClearValues should unset every value")
	}
	if !p.IsSelected(1) {
		t.Error("ClearValues should keep the selection")
	}

	p.ClearAll()
	if !p.SelectionEmpty() {
		t.Error("ClearAll should clear the selection")
	}
}

func TestApplyPalette_KindGated(t *testing.T) {
	p := New()
	p.SetRGB(1, 2, 3)
	p.SetIntensityPercent(50)

	// Color palette with only red set: g/b untouched, intensity untouched
	p.ApplyPalette(show.Palette{
		Kind:   show.PaletteColor,
		Values: show.FixtureValues{R: show.Level(200)},
	})
	if *p.R != 200 {
		t.Errorf("R = %d, want 200", *p.R)
	}
	if *p.G != 2 || *p.B != 3 {
		t.Error("fields the palette omits must not change")
	}
	if *p.Intensity != 127 {
		t.Error("color palette must not touch intensity")
	}

	// Intensity palette ignores its color fields even if present
	p.ApplyPalette(show.Palette{
		Kind:   show.PaletteIntensity,
		Values: show.FixtureValues{Intensity: show.Level(255), R: show.Level(9)},
	})
	if *p.Intensity != 255 {
		t.Errorf("Intensity = %d, want 255", *p.Intensity)
	}
	if *p.R != 200 {
		t.Error("intensity palette must not touch color")
	}
}
