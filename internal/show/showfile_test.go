package show

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
)

func TestDocumentRoundTrip(t *testing.T) {
	s := New("Round Trip")
	if err := s.Patch.AddFixture(FixtureInstance{FixtureID: 1, Name: "PAR 1", FixtureType: "rgb_par_3ch", Universe: 1, Address: 1}); err != nil {
		t.Fatalf("AddFixture: %v", err)
	}

	cl := s.CueLists[MainCueList]
	cl.Put(Cue{
		Number: 1,
		Label:  "Red",
		FadeMs: 500,
		Changes: map[uint32]FixtureValues{
			1: {R: Level(255)},
		},
	})
	s.Palettes["warm"] = Palette{Kind: PaletteColor, Values: FixtureValues{R: Level(255), G: Level(128)}}
	s.SetGroup("pars", []uint32{1})

	data, err := MarshalDocument(s)
	if err != nil {
		t.Fatalf("MarshalDocument: %v", err)
	}

	loaded, err := UnmarshalDocument(data)
	if err != nil {
		t.Fatalf("UnmarshalDocument: %v", err)
	}

	cue, ok := loaded.CueLists[MainCueList].Cue(1)
	if !ok {
		t.Fatal("cue 1 missing after round trip")
	}
	vals := cue.Changes[1]
	if vals.R == nil || *vals.R != 255 {
		t.Errorf("R = %v, want 255", vals.R)
	}
	if vals.G != nil || vals.B != nil || vals.Intensity != nil {
		t.Error("unset fields must stay unset after round trip")
	}

	pal := loaded.Palettes["warm"]
	if pal.Values.B != nil {
		t.Error("palette's unset blue must stay unset")
	}
}

func TestMarshal_UnsetFieldsAbsent(t *testing.T) {
	data, err := json.Marshal(FixtureValues{R: Level(0)})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"r":0`) {
		t.Errorf("set zero should serialize as 0: %s", out)
	}
	for _, absent := range []string{"intensity", `"g"`, `"b"`} {
		if strings.Contains(out, absent) {
			t.Errorf("unset field %s should be absent: %s", absent, out)
		}
	}
}

func TestUnmarshal_FillsDefaults(t *testing.T) {
	loaded, err := UnmarshalDocument([]byte(`{"name":"Bare","patch":{}}`))
	if err != nil {
		t.Fatalf("UnmarshalDocument: %v", err)
	}

	if loaded.Palettes == nil || loaded.Groups == nil {
		t.Error("absent sections should load as empty maps")
	}
	if _, ok := loaded.CueLists[MainCueList]; !ok {
		t.Error("'main' cue list must always exist after load")
	}
}

func TestSaveLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "show.json")

	s := New("Disk Show")
	if err := SaveFile(s, path); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if loaded.Name != "Disk Show" {
		t.Errorf("Name = %q", loaded.Name)
	}
}
