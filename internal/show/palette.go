package show

// PaletteKind says which channels a palette carries on apply.
type PaletteKind string

const (
	PaletteIntensity PaletteKind = "Intensity"
	PaletteColor     PaletteKind = "Color"
)

// Palette is a named partial value set applied to the programmer. An
// Intensity palette only ever touches intensity; a Color palette only ever
// touches r/g/b. Fields the palette leaves unset are never cleared on apply.
type Palette struct {
	Kind   PaletteKind   `json:"kind"`
	Values FixtureValues `json:"values"`
}
