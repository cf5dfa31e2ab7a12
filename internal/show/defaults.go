package show

// DefaultFixtureTypes is the tiny built-in library every new show starts with.
func DefaultFixtureTypes() []FixtureType {
	return []FixtureType{
		{
			TypeID:       "rgb_par_3ch",
			Manufacturer: "Generic",
			Model:        "RGB PAR (3ch)",
			Channels: []ChannelDef{
				{Name: "Red", Kind: ChannelColorR},
				{Name: "Green", Kind: ChannelColorG},
				{Name: "Blue", Kind: ChannelColorB},
			},
		},
		{
			TypeID:       "dimmer_1ch",
			Manufacturer: "Generic",
			Model:        "Dimmer (1ch)",
			Channels: []ChannelDef{
				{Name: "Intensity", Kind: ChannelIntensity},
			},
		},
	}
}
