package config

import "sort"

var Presets = map[string]*Config{
	"shell":       shellPreset(),
	"galaxy-disk": diskPreset(),
	"binary":      binaryPreset(),
	"cluster":     clusterPreset(),
	"torus":       torusPreset(),
}

func shellPreset() *Config {
	return DefaultConfig()
}

func diskPreset() *Config {
	c := DefaultConfig()
	c.Grid = GridConfig{X: 64, Y: 64, Z: 32}
	c.World = WorldConfig{Width: 2000, Height: 2000, Depth: 1000}
	c.Figure = FigureConfig{
		Name: "disk", Count: 20000, Seed: 7, CenterMass: 5e5,
		MinRadius: 40, MaxRadius: 600, MassFrom: 0.08, MassUntil: 150,
	}
	c.Run.Ticks = 500
	return c
}

func binaryPreset() *Config {
	c := DefaultConfig()
	c.Boundary = "clamp"
	c.OrbitInit = false
	c.Figure = FigureConfig{
		Name: "binary", Count: 2, Seed: 1, CenterMass: 2e4,
		MinRadius: 150, MassFrom: 1e4, MassUntil: 1e4,
	}
	c.Run.Ticks = 100
	return c
}

func clusterPreset() *Config {
	c := DefaultConfig()
	c.Solver = "relaxation"
	c.RelaxationIterations = 80
	c.OrbitInit = false
	c.Figure = FigureConfig{
		Name: "sphere", Count: 10000, Seed: 3,
		MaxRadius: 300, MassFrom: 1, MassUntil: 2,
	}
	return c
}

func torusPreset() *Config {
	c := DefaultConfig()
	c.Figure = FigureConfig{
		Name: "torus", Count: 5000, Seed: 5, CenterMass: 2e5,
		MinRadius: 40, MaxRadius: 250, MassFrom: 1, MassUntil: 1.5,
	}
	return c
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return p.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
