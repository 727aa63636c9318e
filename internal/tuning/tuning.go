package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning holds the knobs for a soak run.
type Tuning struct {
	WorldWidthChunks  int   `yaml:"world_width_chunks"`
	WorldHeightChunks int   `yaml:"world_height_chunks"`
	Seed              int64 `yaml:"seed"`

	Ticks            int `yaml:"ticks"`
	MutationsPerTick int `yaml:"mutations_per_tick"`
	UnloadEveryTicks int `yaml:"unload_every_ticks"`

	WallPermille int `yaml:"wall_permille"`
}

func Defaults() Tuning {
	return Tuning{
		WorldWidthChunks:  10,
		WorldHeightChunks: 4,
		Seed:              1337,
		Ticks:             200,
		MutationsPerTick:  24,
		UnloadEveryTicks:  50,
		WallPermille:      180,
	}
}

func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	if t.WorldWidthChunks <= 0 || t.WorldHeightChunks <= 0 {
		return fmt.Errorf("world size must be positive, got %dx%d", t.WorldWidthChunks, t.WorldHeightChunks)
	}
	if t.Ticks < 0 || t.MutationsPerTick < 0 || t.UnloadEveryTicks < 0 {
		return fmt.Errorf("tick knobs must not be negative")
	}
	if t.WallPermille < 0 || t.WallPermille > 1000 {
		return fmt.Errorf("wall_permille out of range: %d", t.WallPermille)
	}
	return nil
}
