package queue

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

// PresetConfig is the raw shape of a preset as written in the config
// file, before validation.
type PresetConfig struct {
	Mode    string `mapstructure:"mode" default:"timedfit"`
	Minutes int    `mapstructure:"minutes" validate:"gte=0,lte=1440"`
	Trials  int    `mapstructure:"trials" default:"10" validate:"gte=1,lte=1000"`
}

// Preset is a named, validated queue recipe.
type Preset struct {
	Name   string
	Mode   Mode
	Target time.Duration
	Trials int
}

// Request materializes the preset against a playlist.
func (p Preset) Request(playlistID string) Request {
	return Request{
		PlaylistID: playlistID,
		Mode:       p.Mode,
		Target:     p.Target,
		Trials:     p.Trials,
	}
}

// ParsePresets decodes and validates the preset section of the config
// file. Unknown keys are rejected so typos do not vanish silently.
func ParsePresets(raw map[string]map[string]any) (map[string]Preset, error) {
	presets := make(map[string]Preset, len(raw))
	for name, settings := range raw {
		var pc PresetConfig
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:      &pc,
			TagName:     "mapstructure",
			ErrorUnused: true,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "preset %q", name)
		}
		if err := decoder.Decode(settings); err != nil {
			return nil, errors.Wrapf(err, "preset %q", name)
		}
		if err := defaults.Set(&pc); err != nil {
			return nil, errors.Wrapf(err, "preset %q", name)
		}
		if err := validator.New().Struct(&pc); err != nil {
			return nil, errors.Wrapf(err, "preset %q", name)
		}

		mode, err := ParseMode(pc.Mode)
		if err != nil {
			return nil, errors.Wrapf(err, "preset %q", name)
		}
		if mode == ModeTimedFit && pc.Minutes < 1 {
			return nil, errors.Newf("preset %q: timedfit requires minutes to be set", name)
		}

		presets[name] = Preset{
			Name:   name,
			Mode:   mode,
			Target: time.Duration(pc.Minutes) * time.Minute,
			Trials: pc.Trials,
		}
	}
	return presets, nil
}
