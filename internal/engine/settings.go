package engine

import "errors"

// ErrNoDirection rejects a settings update that would disable both
// price-direction filters; the caller keeps its prior state.
var ErrNoDirection = errors.New("at least one of showIncrease/showDecrease must stay enabled")

// Settings are the live-tunable knobs read at classification and
// projection time, so operators can retune without reconnecting.
type Settings struct {
	MinVolume           float64 `json:"minVolume"`
	AlertThresholdTimes float64 `json:"alertThresholdTimes"`
	ShowIncrease        bool    `json:"showIncrease"`
	ShowDecrease        bool    `json:"showDecrease"`
}

func DefaultSettings() Settings {
	return Settings{
		MinVolume:           10000,
		AlertThresholdTimes: 2.5,
		ShowIncrease:        true,
		ShowDecrease:        true,
	}
}

func (s Settings) validate() error {
	if !s.ShowIncrease && !s.ShowDecrease {
		return ErrNoDirection
	}
	return nil
}

func (s Settings) filters() Filters {
	return Filters{
		MinVolume:    s.MinVolume,
		ShowIncrease: s.ShowIncrease,
		ShowDecrease: s.ShowDecrease,
	}
}
