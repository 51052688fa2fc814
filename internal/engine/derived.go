package engine

import "VolPulse/internal/domain/models"

// Derived metrics are pure functions over a snapshot. Anything with a
// zero or absent denominator degrades to (0, false) instead of NaN/Inf;
// presentation renders that as a placeholder.

// averagePeriodSeconds is the reference period length the accumulated
// volume window is rescaled to.
const averagePeriodSeconds = 180

func PriceChangePercent(s *models.Snapshot) float64 {
	return s.Changes.Price.Percent
}

func VolumeChangePercent(s *models.Snapshot) float64 {
	return s.Changes.Volume.Percent
}

// VolumeChangeTimes converts the multiplier-encoded percent to a plain
// factor (300 -> 3.0).
func VolumeChangeTimes(s *models.Snapshot) float64 {
	return s.Changes.Volume.Percent / 100
}

// VolumeToMarketCapRatio is a liquidity proxy in percent. Unavailable
// when market cap is zero or unknown.
func VolumeToMarketCapRatio(s *models.Snapshot) (float64, bool) {
	if s.MarketCap <= 0 {
		return 0, false
	}
	return s.CurrentVolume / s.MarketCap * 100, true
}

// AverageVolume normalizes the accumulated volume window into an
// equivalent 180-second rate. Unavailable when the window is absent or
// has no span.
func AverageVolume(s *models.Snapshot) (float64, bool) {
	tv := s.TotalVolume
	if tv == nil || tv.EndTime <= tv.StartTime {
		return 0, false
	}
	periods := float64(tv.EndTime-tv.StartTime) / 1000 / averagePeriodSeconds
	return tv.Value / periods, true
}

// VolumeRatioToAverage compares the current volume to the period
// average. Unavailable when the average is itself unavailable or zero.
func VolumeRatioToAverage(s *models.Snapshot) (float64, bool) {
	avg, ok := AverageVolume(s)
	if !ok || avg == 0 {
		return 0, false
	}
	return s.CurrentVolume / avg, true
}
