package engine

import (
	"sort"

	"VolPulse/internal/domain/models"
)

// SortKey names a sortable column of the table projection. The empty
// key sorts by timestamp, most recently updated first.
type SortKey string

const (
	SortByPrice        SortKey = "price"
	SortByPriceChange  SortKey = "priceChange"
	SortByVolume       SortKey = "volume"
	SortByVolumeChange SortKey = "volumeChange"
	SortByMarketCap    SortKey = "marketCap"
	SortByCapRatio     SortKey = "capRatio"
	SortByAvgVolume    SortKey = "avgVolume"
	SortByVolumeRatio  SortKey = "volumeRatio"
)

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Filters are the display gates applied to a projection. Direction
// flags only reject strict movers: a flat price change passes both.
type Filters struct {
	MinVolume    float64
	ShowIncrease bool
	ShowDecrease bool
}

func (f Filters) Match(s *models.Snapshot) bool {
	if s.CurrentVolume < f.MinVolume {
		return false
	}
	pc := PriceChangePercent(s)
	if pc > 0 && !f.ShowIncrease {
		return false
	}
	if pc < 0 && !f.ShowDecrease {
		return false
	}
	return true
}

// Project filters and sorts snapshots for presentation. Side-effect
// free and safe to call on every read; ties keep the stable order of
// the input enumeration.
func Project(snaps []*models.Snapshot, key SortKey, dir SortDirection, f Filters) []*models.Snapshot {
	out := make([]*models.Snapshot, 0, len(snaps))
	for _, s := range snaps {
		if f.Match(s) {
			out = append(out, s)
		}
	}

	if key == "" {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Timestamp > out[j].Timestamp
		})
		return out
	}

	asc := dir == SortAsc
	sort.SliceStable(out, func(i, j int) bool {
		a, b := sortValue(out[i], key), sortValue(out[j], key)
		if asc {
			return a < b
		}
		return a > b
	})
	return out
}

func sortValue(s *models.Snapshot, key SortKey) float64 {
	switch key {
	case SortByPrice:
		return s.CurrentPrice
	case SortByPriceChange:
		return PriceChangePercent(s)
	case SortByVolume:
		return s.CurrentVolume
	case SortByVolumeChange:
		return VolumeChangePercent(s)
	case SortByMarketCap:
		return s.MarketCap
	case SortByCapRatio:
		v, _ := VolumeToMarketCapRatio(s)
		return v
	case SortByAvgVolume:
		v, _ := AverageVolume(s)
		return v
	case SortByVolumeRatio:
		v, _ := VolumeRatioToAverage(s)
		return v
	default:
		return float64(s.Timestamp)
	}
}
