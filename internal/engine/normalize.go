package engine

import (
	"encoding/json"
	"errors"
	"time"

	"VolPulse/internal/domain/models"
)

// ErrInvalidEvent marks a frame that fails structural validation:
// not a JSON object, or no usable symbol. Expected noise from a
// best-effort feed; callers drop these silently.
var ErrInvalidEvent = errors.New("invalid feed event")

// rawSnapshot distinguishes absent/null fields from zero values so that
// repair happens field by field instead of replacing whole subtrees.
type rawSnapshot struct {
	Symbol        *string              `json:"symbol"`
	BaseAsset     *string              `json:"baseAsset"`
	FullName      *string              `json:"fullName"`
	LogoURL       *string              `json:"logoUrl"`
	CurrentPrice  *float64             `json:"currentPrice"`
	CurrentVolume *float64             `json:"currentVolume"`
	MarketCap     *float64             `json:"marketCap"`
	TotalVolume   *models.VolumeWindow `json:"totalVolume"`
	Changes       *rawChanges          `json:"changes"`
	Timestamp     *int64               `json:"timestamp"`
}

type rawChanges struct {
	Price  *rawPercent `json:"price"`
	Volume *rawPercent `json:"volume"`
}

type rawPercent struct {
	Percent *float64 `json:"percent"`
}

// Normalize sanitizes a raw decoded update into a well-formed snapshot.
// Missing numeric and nested fields default to zero; only a missing or
// empty symbol rejects the event. Pure function of its input and now.
func Normalize(raw []byte, now time.Time) (*models.Snapshot, error) {
	var rs rawSnapshot
	if err := json.Unmarshal(raw, &rs); err != nil {
		return nil, ErrInvalidEvent
	}
	if rs.Symbol == nil || *rs.Symbol == "" {
		return nil, ErrInvalidEvent
	}

	snap := &models.Snapshot{
		Symbol:      *rs.Symbol,
		TotalVolume: rs.TotalVolume,
		Timestamp:   now.UnixMilli(),
	}
	if rs.BaseAsset != nil {
		snap.BaseAsset = *rs.BaseAsset
	}
	if rs.FullName != nil {
		snap.FullName = *rs.FullName
	}
	if rs.LogoURL != nil {
		snap.LogoURL = *rs.LogoURL
	}
	if rs.CurrentPrice != nil {
		snap.CurrentPrice = *rs.CurrentPrice
	}
	if rs.CurrentVolume != nil {
		snap.CurrentVolume = *rs.CurrentVolume
	}
	if rs.MarketCap != nil {
		snap.MarketCap = *rs.MarketCap
	}
	if rs.Changes != nil {
		if rs.Changes.Price != nil && rs.Changes.Price.Percent != nil {
			snap.Changes.Price.Percent = *rs.Changes.Price.Percent
		}
		if rs.Changes.Volume != nil && rs.Changes.Volume.Percent != nil {
			snap.Changes.Volume.Percent = *rs.Changes.Volume.Percent
		}
	}
	if rs.Timestamp != nil && *rs.Timestamp > 0 {
		// Placeholder only: the store rewrites this at upsert time.
		snap.Timestamp = *rs.Timestamp
	}
	return snap, nil
}
