package models

// Snapshot is the latest known market state for one tradable symbol.
// Field names mirror the feed wire format; Timestamp is always rewritten
// to the processing clock at ingestion and never trusted from the feed.
type Snapshot struct {
	Symbol        string        `json:"symbol"`
	BaseAsset     string        `json:"baseAsset"`
	FullName      string        `json:"fullName,omitempty"`
	LogoURL       string        `json:"logoUrl,omitempty"`
	CurrentPrice  float64       `json:"currentPrice"`
	CurrentVolume float64       `json:"currentVolume"`
	MarketCap     float64       `json:"marketCap"`
	TotalVolume   *VolumeWindow `json:"totalVolume,omitempty"`
	Changes       Changes       `json:"changes"`
	Timestamp     int64         `json:"timestamp"` // epoch ms
}

// VolumeWindow describes an accumulation window used to derive an
// average volume. Start/End are epoch ms.
type VolumeWindow struct {
	Value     float64 `json:"value"`
	StartTime int64   `json:"startTime"`
	EndTime   int64   `json:"endTime"`
}

// Changes holds relative movement since the previous feed period.
// Volume percent uses the multiplier encoding: 100 means unchanged,
// 300 means 3x. Divide by 100 to get the multiplicative factor.
type Changes struct {
	Price  ChangePercent `json:"price"`
	Volume ChangePercent `json:"volume"`
}

type ChangePercent struct {
	Percent float64 `json:"percent"`
}

// AlertEvent is a Snapshot recorded as a qualifying volume spike.
// Immutable once created.
type AlertEvent struct {
	Snapshot
	AlertTime int64 `json:"alertTime"` // epoch ms
}

// CoinMeta is display metadata for a symbol, fetched from an exchange
// info endpoint and cached. Used to backfill FullName/LogoURL when the
// feed omits them.
type CoinMeta struct {
	Symbol   string `json:"symbol"`
	FullName string `json:"fullName"`
	LogoURL  string `json:"logoUrl"`
}
