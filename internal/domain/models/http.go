package models

// TableRequest selects sorting for the live table projection.
// Filters come from the engine settings, not from the request.
type TableRequest struct {
	Sort string `query:"sort" validate:"omitempty,oneof=price priceChange volume volumeChange marketCap capRatio avgVolume volumeRatio"`
	Dir  string `query:"dir" default:"desc" validate:"oneof=asc desc"`
}

// AlertsRequest caps the number of history entries returned.
type AlertsRequest struct {
	Limit int `query:"limit" default:"100" validate:"gte=1,lte=100"`
}

// ArchiveRequest queries the alert archive backend (ClickHouse sink).
// From/To accept RFC3339 or unix seconds.
type ArchiveRequest struct {
	Symbol string `query:"symbol" validate:"required"`
	From   string `query:"from"`
	To     string `query:"to"`
	Limit  int    `query:"limit" default:"100" validate:"gte=1,lte=1000"`
}

// SettingsRequest retunes the engine live. Nil fields keep prior values.
type SettingsRequest struct {
	MinVolume           *float64 `json:"minVolume" validate:"omitempty,gte=0"`
	AlertThresholdTimes *float64 `json:"alertThresholdTimes" validate:"omitempty,gte=0"`
	ShowIncrease        *bool    `json:"showIncrease"`
	ShowDecrease        *bool    `json:"showDecrease"`
}

// ChartLinkRequest resolves a symbol to its venue trade-page URL.
type ChartLinkRequest struct {
	Symbol string `query:"symbol" validate:"required"`
}

// TableRow is one rendered line of the table projection.
type TableRow struct {
	Symbol             string  `json:"symbol"`
	BaseAsset          string  `json:"baseAsset"`
	FullName           string  `json:"fullName,omitempty"`
	LogoURL            string  `json:"logoUrl,omitempty"`
	Price              float64 `json:"price"`
	PriceChangePercent float64 `json:"priceChangePercent"`
	Volume             float64 `json:"volume"`
	VolumeDisplay      string  `json:"volumeDisplay"`
	VolumeChangeTimes  float64 `json:"volumeChangeTimes"`
	Timestamp          int64   `json:"timestamp"`
	ChartURL           string  `json:"chartUrl"`
}

// AlertRow is one rendered line of the alert-history projection.
// Pointer metrics are null when the denominator is unavailable.
type AlertRow struct {
	TableRow
	AlertTime       int64    `json:"alertTime"`
	MarketCap       float64  `json:"marketCap"`
	CapRatioPercent *float64 `json:"capRatioPercent"`
	AverageVolume   *float64 `json:"averageVolume"`
	VolumeRatio     *float64 `json:"volumeRatio"`
}

// StatusResponse reports feed and engine health for the UI header.
type StatusResponse struct {
	Feed       bool  `json:"feedConnected"`
	Tracked    int   `json:"trackedSymbols"`
	Visible    int   `json:"visibleSymbols"`
	Alerts     int   `json:"alertCount"`
	LastUpdate int64 `json:"lastUpdate"` // epoch ms, 0 when no data yet
}
