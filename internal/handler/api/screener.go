package api

import (
	"errors"
	"time"

	"VolPulse/internal/domain/models"
	drepo "VolPulse/internal/domain/repository"
	"VolPulse/internal/engine"
	"VolPulse/internal/usecase"
	xhttp "VolPulse/pkg/http"
	xlogger "VolPulse/pkg/logger"
	"VolPulse/pkg/util"

	"github.com/labstack/echo/v4"
)

// ScreenerHandler exposes the live table, alert history and settings
// over Echo.
type ScreenerHandler struct {
	logger    *xlogger.Logger
	eng       *engine.Engine
	collector *usecase.Collector
	archive   drepo.AlertArchive // nil unless sink is clickhouse
}

func NewScreenerHandler(logger *xlogger.Logger, eng *engine.Engine, collector *usecase.Collector, archive drepo.AlertArchive) *ScreenerHandler {
	return &ScreenerHandler{logger: logger, eng: eng, collector: collector, archive: archive}
}

func (h *ScreenerHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/table", h.Table)
	g.POST("/table/clear", h.ClearTable)
	g.GET("/alerts", h.Alerts)
	g.POST("/alerts/clear", h.ClearAlerts)
	g.POST("/alerts/prune", h.PruneAlerts)
	g.GET("/alerts/archive", h.Archive)
	g.GET("/settings", h.GetSettings)
	g.PUT("/settings", h.UpdateSettings)
	g.GET("/chart-link", h.ChartLink)
	g.GET("/status", h.Status)
}

// Table returns the filtered, sorted live view.
func (h *ScreenerHandler) Table(c echo.Context) error {
	req := &models.TableRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	snaps := h.eng.Table(engine.SortKey(req.Sort), engine.SortDirection(req.Dir))
	rows := make([]models.TableRow, 0, len(snaps))
	for _, s := range snaps {
		rows = append(rows, tableRow(s))
	}
	return xhttp.SuccessResponse(c, rows)
}

// Alerts returns recent alert history, newest first.
func (h *ScreenerHandler) Alerts(c echo.Context) error {
	req := &models.AlertsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	events := h.eng.Alerts()
	if len(events) > req.Limit {
		events = events[:req.Limit]
	}
	rows := make([]models.AlertRow, 0, len(events))
	for _, ev := range events {
		rows = append(rows, alertRow(ev))
	}
	return xhttp.SuccessResponse(c, rows)
}

// Archive queries the persistent alert archive for a symbol and range.
func (h *ScreenerHandler) Archive(c echo.Context) error {
	if h.archive == nil {
		return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailableError("archive sink not configured"))
	}

	req := &models.ArchiveRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	now := time.Now()
	from := util.ParseTimeDefault(req.From, now.Add(-24*time.Hour))
	to := util.ParseTimeDefault(req.To, now)

	events, err := h.archive.Query(c.Request().Context(), req.Symbol, from, to, req.Limit)
	if err != nil {
		h.logger.Error("archive query error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	rows := make([]models.AlertRow, 0, len(events))
	for _, ev := range events {
		rows = append(rows, alertRow(ev))
	}
	return xhttp.SuccessResponse(c, rows)
}

// GetSettings returns the live engine settings.
func (h *ScreenerHandler) GetSettings(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.eng.Settings())
}

// UpdateSettings retunes the engine. Omitted fields keep prior values.
func (h *ScreenerHandler) UpdateSettings(c echo.Context) error {
	req := &models.SettingsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	s := h.eng.Settings()
	if req.MinVolume != nil {
		s.MinVolume = *req.MinVolume
	}
	if req.AlertThresholdTimes != nil {
		s.AlertThresholdTimes = *req.AlertThresholdTimes
	}
	if req.ShowIncrease != nil {
		s.ShowIncrease = *req.ShowIncrease
	}
	if req.ShowDecrease != nil {
		s.ShowDecrease = *req.ShowDecrease
	}

	if err := h.eng.UpdateSettings(s); err != nil {
		if errors.Is(err, engine.ErrNoDirection) {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestError("at least one direction filter must be enabled").WithError(err))
		}
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, h.eng.Settings())
}

// ClearTable drops all tracked snapshots.
func (h *ScreenerHandler) ClearTable(c echo.Context) error {
	h.eng.ClearSnapshots()
	return xhttp.NoContentResponse(c)
}

// ClearAlerts drops alert history and resets per-symbol cooldowns.
func (h *ScreenerHandler) ClearAlerts(c echo.Context) error {
	h.eng.ClearHistory()
	return xhttp.NoContentResponse(c)
}

// PruneAlerts drops history entries below the current threshold.
func (h *ScreenerHandler) PruneAlerts(c echo.Context) error {
	h.eng.PruneHistoryBelowThreshold()
	return xhttp.NoContentResponse(c)
}

// ChartLink resolves a symbol to its venue trade-page URL.
func (h *ScreenerHandler) ChartLink(c echo.Context) error {
	req := &models.ChartLinkRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, map[string]string{
		"symbol": req.Symbol,
		"url":    util.TradePageURL(req.Symbol),
	})
}

// Status reports feed and engine health.
func (h *ScreenerHandler) Status(c echo.Context) error {
	tracked, visible, alerts, lastUpdate := h.eng.Stats()
	return xhttp.SuccessResponse(c, models.StatusResponse{
		Feed:       h.collector.IsConnected(),
		Tracked:    tracked,
		Visible:    visible,
		Alerts:     alerts,
		LastUpdate: lastUpdate,
	})
}

func tableRow(s *models.Snapshot) models.TableRow {
	return models.TableRow{
		Symbol:             s.Symbol,
		BaseAsset:          s.BaseAsset,
		FullName:           s.FullName,
		LogoURL:            s.LogoURL,
		Price:              s.CurrentPrice,
		PriceChangePercent: engine.PriceChangePercent(s),
		Volume:             s.CurrentVolume,
		VolumeDisplay:      util.FormatVolume(s.CurrentVolume),
		VolumeChangeTimes:  engine.VolumeChangeTimes(s),
		Timestamp:          s.Timestamp,
		ChartURL:           util.TradePageURL(s.Symbol),
	}
}

func alertRow(ev *models.AlertEvent) models.AlertRow {
	row := models.AlertRow{
		TableRow:  tableRow(&ev.Snapshot),
		AlertTime: ev.AlertTime,
		MarketCap: ev.MarketCap,
	}
	if v, ok := engine.VolumeToMarketCapRatio(&ev.Snapshot); ok {
		row.CapRatioPercent = &v
	}
	if v, ok := engine.AverageVolume(&ev.Snapshot); ok {
		row.AverageVolume = &v
	}
	if v, ok := engine.VolumeRatioToAverage(&ev.Snapshot); ok {
		row.VolumeRatio = &v
	}
	return row
}
