package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"VolPulse/internal/domain/models"
	"VolPulse/internal/engine"
	"VolPulse/internal/usecase"
	xlogger "VolPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

type stubStream struct {
	connected bool
}

func (s *stubStream) Connect(ctx context.Context) error { s.connected = true; return nil }
func (s *stubStream) Read(ctx context.Context) (<-chan []byte, <-chan error) {
	return make(chan []byte), make(chan error)
}
func (s *stubStream) Reconnect(ctx context.Context) error { return nil }
func (s *stubStream) Close() error                        { s.connected = false; return nil }
func (s *stubStream) IsConnected() bool                   { return s.connected }

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestHandler(t *testing.T) (*echo.Echo, *engine.Engine) {
	t.Helper()
	eng := engine.New(engine.DefaultConfig())
	stream := &stubStream{connected: true}
	collector := usecase.NewCollector(stream, eng, noopMetrics{}, false)

	h := NewScreenerHandler(xlogger.Nop(), eng, collector, nil)
	e := echo.New()
	h.RegisterRoutes(e)
	return e, eng
}

type noopMetrics struct{}

func (noopMetrics) RecordEventIngested(string)    {}
func (noopMetrics) RecordAlert(string)            {}
func (noopMetrics) RecordError(string)            {}
func (noopMetrics) RecordTrackedSymbols(int)      {}
func (noopMetrics) RecordLatency(string, float64) {}

func ingestSpike(t *testing.T, eng *engine.Engine, symbol string, volume, percent float64) {
	t.Helper()
	raw := fmt.Sprintf(
		`{"type":"volume_alert","symbol":"%s","currentVolume":%f,"changes":{"volume":{"percent":%f}}}`,
		symbol, volume, percent,
	)
	if err := eng.HandleMessage([]byte(raw)); err != nil {
		t.Fatalf("ingest: %v", err)
	}
}

func doRequest(e *echo.Echo, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}

func TestTableEndpoint(t *testing.T) {
	e, eng := newTestHandler(t)
	ingestSpike(t, eng, "BTCUSDT", 50000, 300)
	ingestSpike(t, eng, "ETHUSDT", 90000, 120)

	_, env := doRequest(e, http.MethodGet, "/api/table?sort=volume&dir=desc", "")
	if env.Status != http.StatusOK {
		t.Fatalf("status = %d", env.Status)
	}

	var rows []models.TableRow
	if err := json.Unmarshal(env.Data, &rows); err != nil {
		t.Fatalf("decode rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[0].Symbol != "ETHUSDT" {
		t.Fatalf("sort order wrong: %s first", rows[0].Symbol)
	}
	if rows[0].ChartURL != "https://www.binance.com/vi/trade/ETH_USDT?type=spot" {
		t.Fatalf("chart url = %q", rows[0].ChartURL)
	}
}

func TestTableRejectsBadSortKey(t *testing.T) {
	e, _ := newTestHandler(t)
	_, env := doRequest(e, http.MethodGet, "/api/table?sort=bogus", "")
	if env.Status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", env.Status)
	}
}

func TestAlertsEndpoint(t *testing.T) {
	e, eng := newTestHandler(t)
	ingestSpike(t, eng, "BTCUSDT", 50000, 300)

	_, env := doRequest(e, http.MethodGet, "/api/alerts", "")
	if env.Status != http.StatusOK {
		t.Fatalf("status = %d", env.Status)
	}
	var rows []models.AlertRow
	if err := json.Unmarshal(env.Data, &rows); err != nil {
		t.Fatalf("decode rows: %v", err)
	}
	if len(rows) != 1 || rows[0].Symbol != "BTCUSDT" {
		t.Fatalf("rows = %+v", rows)
	}
	if rows[0].AverageVolume != nil {
		t.Fatalf("averageVolume should be null without a window")
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	e, eng := newTestHandler(t)

	_, env := doRequest(e, http.MethodPut, "/api/settings", `{"minVolume": 20000}`)
	if env.Status != http.StatusOK {
		t.Fatalf("status = %d", env.Status)
	}
	if got := eng.Settings(); got.MinVolume != 20000 || got.AlertThresholdTimes != 2.5 {
		t.Fatalf("partial update wrong: %+v", got)
	}
}

func TestSettingsRejectsNoDirection(t *testing.T) {
	e, eng := newTestHandler(t)

	_, env := doRequest(e, http.MethodPut, "/api/settings", `{"showIncrease": false, "showDecrease": false}`)
	if env.Status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", env.Status)
	}
	if got := eng.Settings(); !got.ShowIncrease {
		t.Fatalf("settings must be unchanged after rejection")
	}
}

func TestClearAlertsEndpoint(t *testing.T) {
	e, eng := newTestHandler(t)
	ingestSpike(t, eng, "BTCUSDT", 50000, 300)

	rec, _ := doRequest(e, http.MethodPost, "/api/alerts/clear", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("code = %d", rec.Code)
	}
	if len(eng.Alerts()) != 0 {
		t.Fatalf("history should be empty")
	}
}

func TestChartLinkEndpoint(t *testing.T) {
	e, _ := newTestHandler(t)

	_, env := doRequest(e, http.MethodGet, "/api/chart-link?symbol=BTC/USDT", "")
	if env.Status != http.StatusOK {
		t.Fatalf("status = %d", env.Status)
	}
	var data map[string]string
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if data["url"] != "https://www.binance.com/vi/trade/BTC_USDT?type=spot" {
		t.Fatalf("url = %q", data["url"])
	}

	_, env = doRequest(e, http.MethodGet, "/api/chart-link", "")
	if env.Status != http.StatusBadRequest {
		t.Fatalf("missing symbol should be rejected, status = %d", env.Status)
	}
}

func TestStatusEndpoint(t *testing.T) {
	e, eng := newTestHandler(t)
	ingestSpike(t, eng, "BTCUSDT", 50000, 300)

	_, env := doRequest(e, http.MethodGet, "/api/status", "")
	if env.Status != http.StatusOK {
		t.Fatalf("status = %d", env.Status)
	}
	var st models.StatusResponse
	if err := json.Unmarshal(env.Data, &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !st.Feed {
		t.Fatalf("feed should report connected")
	}
	if st.Tracked != 1 || st.Alerts != 1 {
		t.Fatalf("status = %+v", st)
	}
}

func TestArchiveUnavailableWithoutSink(t *testing.T) {
	e, _ := newTestHandler(t)

	_, env := doRequest(e, http.MethodGet, "/api/alerts/archive?symbol=BTCUSDT", "")
	if env.Status != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", env.Status)
	}
}
