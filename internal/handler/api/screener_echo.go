package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"TrendBoard/internal/domain/models"
	svcmetrics "TrendBoard/internal/service/metrics"
	"TrendBoard/internal/service/ratelimit"
	"TrendBoard/internal/usecase"
	xhttp "TrendBoard/pkg/http"
	xlogger "TrendBoard/pkg/logger"

	"github.com/labstack/echo/v4"
)

const (
	emaDisplayPlaces = 8
	chartURLPrefix   = "https://www.binance.com/en/futures/"
)

// Screener is the use case behind the screening endpoints.
type Screener interface {
	Screen(ctx context.Context, q usecase.ScreenQuery) (*models.ScreenView, error)
	Latest(ctx context.Context, q usecase.ScreenQuery) (*models.ScreenView, error)
}

// ScreenerEchoHandler serves the HTML table and the JSON API.
type ScreenerEchoHandler struct {
	logger  *xlogger.Logger
	uc      Screener
	limiter *ratelimit.Limiter
	rlCfg   ratelimit.Config
}

func NewScreenerEchoHandler(logger *xlogger.Logger, uc Screener, limiter *ratelimit.Limiter, rlCfg ratelimit.Config) *ScreenerEchoHandler {
	svcmetrics.Register()
	if limiter == nil {
		limiter = ratelimit.New()
	}
	return &ScreenerEchoHandler{logger: logger, uc: uc, limiter: limiter, rlCfg: rlCfg}
}

func (h *ScreenerEchoHandler) RegisterRoutes(e *echo.Echo) {
	limited := ratelimit.Middleware(h.limiter, h.rlCfg)

	e.GET("/", h.Page, limited)
	e.POST("/", h.Page, limited)
	e.GET("/healthz", h.Health)

	g := e.Group("/api")
	g.GET("/snapshots", h.Snapshots, limited)
	g.GET("/snapshots/latest", h.LatestSnapshots)
}

// Page renders the colour-coded table. Filter values come from the query
// string or the posted form.
func (h *ScreenerEchoHandler) Page(c echo.Context) error {
	const endpoint = "page"
	defer observe(endpoint, time.Now())

	req := &models.ScreenRequest{}
	data := pageData{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		svcmetrics.ScreenErrors.WithLabelValues(endpoint).Inc()
		data.Error = verr[0].Message
		return h.renderPage(c, http.StatusBadRequest, data)
	}
	data.MinPrice, data.MaxPrice, data.Trend, data.Sort = req.MinPrice, req.MaxPrice, strings.ToUpper(req.Trend), req.Sort

	view, err := h.uc.Screen(c.Request().Context(), usecase.ParseScreenRequest(*req))
	if err != nil {
		svcmetrics.ScreenErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("screen page error", xlogger.Error(err))
		appErr := toAppError(err)
		data.Error = appErr.Message
		return h.renderPage(c, appErr.Status, data)
	}

	svcmetrics.RowsServed.WithLabelValues(endpoint).Observe(float64(view.Total))
	data.View = toViewData(view)
	return h.renderPage(c, http.StatusOK, data)
}

// Snapshots runs a fresh screen and returns it as JSON.
func (h *ScreenerEchoHandler) Snapshots(c echo.Context) error {
	const endpoint = "snapshots"
	defer observe(endpoint, time.Now())

	req := &models.ScreenRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		svcmetrics.ScreenErrors.WithLabelValues(endpoint).Inc()
		return xhttp.BadRequestResponse(c, verr)
	}

	view, err := h.uc.Screen(c.Request().Context(), usecase.ParseScreenRequest(*req))
	if err != nil {
		svcmetrics.ScreenErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("screen usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	svcmetrics.RowsServed.WithLabelValues(endpoint).Observe(float64(view.Total))
	return xhttp.SuccessResponse(c, view)
}

// LatestSnapshots returns the last persisted run without calling the exchange.
func (h *ScreenerEchoHandler) LatestSnapshots(c echo.Context) error {
	const endpoint = "latest"
	defer observe(endpoint, time.Now())

	req := &models.ScreenRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	view, err := h.uc.Latest(c.Request().Context(), usecase.ParseScreenRequest(*req))
	if err != nil {
		if !errors.Is(err, usecase.ErrNoLatest) {
			svcmetrics.ScreenErrors.WithLabelValues(endpoint).Inc()
			h.logger.Error("latest usecase error", xlogger.Error(err))
		}
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.SuccessResponse(c, view)
}

func (h *ScreenerEchoHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *ScreenerEchoHandler) renderPage(c echo.Context, status int, data pageData) error {
	var buf bytes.Buffer
	if err := screenerPage.Execute(&buf, data); err != nil {
		h.logger.Error("render page", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	return c.HTMLBlob(status, buf.Bytes())
}

func toAppError(err error) *xhttp.AppError {
	var appErr *xhttp.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, usecase.ErrNoLatest):
		return xhttp.NotFoundError("no persisted run available").WithError(err)
	// The gateway wraps context errors, so deadlines are checked first.
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return xhttp.NewAppError("ERR_TIMEOUT", "", "request cancelled", http.StatusGatewayTimeout).WithError(err)
	case errors.Is(err, models.ErrGateway):
		return xhttp.BadGatewayError("exchange unavailable").WithError(err)
	default:
		return xhttp.InternalError("screening failed").WithError(err)
	}
}

func toViewData(v *models.ScreenView) *viewData {
	out := &viewData{
		RunID:       v.RunID,
		GeneratedAt: v.GeneratedAt,
		Interval:    v.Interval,
		Requested:   v.Requested,
		Failed:      v.Failed,
		Total:       v.Total,
		Rows:        make([]rowData, 0, len(v.Rows)),
	}
	for _, s := range v.Rows {
		out.Rows = append(out.Rows, rowData{
			Symbol:     s.Instrument.String(),
			ChartURL:   chartURLPrefix + url.PathEscape(s.Instrument.String()),
			Price:      s.LastPrice.String(),
			EmaFast:    s.EmaFast.Round(emaDisplayPlaces).String(),
			EmaSlow:    s.EmaSlow.Round(emaDisplayPlaces).String(),
			EmaSlowest: s.EmaSlowest.Round(emaDisplayPlaces).String(),
			Trend:      string(s.Trend),
			Condition:  s.Trend.Condition(),
		})
	}
	return out
}

func observe(endpoint string, start time.Time) {
	svcmetrics.ScreenLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}
