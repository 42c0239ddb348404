package binance

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"TrendBoard/internal/domain/models"
	drepo "TrendBoard/internal/domain/repository"
	xhttp "TrendBoard/pkg/http"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

const (
	DefaultBaseURL = "https://fapi.binance.com"

	exchangeInfoPath = "/fapi/v1/exchangeInfo"
	klinesPath       = "/fapi/v1/klines"

	// MaxKlineLimit is the largest page the klines endpoint serves.
	MaxKlineLimit = 1500
)

// Config holds the USDⓈ-M futures REST settings.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxConns   int
	QuoteAsset string // empty keeps every quote asset
}

// Client implements the exchange Gateway over the Binance futures REST API.
// One Client is shared by every aggregator worker.
type Client struct {
	http       *xhttp.Client
	baseURL    string
	quoteAsset string
}

// New creates a new Binance gateway.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	opts := []xhttp.ClientOption{
		xhttp.WithTimeout(cfg.Timeout),
		xhttp.WithMaxIdleConnsPerHost(cfg.MaxConns),
	}
	if cfg.APIKey != "" {
		opts = append(opts, xhttp.WithHeader("X-MBX-APIKEY", cfg.APIKey))
	}
	return &Client{
		http:       xhttp.NewClient(opts...),
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		quoteAsset: strings.ToUpper(cfg.QuoteAsset),
	}
}

// ListActiveInstruments returns the symbols whose status is TRADING.
func (c *Client) ListActiveInstruments(ctx context.Context) ([]models.InstrumentID, error) {
	body, err := c.get(ctx, "exchangeInfo", "", exchangeInfoPath, nil)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, &models.GatewayError{Op: "exchangeInfo", Err: errors.New("malformed payload")}
	}

	symbols := gjson.GetBytes(body, "symbols")
	if !symbols.IsArray() {
		return nil, &models.GatewayError{Op: "exchangeInfo", Err: errors.New("missing symbols")}
	}

	out := make([]models.InstrumentID, 0, len(symbols.Array()))
	symbols.ForEach(func(_, s gjson.Result) bool {
		if s.Get("status").String() != "TRADING" {
			return true
		}
		if c.quoteAsset != "" && s.Get("quoteAsset").String() != c.quoteAsset {
			return true
		}
		if name := s.Get("symbol").String(); name != "" {
			out = append(out, models.InstrumentID(name))
		}
		return true
	})
	return out, nil
}

// FetchCandles returns up to limit klines, oldest first.
func (c *Client) FetchCandles(ctx context.Context, instrument models.InstrumentID, interval drepo.Interval, limit int) (models.CandleSeries, error) {
	if limit <= 0 || limit > MaxKlineLimit {
		limit = MaxKlineLimit
	}
	params := map[string][]string{
		"symbol":   {string(instrument)},
		"interval": {string(interval)},
		"limit":    {strconv.Itoa(limit)},
	}
	body, err := c.get(ctx, "klines", instrument, klinesPath, params)
	if err != nil {
		return nil, err
	}
	series, err := ParseKlines(body)
	if err != nil {
		return nil, &models.GatewayError{Op: "klines", Instrument: instrument, Err: err}
	}
	return series, nil
}

// ParseKlines decodes the klines array format:
// [[openTime, "open", "high", "low", "close", "volume", closeTime, ...], ...]
func ParseKlines(body []byte) (models.CandleSeries, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New("malformed payload")
	}
	root := gjson.ParseBytes(body)
	if !root.IsArray() {
		return nil, errors.New("klines payload is not an array")
	}

	rows := root.Array()
	out := make(models.CandleSeries, 0, len(rows))
	for i, row := range rows {
		f := row.Array()
		if len(f) < 6 {
			return nil, fmt.Errorf("kline %d: expected at least 6 fields, got %d", i, len(f))
		}
		var (
			candle = models.Candle{OpenTime: time.UnixMilli(f[0].Int()).UTC()}
			dst    = []*decimal.Decimal{&candle.Open, &candle.High, &candle.Low, &candle.Close, &candle.Volume}
		)
		for j, d := range dst {
			v, err := decimal.NewFromString(f[j+1].String())
			if err != nil {
				return nil, fmt.Errorf("kline %d field %d: %w", i, j+1, err)
			}
			*d = v
		}
		out = append(out, candle)
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, op string, instrument models.InstrumentID, path string, params map[string][]string) ([]byte, error) {
	var body []byte
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + path,
		QueryParams: params,
	}, &body)
	if err == nil {
		return body, nil
	}

	gwErr := &models.GatewayError{Op: op, Instrument: instrument, Err: err}
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		gwErr.Status = se.Code
		gwErr.Err = nil
		if gjson.ValidBytes(se.Body) {
			gwErr.Code = int(gjson.GetBytes(se.Body, "code").Int())
			gwErr.Msg = gjson.GetBytes(se.Body, "msg").String()
		}
		if gwErr.Msg == "" {
			gwErr.Err = se
		}
	}
	return nil, gwErr
}

var _ drepo.Gateway = (*Client)(nil)
