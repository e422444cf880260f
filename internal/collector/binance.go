package collector

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"

	"CryptoFlow/internal/model"
)

// DefaultBinanceURL is the USD-M futures REST root.
const DefaultBinanceURL = "https://fapi.binance.com"

// numberAPI keeps integer timestamps exact and lets prices arrive as strings.
var numberAPI = sonic.Config{UseNumber: true}.Froze()

// BinanceFetcher implements Fetcher using the Binance USD-M futures public API.
type BinanceFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewBinanceFetcher creates a fetcher with optional proxy support.
func NewBinanceFetcher(baseURL, proxyURL string, timeout time.Duration) *BinanceFetcher {
	if baseURL == "" {
		baseURL = DefaultBinanceURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &BinanceFetcher{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (f *BinanceFetcher) Name() string { return "binance-futures" }

type exchangeInfo struct {
	Symbols []struct {
		Symbol       string `json:"symbol"`
		Status       string `json:"status"`
		ContractType string `json:"contractType"`
		QuoteAsset   string `json:"quoteAsset"`
		MarginAsset  string `json:"marginAsset"`
	} `json:"symbols"`
}

// ActiveSymbols returns TRADING perpetual contracts quoted and margined in USDT.
func (f *BinanceFetcher) ActiveSymbols(ctx context.Context) ([]string, error) {
	var info exchangeInfo
	if err := f.getJSON(ctx, "/fapi/v1/exchangeInfo", nil, &info); err != nil {
		return nil, errors.Wrap(err, "fetch exchange info")
	}
	symbols := make([]string, 0, len(info.Symbols))
	for _, s := range info.Symbols {
		if s.Status != "TRADING" || s.ContractType != "PERPETUAL" || s.QuoteAsset != "USDT" {
			continue
		}
		if s.MarginAsset != "" && s.MarginAsset != "USDT" {
			continue
		}
		symbols = append(symbols, s.Symbol)
	}
	sort.Strings(symbols)
	return symbols, nil
}

// FetchCandles loads klines. Each row is
// [openTime, "open", "high", "low", "close", "volume", closeTime, ...].
func (f *BinanceFetcher) FetchCandles(ctx context.Context, symbol string, tf model.Timeframe, limit int) ([]model.OHLCV, error) {
	if symbol == "" {
		return nil, errors.New("symbol required")
	}
	if _, ok := model.ParseTimeframe(string(tf)); !ok {
		return nil, errors.Errorf("unsupported timeframe %q", tf)
	}
	if limit <= 0 {
		limit = 100
	}
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("interval", string(tf))
	params.Set("limit", strconv.Itoa(limit))

	var raw [][]interface{}
	if err := f.getJSON(ctx, "/fapi/v1/klines", params, &raw); err != nil {
		return nil, errors.Wrapf(err, "fetch klines %s %s", symbol, tf)
	}

	bars := make([]model.OHLCV, 0, len(raw))
	for _, row := range raw {
		bar, err := parseKline(row)
		if err != nil {
			continue // skip malformed rows
		}
		bars = append(bars, bar)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

func (f *BinanceFetcher) getJSON(ctx context.Context, path string, params url.Values, target interface{}) error {
	endpoint := f.BaseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return errors.Wrap(err, "http get")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read body")
	}
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("status %d, body: %s", resp.StatusCode, string(body))
	}
	if err := numberAPI.Unmarshal(body, target); err != nil {
		return errors.Wrap(err, "decode")
	}
	return nil
}

func parseKline(row []interface{}) (model.OHLCV, error) {
	if len(row) < 6 {
		return model.OHLCV{}, errors.Errorf("short kline row: %d fields", len(row))
	}
	var vals [6]float64
	for i := 0; i < 6; i++ {
		v, err := anyToFloat(row[i])
		if err != nil {
			return model.OHLCV{}, err
		}
		vals[i] = v
	}
	return model.OHLCV{
		Time:   time.UnixMilli(int64(vals[0])).UTC(),
		Open:   vals[1],
		High:   vals[2],
		Low:    vals[3],
		Close:  vals[4],
		Volume: vals[5],
	}, nil
}

func anyToFloat(x interface{}) (float64, error) {
	switch t := x.(type) {
	case string:
		return strconv.ParseFloat(t, 64)
	case json.Number:
		return t.Float64()
	case float64:
		return t, nil
	default:
		return 0, errors.Errorf("unexpected number type %T", x)
	}
}
