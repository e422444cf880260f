package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"CryptoFlow/internal/model"
)

func TestBinanceFetcher_ActiveSymbols(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/fapi/v1/exchangeInfo", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"symbols":[
			{"symbol":"ETHUSDT","status":"TRADING","contractType":"PERPETUAL","quoteAsset":"USDT","marginAsset":"USDT"},
			{"symbol":"BTCUSDT","status":"TRADING","contractType":"PERPETUAL","quoteAsset":"USDT","marginAsset":"USDT"},
			{"symbol":"BTCUSDT_251226","status":"TRADING","contractType":"CURRENT_QUARTER","quoteAsset":"USDT","marginAsset":"USDT"},
			{"symbol":"OLDUSDT","status":"SETTLING","contractType":"PERPETUAL","quoteAsset":"USDT","marginAsset":"USDT"},
			{"symbol":"BTCUSDC","status":"TRADING","contractType":"PERPETUAL","quoteAsset":"USDC","marginAsset":"USDC"}
		]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := NewBinanceFetcher(srv.URL, "", time.Second)
	got, err := f.ActiveSymbols(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != "BTCUSDT" || got[1] != "ETHUSDT" {
		t.Errorf("unexpected symbols: %v", got)
	}
}

func TestBinanceFetcher_FetchCandles(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/fapi/v1/klines", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("symbol") != "BTCUSDT" || q.Get("interval") != "1d" || q.Get("limit") != "3" {
			http.Error(w, "bad query "+r.URL.RawQuery, http.StatusBadRequest)
			return
		}
		// Deliberately out of order plus one malformed row.
		_, _ = w.Write([]byte(`[
			[1700086400000,"101.5","110","100","108","1234.5",1700172799999,"0",1,"0","0","0"],
			[1700000000000,"100","105","95","101.5","999",1700086399999,"0",1,"0","0","0"],
			[1700172800000,"oops"]
		]`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := NewBinanceFetcher(srv.URL, "", time.Second)
	bars, err := f.FetchCandles(context.Background(), "BTCUSDT", model.TF1d, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
	if !bars[0].Time.Before(bars[1].Time) {
		t.Error("bars not sorted ascending")
	}
	if bars[1].Close != 108 || bars[1].Volume != 1234.5 {
		t.Errorf("unexpected last bar: %+v", bars[1])
	}
	if bars[0].Time.UnixMilli() != 1700000000000 {
		t.Errorf("unexpected open time: %v", bars[0].Time)
	}
}

func TestBinanceFetcher_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":-1121,"msg":"Invalid symbol."}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	f := NewBinanceFetcher(srv.URL, "", time.Second)
	if _, err := f.FetchCandles(context.Background(), "NOPE", model.TF1d, 10); err == nil {
		t.Error("expected error on 400")
	}
	if _, err := f.FetchCandles(context.Background(), "BTCUSDT", model.Timeframe("2w"), 10); err == nil {
		t.Error("expected error for unsupported timeframe")
	}
	if _, err := f.ActiveSymbols(context.Background()); err == nil {
		t.Error("expected error on 400")
	}
}
