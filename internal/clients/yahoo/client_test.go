package yahoo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetSnapshot_MapsQuoteFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v7/finance/quote" {
			t.Errorf("path = %s, want /v7/finance/quote", r.URL.Path)
		}
		if got := r.URL.Query().Get("symbols"); got != "AAPL" {
			t.Errorf("symbols = %s, want AAPL", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"quoteResponse": {
				"result": [{
					"symbol": "AAPL",
					"regularMarketPrice": 225.50,
					"postMarketPrice": 226.10,
					"regularMarketPreviousClose": 223.10,
					"regularMarketVolume": 54000000,
					"totalRevenue": 391000000000,
					"netIncomeToCommon": 93700000000
				}],
				"error": null
			}
		}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	snapshot, err := client.GetSnapshot(context.Background(), "aapl")
	if err != nil {
		t.Fatalf("GetSnapshot returned error: %v", err)
	}

	if snapshot.Ticker != "AAPL" {
		t.Errorf("ticker = %s, want AAPL (normalized)", snapshot.Ticker)
	}
	if snapshot.CurrentPrice == nil || *snapshot.CurrentPrice != 225.50 {
		t.Errorf("CurrentPrice = %v, want 225.50", snapshot.CurrentPrice)
	}
	if snapshot.AfterHoursPrice == nil || *snapshot.AfterHoursPrice != 226.10 {
		t.Errorf("AfterHoursPrice = %v, want 226.10", snapshot.AfterHoursPrice)
	}
	if snapshot.PreviousClose == nil || *snapshot.PreviousClose != 223.10 {
		t.Errorf("PreviousClose = %v, want 223.10", snapshot.PreviousClose)
	}
	if snapshot.Volume == nil || *snapshot.Volume != 54000000 {
		t.Errorf("Volume = %v, want 54000000", snapshot.Volume)
	}
	if snapshot.RevenueTTM == nil || *snapshot.RevenueTTM != 391000000000 {
		t.Errorf("RevenueTTM = %v", snapshot.RevenueTTM)
	}
}

func TestGetSnapshot_MissingFieldsStayNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"quoteResponse": {
				"result": [{"symbol": "AAPL", "regularMarketPreviousClose": 223.10}],
				"error": null
			}
		}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	snapshot, err := client.GetSnapshot(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("GetSnapshot returned error: %v", err)
	}

	if snapshot.CurrentPrice != nil {
		t.Error("CurrentPrice should be nil when the source omits it")
	}
	price, ok := snapshot.DisplayPrice()
	if !ok || price != 223.10 {
		t.Errorf("DisplayPrice() = (%v, %v), want previous close fallback", price, ok)
	}
}

func TestGetSnapshot_EmptyResultYieldsBareSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"quoteResponse": {"result": [], "error": null}}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	snapshot, err := client.GetSnapshot(context.Background(), "ZZZZINVALID")
	if err != nil {
		t.Fatalf("unknown symbol must not fail the quote lookup: %v", err)
	}

	if snapshot.Ticker != "ZZZZINVALID" {
		t.Errorf("ticker = %s", snapshot.Ticker)
	}
	if _, ok := snapshot.DisplayPrice(); ok {
		t.Error("bare snapshot should carry no price")
	}
}

func TestGetSnapshot_EnvelopeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"quoteResponse": {
				"result": null,
				"error": {"code": "Bad Request", "description": "Invalid symbols"}
			}
		}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.GetSnapshot(context.Background(), "AAPL")
	if err == nil {
		t.Fatal("expected error for envelope error payload")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.Message != "Invalid symbols" {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestGetSnapshot_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.GetSnapshot(context.Background(), "AAPL")
	if err == nil {
		t.Fatal("expected error for 429 response")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", apiErr.StatusCode)
	}
}
