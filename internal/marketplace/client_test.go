package marketplace

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchFloorStats_ParsesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("missing bearer auth, got %q", auth)
		}
		fmt.Fprint(w, `{"collections":[{
			"name":"Cool Apes",
			"floorAsk":{"price":{"amount":{"decimal":42.5},"currency":{"symbol":"APE"}}},
			"ownerCount":1200,
			"volume30d":9000,
			"floorSale30d":40
		}]}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	stats, err := client.FetchFloorStats(context.Background(), "apechain", "0xdead")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if stats.Collection != "Cool Apes" || stats.FloorPrice != 42.5 {
		t.Fatalf("stats wrong: %+v", stats)
	}
	if stats.OwnerCount != 1200 || stats.Volume30d != 9000 || stats.FloorSale30d != 40 {
		t.Fatalf("stats wrong: %+v", stats)
	}
}

func TestFetchFloorStats_UnknownCollection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"collections":[]}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	if _, err := client.FetchFloorStats(context.Background(), "apechain", "0xdead"); err == nil {
		t.Fatal("expected error for unknown collection")
	}
}

func TestFetchFloorStats_MissingCurrencyDefaultsToAPE(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"collections":[{"name":"Bare","floorAsk":{"price":{"amount":{"decimal":1}}},"ownerCount":5,"volume30d":1,"floorSale30d":1}]}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	stats, err := client.FetchFloorStats(context.Background(), "apechain", "0xdead")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if stats.Currency != "APE" {
		t.Fatalf("expected APE default, got %q", stats.Currency)
	}
}

func TestAPEUSD_ParsesPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"apecoin":{"usd":1.27}}`)
	}))
	defer srv.Close()

	client := NewCoinGeckoClient()
	client.url = srv.URL

	price, err := client.APEUSD(context.Background())
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if price != 1.27 {
		t.Fatalf("expected 1.27, got %f", price)
	}
}

func TestAPEUSD_RejectsZeroPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"apecoin":{"usd":0}}`)
	}))
	defer srv.Close()

	client := NewCoinGeckoClient()
	client.url = srv.URL

	if _, err := client.APEUSD(context.Background()); err == nil {
		t.Fatal("expected error for zero price")
	}
}
