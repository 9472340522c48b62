package explorer

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchActivity_AllEndpoints(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		action := r.URL.Query().Get("action")
		if r.URL.Query().Get("module") != "account" {
			t.Errorf("missing module=account in query: %s", r.URL.RawQuery)
		}
		switch action {
		case "txlist":
			fmt.Fprint(w, `{"status":"1","message":"OK","result":[{"hash":"0xaaa","timeStamp":"1700000000","from":"0x1","to":"0x2","value":"5"}]}`)
		case "txlistinternal":
			fmt.Fprint(w, `{"status":"0","message":"No transactions found","result":[]}`)
		case "tokentx":
			fmt.Fprint(w, `{"status":"1","message":"OK","result":[{"hash":"0xbbb","timeStamp":"1700000001","from":"0x2","to":"0x1","value":"9","tokenSymbol":"WAPE"}]}`)
		case "tokennfttx":
			fmt.Fprint(w, `{"status":"1","message":"OK","result":[{"hash":"0xccc","timeStamp":"1700000002","from":"0x2","to":"0x1","tokenName":"CoolApe","tokenID":"7"}]}`)
		default:
			t.Errorf("unexpected action %q", action)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", 0)
	activity, err := client.FetchActivity(context.Background(), "0x1")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}

	if len(activity.Normal) != 1 || activity.Normal[0].Hash != "0xaaa" {
		t.Fatalf("normal list wrong: %+v", activity.Normal)
	}
	if len(activity.Internal) != 0 {
		t.Fatalf("expected empty internal list, got %+v", activity.Internal)
	}
	if len(activity.Token) != 1 || activity.Token[0].TokenSymbol != "WAPE" {
		t.Fatalf("token list wrong: %+v", activity.Token)
	}
	if len(activity.NFT) != 1 || activity.NFT[0].TokenID != "7" {
		t.Fatalf("nft list wrong: %+v", activity.NFT)
	}
}

func TestFetchActivity_FailedListDegradesToEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("action") == "tokentx" {
			// Non-retryable client error: the list fails immediately.
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		fmt.Fprint(w, `{"status":"1","message":"OK","result":[{"hash":"0xaaa","timeStamp":"1700000000","from":"0x1","to":"0x2","value":"5"}]}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", 0)
	activity, err := client.FetchActivity(context.Background(), "0x1")
	if err != nil {
		t.Fatalf("partial failure must not fail the run: %v", err)
	}
	if len(activity.Token) != 0 {
		t.Fatalf("failed list must be empty, got %+v", activity.Token)
	}
	if len(activity.Normal) != 1 {
		t.Fatalf("healthy lists must survive, got %+v", activity.Normal)
	}
}

func TestFetchActivity_APIErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"0","message":"Invalid API Key","result":[]}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "bad-key", 0)
	activity, err := client.FetchActivity(context.Background(), "0x1")
	if err != nil {
		t.Fatalf("per-list errors must degrade, not propagate: %v", err)
	}
	if len(activity.Normal) != 0 || len(activity.NFT) != 0 {
		t.Fatalf("expected all lists empty, got %+v", activity)
	}
}

func TestFetchActivity_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(srv.URL, "", 0)
	if _, err := client.FetchActivity(ctx, "0x1"); err == nil {
		t.Fatal("expected error with cancelled context")
	}
}
