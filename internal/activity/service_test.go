package activity

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/kjannette/apetrack-backend/internal/explorer"
)

type stubProber struct {
	balance decimal.Decimal
	err     error
}

func (p *stubProber) NativeBalance(_ context.Context, _ common.Address) (decimal.Decimal, error) {
	return p.balance, p.err
}

func newExplorerStub(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Query().Get("action") == "txlist" {
			fmt.Fprint(w, `{"status":"1","message":"OK","result":[{"hash":"0xaaa","timeStamp":"1700000000","from":"0x2222222222222222222222222222222222222222","to":"0x1111111111111111111111111111111111111111","value":"3000000000000000000","gasUsed":"21000","gasPrice":"1"}]}`)
			return
		}
		fmt.Fprint(w, `{"status":"0","message":"No transactions found","result":[]}`)
	}))
}

func TestBuildReport_RejectsBadAddress(t *testing.T) {
	svc := NewService(explorer.NewClient("http://unused", "", 0), Options{})
	if _, err := svc.BuildReport(context.Background(), "not-an-address", false); err == nil {
		t.Fatal("expected error for invalid address")
	}
}

func TestBuildReport_ProducesLedgerAndBalance(t *testing.T) {
	var hits atomic.Int32
	srv := newExplorerStub(t, &hits)
	defer srv.Close()

	svc := NewService(explorer.NewClient(srv.URL, "", 0), Options{
		Prober: &stubProber{balance: decimal.RequireFromString("12.5")},
	})

	report, err := svc.BuildReport(context.Background(), "0x1111111111111111111111111111111111111111", false)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if report.RunID == "" {
		t.Fatal("expected run ID")
	}
	if len(report.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(report.Events))
	}
	if report.Events[0].Label != "Deposit" {
		t.Fatalf("expected Deposit, got %s", report.Events[0].Label)
	}
	if report.Balance == nil || !report.Balance.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("balance wrong: %v", report.Balance)
	}
}

func TestBuildReport_BalanceFailureIsNotFatal(t *testing.T) {
	var hits atomic.Int32
	srv := newExplorerStub(t, &hits)
	defer srv.Close()

	svc := NewService(explorer.NewClient(srv.URL, "", 0), Options{
		Prober: &stubProber{err: fmt.Errorf("rpc down")},
	})

	report, err := svc.BuildReport(context.Background(), "0x1111111111111111111111111111111111111111", false)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if report.Balance != nil {
		t.Fatalf("expected omitted balance, got %v", report.Balance)
	}
}

func TestBuildReport_ServesFromCache(t *testing.T) {
	var hits atomic.Int32
	srv := newExplorerStub(t, &hits)
	defer srv.Close()

	svc := NewService(explorer.NewClient(srv.URL, "", 0), Options{CacheTTL: time.Minute})
	addr := "0x1111111111111111111111111111111111111111"

	first, err := svc.BuildReport(context.Background(), addr, false)
	if err != nil {
		t.Fatalf("first build failed: %v", err)
	}
	afterFirst := hits.Load()

	second, err := svc.BuildReport(context.Background(), addr, false)
	if err != nil {
		t.Fatalf("second build failed: %v", err)
	}
	if hits.Load() != afterFirst {
		t.Fatal("cached request must not hit the explorer")
	}
	if second.RunID != first.RunID {
		t.Fatal("cached report must be the same run")
	}

	// forceRefresh bypasses the cache and produces a new run.
	third, err := svc.BuildReport(context.Background(), addr, true)
	if err != nil {
		t.Fatalf("forced build failed: %v", err)
	}
	if hits.Load() == afterFirst {
		t.Fatal("forced refresh must hit the explorer")
	}
	if third.RunID == first.RunID {
		t.Fatal("forced refresh must be a new run")
	}
}
