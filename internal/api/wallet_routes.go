package api

import (
	"fmt"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/kjannette/apetrack-backend/internal/export"
)

// walletAddress validates and extracts the {address} path segment.
func walletAddress(w http.ResponseWriter, r *http.Request) (string, bool) {
	address := r.PathValue("address")
	if !common.IsHexAddress(address) {
		writeError(w, http.StatusBadRequest, "invalid wallet address")
		return "", false
	}
	return address, true
}

func forceRefresh(r *http.Request) bool {
	return r.URL.Query().Get("refresh") == "true"
}

func (s *Server) handleWalletLedger(w http.ResponseWriter, r *http.Request) {
	address, ok := walletAddress(w, r)
	if !ok {
		return
	}

	report, err := s.activity.BuildReport(r.Context(), address, forceRefresh(r))
	if err != nil {
		fmt.Printf("Error building ledger for %s: %v\n", address, err)
		writeError(w, http.StatusBadGateway, "failed to build wallet ledger")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleWalletSummary(w http.ResponseWriter, r *http.Request) {
	address, ok := walletAddress(w, r)
	if !ok {
		return
	}

	report, err := s.activity.BuildReport(r.Context(), address, forceRefresh(r))
	if err != nil {
		fmt.Printf("Error building summary for %s: %v\n", address, err)
		writeError(w, http.StatusBadGateway, "failed to build wallet summary")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"runId":       report.RunID,
		"wallet":      report.Wallet,
		"generatedAt": report.GeneratedAt,
		"balance":     report.Balance,
		"summary":     report.Summary,
	})
}

func (s *Server) handleWalletExport(w http.ResponseWriter, r *http.Request) {
	address, ok := walletAddress(w, r)
	if !ok {
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "json" {
		writeError(w, http.StatusBadRequest, "format must be csv or json")
		return
	}

	report, err := s.activity.BuildReport(r.Context(), address, forceRefresh(r))
	if err != nil {
		fmt.Printf("Error building export for %s: %v\n", address, err)
		writeError(w, http.StatusBadGateway, "failed to build wallet export")
		return
	}

	if format == "json" {
		data, err := export.JSON(report.Events, report.Summary, s.appName)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to render export")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="ledger_%s.json"`, report.Wallet))
		w.Write(data)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="ledger_%s.csv"`, report.Wallet))
	fmt.Fprint(w, export.CSV(report.Events, report.Summary, s.appName))
}
