package export

import (
	"encoding/json"

	"github.com/kjannette/apetrack-backend/internal/models"
)

type jsonDocument struct {
	Integration string                  `json:"integration"`
	Events      []models.LedgerEvent    `json:"events"`
	Summary     models.PortfolioSummary `json:"summary"`
}

// JSON renders the ledger and summary as an indented document.
func JSON(events []models.LedgerEvent, summary models.PortfolioSummary, integration string) ([]byte, error) {
	return json.MarshalIndent(jsonDocument{
		Integration: integration,
		Events:      events,
		Summary:     summary,
	}, "", "  ")
}
