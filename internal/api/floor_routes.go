package api

import (
	"fmt"
	"net/http"
)

func (s *Server) handleFloors(w http.ResponseWriter, r *http.Request) {
	floors, err := s.floorRepo.GetAll(r.Context())
	if err != nil {
		fmt.Printf("Error fetching floors: %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch floor prices")
		return
	}
	writeJSON(w, http.StatusOK, floors)
}

func (s *Server) handleFloorByContract(w http.ResponseWriter, r *http.Request) {
	contract := r.PathValue("contract")
	network := r.URL.Query().Get("network")
	if network == "" {
		network = "apechain"
	}

	fp, err := s.floorRepo.GetByContract(r.Context(), contract, network)
	if err != nil {
		fmt.Printf("Error fetching floor for %s: %v\n", contract, err)
		writeError(w, http.StatusInternalServerError, "failed to fetch floor price")
		return
	}
	if fp == nil {
		writeError(w, http.StatusNotFound, "no floor price for contract")
		return
	}
	writeJSON(w, http.StatusOK, fp)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 50)

	runs, err := s.runRepo.GetRecent(r.Context(), limit)
	if err != nil {
		fmt.Printf("Error fetching runs: %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch run history")
		return
	}
	writeJSON(w, http.StatusOK, runs)
}
