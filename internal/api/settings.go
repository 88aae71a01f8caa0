package api

import (
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/tgurley/smartline/pkg/models"
)

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.store.GetSettings(r.Context())
	if err != nil {
		serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var req models.Settings
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	switch req.UnitMode {
	case models.UnitFixed, models.UnitPercent:
	default:
		badRequest(w, "unit_mode must be fixed or percent")
		return
	}
	if !req.UnitValue.IsPositive() {
		badRequest(w, "unit_value must be positive")
		return
	}
	if req.UnitMode == models.UnitPercent && req.UnitValue.GreaterThan(decimal.NewFromInt(100)) {
		badRequest(w, "percent unit_value cannot exceed 100")
		return
	}
	switch req.OddsFormat {
	case "american", "decimal":
	default:
		badRequest(w, "odds_format must be american or decimal")
		return
	}

	if err := s.store.PutSettings(r.Context(), &req); err != nil {
		serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}
