package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tgurley/smartline/internal/bankroll"
	"github.com/tgurley/smartline/pkg/models"
)

type bankrollView struct {
	Balance          decimal.Decimal `json:"balance"`
	BalanceFormatted string          `json:"balance_formatted"`
	UnitMode         string          `json:"unit_mode"`
	UnitSize         decimal.Decimal `json:"unit_size"`
}

func (s *Server) handleBankroll(w http.ResponseWriter, r *http.Request) {
	balance, err := s.store.Balance(r.Context())
	if err != nil {
		serverError(w, err)
		return
	}

	settings, err := s.store.GetSettings(r.Context())
	if err != nil {
		serverError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, bankrollView{
		Balance:          balance,
		BalanceFormatted: bankroll.FormatUSD(balance),
		UnitMode:         settings.UnitMode,
		UnitSize:         bankroll.UnitSize(settings, balance),
	})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			badRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}

	txs, err := s.store.ListTransactions(r.Context(), limit)
	if err != nil {
		serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

type addTransactionRequest struct {
	Type   string          `json:"type"`
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note,omitempty"`
}

// handleAddTransaction records a deposit or withdrawal. The client sends
// a positive amount either way; withdrawals are stored negative so the
// ledger sum stays the balance.
func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	var req addTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	if req.Type != models.TxDeposit && req.Type != models.TxWithdrawal {
		badRequest(w, "type must be deposit or withdrawal")
		return
	}
	if !req.Amount.IsPositive() {
		badRequest(w, "amount must be positive")
		return
	}

	amount := req.Amount
	if req.Type == models.TxWithdrawal {
		amount = amount.Neg()
	}

	tx := &models.Transaction{
		ID:        uuid.New(),
		Type:      req.Type,
		Amount:    amount,
		Note:      req.Note,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.InsertTransaction(r.Context(), tx); err != nil {
		serverError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleBalanceHistory(w http.ResponseWriter, r *http.Request) {
	points, err := s.store.BalanceHistory(r.Context())
	if err != nil {
		serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}
