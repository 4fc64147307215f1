package handler

import (
	"net/http"

	"eco_missions/internal/api/middleware"
	"eco_missions/internal/app/service"
	"eco_missions/internal/common"
)

type WalletHandler struct {
	ledgerService *service.LedgerService
}

func NewWalletHandler(ls *service.LedgerService) *WalletHandler {
	return &WalletHandler{ledgerService: ls}
}

// Balance returns the calling participant's coin balance.
func (h *WalletHandler) Balance(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing caller identity")
		return
	}

	balance, err := h.ledgerService.Balance(r.Context(), userID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]int{"coins": balance})
}
