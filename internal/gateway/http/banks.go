package http

import (
	"net/http"

	"github.com/aussiebroadwan/bankgate/internal/gateway/catalog"
	"github.com/aussiebroadwan/bankgate/pkg/gatewaysdk"
	"github.com/aussiebroadwan/bankgate/pkg/httpx"
)

// BanksHandler lists the catalog.
type BanksHandler struct {
	Catalog *catalog.Catalog
}

// HandleList handles GET /v1/banks
//
//	@Summary		List Banks
//	@Description	Returns every bank in the catalog with the actions it supports.
//	@Tags			Banks
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	gatewaysdk.BankListResponse	"banks"
//	@Failure		401	{object}	gatewaysdk.ErrorResponse	"error, error_description"
//	@Router			/v1/banks [get].
func (h *BanksHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	banks := h.Catalog.Banks()
	out := gatewaysdk.BankListResponse{Banks: make([]gatewaysdk.Bank, 0, len(banks))}
	for _, b := range banks {
		kinds := h.Catalog.Actions(b.ID)
		actions := make([]string, 0, len(kinds))
		for _, k := range kinds {
			actions = append(actions, string(k))
		}
		out.Banks = append(out.Banks, gatewaysdk.Bank{
			ID:       b.ID,
			Name:     b.Name,
			Protocol: string(b.Protocol),
			Actions:  actions,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
