package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/barbearia-premium/engine/internal/siteconfig"
	"github.com/go-chi/chi/v5"
)

type AdminHandler struct {
	Settings *siteconfig.Provider
}

func (h *AdminHandler) Register(r *chi.Mux) {
	r.Post("/admin/settings/refresh", h.refreshSettings)
}

// Settings change only through this explicit reload, never mid-request.
func (h *AdminHandler) refreshSettings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Settings.Refresh(ctx); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
