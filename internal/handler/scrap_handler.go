package handler

import (
	"net/http"

	"qc-console/internal/service"
)

type ScrapHandler struct {
	service *service.ScrapService
}

func NewScrapHandler(service *service.ScrapService) *ScrapHandler {
	return &ScrapHandler{service: service}
}

func (h *ScrapHandler) List(w http.ResponseWriter, r *http.Request) {
	scrap, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, scrap)
}
