package handler

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"qc-console/internal/model"
	"qc-console/internal/service"
)

type RejectionHandler struct {
	service *service.RejectionService
}

func NewRejectionHandler(service *service.RejectionService) *RejectionHandler {
	return &RejectionHandler{service: service}
}

func (h *RejectionHandler) List(w http.ResponseWriter, r *http.Request) {
	rejections, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, rejections)
}

func (h *RejectionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, model.ErrInvalidInput)
		return
	}

	result, err := h.service.Delete(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, result)
}

// DownloadExcel relays the backend's spreadsheet export to the browser
// without buffering it.
func (h *RejectionHandler) DownloadExcel(w http.ResponseWriter, r *http.Request) {
	body, contentType, err := h.service.DownloadExcel(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	defer body.Close()

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="rechazos.xlsx"`)

	if _, err := io.Copy(w, body); err != nil {
		slog.Warn("report download interrupted", "error", err)
	}
}
