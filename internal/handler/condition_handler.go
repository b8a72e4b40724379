package handler

import (
	"encoding/json"
	"net/http"

	"qc-console/internal/service"
	"qc-console/pkg/apierror"
)

// ConditionHandler serves the defect-condition catalog. Unlike the other
// admin catalogs, a condition also carries its parent defect id.
type ConditionHandler struct {
	service *service.ConditionService
}

func NewConditionHandler(service *service.ConditionService) *ConditionHandler {
	return &ConditionHandler{service: service}
}

func (h *ConditionHandler) List(w http.ResponseWriter, r *http.Request) {
	conditions, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, conditions)
}

func (h *ConditionHandler) Create(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload service.ConditionForm
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New(apierror.KindValidation, "BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	result, err := h.service.Create(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, result)
}

func (h *ConditionHandler) Update(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var payload service.ConditionForm
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New(apierror.KindValidation, "BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	result, err := h.service.Update(r.Context(), id, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, result)
}

func (h *ConditionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	result, err := h.service.Delete(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, result)
}
