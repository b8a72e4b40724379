package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"qc-console/internal/form"
	"qc-console/internal/service"
	"qc-console/pkg/apierror"
)

// ScrapFormHandler drives scrap drafts over HTTP, mirroring the rejection
// form flow minus attachments.
type ScrapFormHandler struct {
	service *service.ScrapService
	drafts  *form.Registry[*form.ScrapDraft]
}

func NewScrapFormHandler(service *service.ScrapService, drafts *form.Registry[*form.ScrapDraft]) *ScrapFormHandler {
	return &ScrapFormHandler{service: service, drafts: drafts}
}

func (h *ScrapFormHandler) Create(w http.ResponseWriter, r *http.Request) {
	draft, err := form.NewScrapDraft(h.service)
	if err != nil {
		writeError(w, err)
		return
	}

	_ = draft.Init(r.Context())

	id := h.drafts.Put(draft)
	writeSuccess(w, http.StatusCreated, map[string]any{
		"draftId":  id,
		"snapshot": draft.Snapshot(),
	})
}

func (h *ScrapFormHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	draft, ok := h.draft(w, r)
	if !ok {
		return
	}

	writeSuccess(w, http.StatusOK, draft.Snapshot())
}

func (h *ScrapFormHandler) SetFields(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	draft, ok := h.draft(w, r)
	if !ok {
		return
	}

	var payload form.ScrapFields
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New(apierror.KindValidation, "BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	draft.SetFields(payload)
	writeSuccess(w, http.StatusOK, draft.Snapshot())
}

func (h *ScrapFormHandler) Select(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	draft, ok := h.draft(w, r)
	if !ok {
		return
	}

	var payload selectRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New(apierror.KindValidation, "BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	if _, err := draft.Select(context.WithoutCancel(r.Context()), payload.Link, payload.ID); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, draft.Snapshot())
}

func (h *ScrapFormHandler) Submit(w http.ResponseWriter, r *http.Request) {
	draft, ok := h.draft(w, r)
	if !ok {
		return
	}

	result, err := draft.Submit(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	h.drafts.Remove(chi.URLParam(r, "draftID"))
	writeSuccess(w, http.StatusOK, result)
}

func (h *ScrapFormHandler) Discard(w http.ResponseWriter, r *http.Request) {
	h.drafts.Remove(chi.URLParam(r, "draftID"))
	writeSuccess(w, http.StatusOK, map[string]any{"discarded": true})
}

func (h *ScrapFormHandler) draft(w http.ResponseWriter, r *http.Request) (*form.ScrapDraft, bool) {
	draft, err := h.drafts.Get(chi.URLParam(r, "draftID"))
	if err != nil {
		writeError(w, err)
		return nil, false
	}

	return draft, true
}
