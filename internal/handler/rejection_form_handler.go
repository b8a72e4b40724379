package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"qc-console/internal/form"
	"qc-console/internal/service"
	"qc-console/pkg/apierror"
)

// RejectionFormHandler drives rejection drafts over HTTP. A draft is
// created once, then updated by id until it is submitted or discarded;
// cascade loads run in the background and the page polls the snapshot.
type RejectionFormHandler struct {
	service   *service.RejectionService
	drafts    *form.Registry[*form.RejectionDraft]
	maxUpload int64
}

func NewRejectionFormHandler(service *service.RejectionService, drafts *form.Registry[*form.RejectionDraft], maxUpload int64) *RejectionFormHandler {
	return &RejectionFormHandler{service: service, drafts: drafts, maxUpload: maxUpload}
}

func (h *RejectionFormHandler) Create(w http.ResponseWriter, r *http.Request) {
	draft, err := form.NewRejectionDraft(h.service)
	if err != nil {
		writeError(w, err)
		return
	}

	// Partial load failures are visible in the snapshot; the draft stays
	// usable so the operator can retry.
	_ = draft.Init(r.Context())

	id := h.drafts.Put(draft)
	writeSuccess(w, http.StatusCreated, map[string]any{
		"draftId":  id,
		"snapshot": draft.Snapshot(),
	})
}

func (h *RejectionFormHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	draft, ok := h.draft(w, r)
	if !ok {
		return
	}

	writeSuccess(w, http.StatusOK, draft.Snapshot())
}

func (h *RejectionFormHandler) SetFields(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	draft, ok := h.draft(w, r)
	if !ok {
		return
	}

	var payload form.RejectionFields
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New(apierror.KindValidation, "BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	draft.SetFields(payload)
	writeSuccess(w, http.StatusOK, draft.Snapshot())
}

type selectRequest struct {
	Link string `json:"link"`
	ID   int    `json:"id"`
}

// Select records a cascade choice. The dependent load continues after the
// response; the page polls the snapshot until the link settles.
func (h *RejectionFormHandler) Select(w http.ResponseWriter, r *http.Request) {
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

func (h *RejectionFormHandler) AddPhotos(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	draft, ok := h.draft(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		writeError(w, apierror.New(apierror.KindValidation, "BAD_REQUEST", "invalid multipart body", err.Error(), http.StatusBadRequest))
		return
	}

	var photos []form.Photo
	for _, header := range r.MultipartForm.File["photos"] {
		file, err := header.Open()
		if err != nil {
			writeError(w, err)
			return
		}

		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			writeError(w, err)
			return
		}

		photos = append(photos, form.Photo{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	if err := draft.AddPhotos(photos...); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, draft.Snapshot())
}

type signatureRequest struct {
	Signature string `json:"signature"`
}

func (h *RejectionFormHandler) SetSignature(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	draft, ok := h.draft(w, r)
	if !ok {
		return
	}

	var payload signatureRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New(apierror.KindValidation, "BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	if err := draft.SetSignature(payload.Signature); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, draft.Snapshot())
}

func (h *RejectionFormHandler) Submit(w http.ResponseWriter, r *http.Request) {
	draft, ok := h.draft(w, r)
	if !ok {
		return
	}

	result, err := draft.Submit(r.Context(), time.Now())
	if err != nil {
		writeError(w, err)
		return
	}

	h.drafts.Remove(chi.URLParam(r, "draftID"))
	writeSuccess(w, http.StatusOK, result)
}

func (h *RejectionFormHandler) Discard(w http.ResponseWriter, r *http.Request) {
	h.drafts.Remove(chi.URLParam(r, "draftID"))
	writeSuccess(w, http.StatusOK, map[string]any{"discarded": true})
}

func (h *RejectionFormHandler) draft(w http.ResponseWriter, r *http.Request) (*form.RejectionDraft, bool) {
	draft, err := h.drafts.Get(chi.URLParam(r, "draftID"))
	if err != nil {
		writeError(w, err)
		return nil, false
	}

	return draft, true
}

// CheckNumber backs the live numeric validation of count and payroll
// inputs; it never blocks typing, only annotates it.
func CheckNumber(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]any{
		"message": form.CheckNonNegative(r.URL.Query().Get("value")),
	})
}
