// Package form implements the registration drafts behind the rejection and
// scrap capture screens: scalar field validation, cascading dependent
// selects, photo and signature staging, and the submission gate that keeps
// incomplete or inconsistent drafts off the network.
package form

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"qc-console/internal/backend"
	"qc-console/internal/cascade"
	"qc-console/internal/model"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// FieldErrors maps field names to user-facing validation messages. It is
// the error surface for everything rejected before a network call.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(e))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e[k]))
	}

	return strings.Join(parts, "; ")
}

const (
	msgRequired    = "este campo es obligatorio"
	msgNotNegative = "no se aceptan números negativos"
	msgDigitsOnly  = "debe contener solo dígitos"
)

// RejectionBackend is the slice of the rejection service a draft needs.
type RejectionBackend interface {
	Defects(ctx context.Context) ([]model.NamedItem, error)
	ConditionsByDefect(ctx context.Context, defectID int) ([]model.NamedItem, error)
	Lines(ctx context.Context) ([]model.NamedItem, error)
	Clients(ctx context.Context) ([]model.NamedItem, error)
	ContainmentActions(ctx context.Context) ([]model.NamedItem, error)
	NextFolio(ctx context.Context) (int, error)
	Create(ctx context.Context, form *backend.Multipart) (model.MutationResult, error)
}

// RejectionFields are the scalar inputs of the rejection form. The
// "insepector" spelling is the backend's wire name and is kept verbatim.
type RejectionFields struct {
	Inspector           string `json:"insepector" validate:"required"`
	PartNumber          string `json:"partNumber" validate:"required"`
	NumberOfPieces      int    `json:"numberOfPieces" validate:"gt=0"`
	OperatorPayroll     int    `json:"operatorPayroll" validate:"gt=0"`
	Description         string `json:"description"`
	RegistrationDate    string `json:"registrationDate" validate:"required"`
	IDLine              int    `json:"idLine" validate:"gt=0"`
	IDClient            int    `json:"idClient" validate:"gt=0"`
	IDContainmentAction int    `json:"idContainmentaction" validate:"gt=0"`
}

// Chain link positions of the rejection cascade.
const (
	RejectionLinkDefect    = 0
	RejectionLinkCondition = 1
)

type RejectionDraft struct {
	svc   RejectionBackend
	chain *cascade.Chain

	mu          sync.Mutex
	fields      RejectionFields
	attachments AttachmentSet
	signature   string
	folio       int
	lines       []model.NamedItem
	clients     []model.NamedItem
	actions     []model.NamedItem
}

func NewRejectionDraft(svc RejectionBackend) (*RejectionDraft, error) {
	chain, err := cascade.NewChain(
		cascade.LinkSpec{Name: "defect", Required: true},
		cascade.LinkSpec{Name: "condition", Required: true, Load: svc.ConditionsByDefect},
	)
	if err != nil {
		return nil, err
	}

	return &RejectionDraft{svc: svc, chain: chain}, nil
}

// Init loads the independent option sets and reserves the next folio. The
// first failure is returned, but everything that did load stays usable so
// the operator can retry without losing the draft.
func (d *RejectionDraft) Init(ctx context.Context) error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	defects, err := d.svc.Defects(ctx)
	if err != nil {
		keep(err)
		_ = d.chain.SetFailed(RejectionLinkDefect, err)
	} else {
		_ = d.chain.SetOptions(RejectionLinkDefect, defects)
	}

	folio, err := d.svc.NextFolio(ctx)
	keep(err)

	lines, err := d.svc.Lines(ctx)
	keep(err)
	clients, err := d.svc.Clients(ctx)
	keep(err)
	actions, err := d.svc.ContainmentActions(ctx)
	keep(err)

	d.mu.Lock()
	d.folio = folio
	d.lines = lines
	d.clients = clients
	d.actions = actions
	d.mu.Unlock()

	return firstErr
}

func (d *RejectionDraft) SetFields(fields RejectionFields) {
	d.mu.Lock()
	d.fields = fields
	d.mu.Unlock()
}

// Select records a cascade selection; "defect" reloads conditions keyed by
// the new id, and clears the current condition either way.
func (d *RejectionDraft) Select(ctx context.Context, link string, id int) (<-chan struct{}, error) {
	switch link {
	case "defect":
		return d.chain.Select(ctx, RejectionLinkDefect, id)
	case "condition":
		return d.chain.Select(ctx, RejectionLinkCondition, id)
	}

	return nil, fmt.Errorf("unknown chain link %q", link)
}

func (d *RejectionDraft) AddPhotos(photos ...Photo) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.attachments.Add(photos...)
}

// SetSignature stages the inline signature image. A blank value clears it;
// anything else must be in the recognized inline-image-data encoding.
func (d *RejectionDraft) SetSignature(raw string) error {
	if raw != "" && !IsInlineImage(raw) {
		return FieldErrors{"informedSignature": "la firma no es una imagen válida"}
	}

	d.mu.Lock()
	d.signature = raw
	d.mu.Unlock()
	return nil
}

// RejectionSnapshot is the rendering view of a draft.
type RejectionSnapshot struct {
	Folio        int               `json:"folio"`
	Fields       RejectionFields   `json:"fields"`
	Chain        []cascade.Link    `json:"chain"`
	Lines        []model.NamedItem `json:"lines"`
	Clients      []model.NamedItem `json:"clients"`
	Actions      []model.NamedItem `json:"actions"`
	PhotoCount   int               `json:"photoCount"`
	PhotoNames   []string          `json:"photoNames"`
	HasSignature bool              `json:"hasSignature"`
}

func (d *RejectionDraft) Snapshot() RejectionSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	names := make([]string, 0, d.attachments.Count())
	for _, photo := range d.attachments.Photos() {
		names = append(names, photo.Name)
	}

	return RejectionSnapshot{
		Folio:        d.folio,
		Fields:       d.fields,
		Chain:        d.chain.Snapshot(),
		Lines:        d.lines,
		Clients:      d.clients,
		Actions:      d.actions,
		PhotoCount:   d.attachments.Count(),
		PhotoNames:   names,
		HasSignature: d.signature != "",
	}
}

// Submit validates the whole draft and, only when everything passes, builds
// the multipart payload and sends it. Validation failures come back as
// FieldErrors and never reach the network.
func (d *RejectionDraft) Submit(ctx context.Context, now time.Time) (model.MutationResult, error) {
	d.mu.Lock()
	fields := d.fields
	folio := d.folio
	signature := d.signature
	photos := d.attachments.Photos()
	d.mu.Unlock()

	problems := validateStruct(fields)
	for link, msg := range d.chain.Validate() {
		problems[chainFieldName(link)] = msg
	}
	if len(problems) > 0 {
		return model.MutationResult{}, problems
	}

	payload := backend.NewMultipart()
	addField := func(name string, value string) {
		_ = payload.AddField(name, value)
	}

	addField("insepector", fields.Inspector)
	addField("partNumber", fields.PartNumber)
	addField("numberOfPieces", strconv.Itoa(fields.NumberOfPieces))
	addField("description", fields.Description)
	addField("operatorPayroll", strconv.Itoa(fields.OperatorPayroll))
	addField("registrationDate", fields.RegistrationDate)
	addField("folio", strconv.Itoa(folio))
	addField("idDefect", strconv.Itoa(d.chain.Selected(RejectionLinkDefect)))
	addField("idCondition", strconv.Itoa(d.chain.Selected(RejectionLinkCondition)))
	addField("idLine", strconv.Itoa(fields.IDLine))
	addField("idClient", strconv.Itoa(fields.IDClient))
	addField("idContainmentaction", strconv.Itoa(fields.IDContainmentAction))

	if signature != "" {
		part, err := DecodeSignature(signature, now)
		if err != nil {
			return model.MutationResult{}, FieldErrors{"informedSignature": "la firma no se pudo procesar"}
		}
		if err := payload.AddFile("photos", part.Name, part.ContentType, part.Data); err != nil {
			return model.MutationResult{}, err
		}
	}

	for _, photo := range photos {
		if err := payload.AddFile("photos", photo.Name, photo.ContentType, photo.Data); err != nil {
			return model.MutationResult{}, err
		}
	}

	return d.svc.Create(ctx, payload)
}

func chainFieldName(link string) string {
	switch link {
	case "defect":
		return "idDefect"
	case "condition":
		return "idCondition"
	case "line":
		return "lineId"
	case "process":
		return "processId"
	case "machine":
		return "machineId"
	case "typeScrap":
		return "typeScrapId"
	}

	return link
}

// validateStruct runs the validator tags and translates the failures into
// the user-facing field messages.
func validateStruct(v any) FieldErrors {
	problems := FieldErrors{}

	err := validate.Struct(v)
	if err == nil {
		return problems
	}

	invalid, ok := err.(validator.ValidationErrors)
	if !ok {
		problems["_"] = err.Error()
		return problems
	}

	for _, fe := range invalid {
		name := jsonFieldName(v, fe.StructField())
		switch fe.Tag() {
		case "number":
			problems[name] = msgDigitsOnly
		default:
			problems[name] = msgRequired
		}
	}

	return problems
}

// CheckNonNegative is the live per-keystroke numeric check: empty input is
// fine (required-ness is enforced at submit), negatives and non-numbers
// are flagged with their own messages.
func CheckNonNegative(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return msgDigitsOnly
	}
	if n < 0 {
		return msgNotNegative
	}

	return ""
}
