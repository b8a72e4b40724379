package form

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"qc-console/internal/cascade"
	"qc-console/internal/model"
)

// ScrapBackend is the slice of the scrap service a draft needs.
type ScrapBackend interface {
	Shifts(ctx context.Context) ([]model.NamedItem, error)
	Lines(ctx context.Context) ([]model.NamedItem, error)
	Materials(ctx context.Context) ([]model.NamedItem, error)
	TypeScrap(ctx context.Context) ([]model.NamedItem, error)
	ProcessesByLine(ctx context.Context, lineID int) ([]model.NamedItem, error)
	MachinesByProcess(ctx context.Context, processID int) ([]model.NamedItem, error)
	DefectsByTypeScrap(ctx context.Context, typeScrapID int) ([]model.NamedItem, error)
	Create(ctx context.Context, record model.ScrapRecord) (model.MutationResult, error)
}

// ScrapFields are the scalar inputs of the scrap form.
type ScrapFields struct {
	ShiftID       int    `json:"shiftId" validate:"gt=0"`
	MaterialID    int    `json:"materialId" validate:"gt=0"`
	PayrollNumber string `json:"payRollNumber" validate:"required,number"`
	Alloy         string `json:"alloy"`
	Diameter      string `json:"diameter"`
	Wall          string `json:"wall"`
	RDM           string `json:"rdm"`
	Weight        string `json:"weight"`
}

// Defect names that make the RDM reference mandatory.
var rdmDefects = map[string]struct{}{
	"RDM interno": {},
	"RDM externo": {},
}

// Chain link positions of the two scrap cascades.
const (
	ScrapLinkLine    = 0
	ScrapLinkProcess = 1
	ScrapLinkMachine = 2

	ScrapLinkTypeScrap = 0
	ScrapLinkDefect    = 1
)

type ScrapDraft struct {
	svc       ScrapBackend
	lineChain *cascade.Chain
	typeChain *cascade.Chain

	mu        sync.Mutex
	fields    ScrapFields
	shifts    []model.NamedItem
	materials []model.NamedItem
}

func NewScrapDraft(svc ScrapBackend) (*ScrapDraft, error) {
	lineChain, err := cascade.NewChain(
		cascade.LinkSpec{Name: "line", Required: true},
		cascade.LinkSpec{Name: "process", Required: true, Load: svc.ProcessesByLine},
		cascade.LinkSpec{Name: "machine", Required: true, Load: svc.MachinesByProcess},
	)
	if err != nil {
		return nil, err
	}

	typeChain, err := cascade.NewChain(
		cascade.LinkSpec{Name: "typeScrap", Required: true},
		cascade.LinkSpec{Name: "defect", Required: true, Load: svc.DefectsByTypeScrap},
	)
	if err != nil {
		return nil, err
	}

	return &ScrapDraft{svc: svc, lineChain: lineChain, typeChain: typeChain}, nil
}

// Init loads the independent option sets: shifts, materials, lines and
// scrap types. The first failure is returned; loaded sets stay usable.
func (d *ScrapDraft) Init(ctx context.Context) error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	lines, err := d.svc.Lines(ctx)
	if err != nil {
		keep(err)
		_ = d.lineChain.SetFailed(ScrapLinkLine, err)
	} else {
		_ = d.lineChain.SetOptions(ScrapLinkLine, lines)
	}

	types, err := d.svc.TypeScrap(ctx)
	if err != nil {
		keep(err)
		_ = d.typeChain.SetFailed(ScrapLinkTypeScrap, err)
	} else {
		_ = d.typeChain.SetOptions(ScrapLinkTypeScrap, types)
	}

	shifts, err := d.svc.Shifts(ctx)
	keep(err)
	materials, err := d.svc.Materials(ctx)
	keep(err)

	d.mu.Lock()
	d.shifts = shifts
	d.materials = materials
	d.mu.Unlock()

	return firstErr
}

func (d *ScrapDraft) SetFields(fields ScrapFields) {
	d.mu.Lock()
	d.fields = fields
	d.mu.Unlock()
}

func (d *ScrapDraft) Select(ctx context.Context, link string, id int) (<-chan struct{}, error) {
	switch link {
	case "line":
		return d.lineChain.Select(ctx, ScrapLinkLine, id)
	case "process":
		return d.lineChain.Select(ctx, ScrapLinkProcess, id)
	case "machine":
		return d.lineChain.Select(ctx, ScrapLinkMachine, id)
	case "typeScrap":
		return d.typeChain.Select(ctx, ScrapLinkTypeScrap, id)
	case "defect":
		return d.typeChain.Select(ctx, ScrapLinkDefect, id)
	}

	return nil, fmt.Errorf("unknown chain link %q", link)
}

type ScrapSnapshot struct {
	Fields    ScrapFields       `json:"fields"`
	LineChain []cascade.Link    `json:"lineChain"`
	TypeChain []cascade.Link    `json:"typeChain"`
	Shifts    []model.NamedItem `json:"shifts"`
	Materials []model.NamedItem `json:"materials"`
}

func (d *ScrapDraft) Snapshot() ScrapSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	return ScrapSnapshot{
		Fields:    d.fields,
		LineChain: d.lineChain.Snapshot(),
		TypeChain: d.typeChain.Snapshot(),
		Shifts:    d.shifts,
		Materials: d.materials,
	}
}

// Submit validates everything and creates the scrap record. A missing RDM
// on an RDM defect halts submission.
func (d *ScrapDraft) Submit(ctx context.Context) (model.MutationResult, error) {
	d.mu.Lock()
	fields := d.fields
	d.mu.Unlock()

	fields.PayrollNumber = strings.TrimSpace(fields.PayrollNumber)

	problems := validateStruct(fields)
	for link, msg := range d.lineChain.Validate() {
		problems[chainFieldName(link)] = msg
	}
	for link, msg := range d.typeChain.Validate() {
		problems[chainFieldName(link)] = msg
	}

	if d.requiresRDM() && strings.TrimSpace(fields.RDM) == "" {
		problems["rdm"] = "el campo RDM es requerido para este tipo de defecto"
	}

	if len(problems) > 0 {
		return model.MutationResult{}, problems
	}

	record := model.ScrapRecord{
		ShiftID:       fields.ShiftID,
		LineID:        d.lineChain.Selected(ScrapLinkLine),
		ProcessID:     d.lineChain.Selected(ScrapLinkProcess),
		MachineID:     d.lineChain.Selected(ScrapLinkMachine),
		MaterialID:    fields.MaterialID,
		TypeScrapID:   d.typeChain.Selected(ScrapLinkTypeScrap),
		DefectID:      d.typeChain.Selected(ScrapLinkDefect),
		PayrollNumber: fields.PayrollNumber,
		Alloy:         fields.Alloy,
		Diameter:      fields.Diameter,
		Wall:          fields.Wall,
		RDM:           strings.TrimSpace(fields.RDM),
		Weight:        fields.Weight,
	}

	return d.svc.Create(ctx, record)
}

// requiresRDM checks the display name of the selected scrap defect.
func (d *ScrapDraft) requiresRDM() bool {
	selected := d.typeChain.Selected(ScrapLinkDefect)
	if selected == 0 {
		return false
	}

	for _, option := range d.typeChain.Snapshot()[ScrapLinkDefect].Options {
		if option.ID == selected {
			_, required := rdmDefects[option.Name]
			return required
		}
	}

	return false
}
