package form

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qc-console/internal/model"
)

type fakeScrapBackend struct {
	created   []model.ScrapRecord
	createErr error
}

func (f *fakeScrapBackend) Shifts(context.Context) ([]model.NamedItem, error) {
	return []model.NamedItem{{ID: 1, Name: "Turno A"}}, nil
}

func (f *fakeScrapBackend) Lines(context.Context) ([]model.NamedItem, error) {
	return []model.NamedItem{{ID: 1, Name: "Línea 1"}, {ID: 2, Name: "Línea 2"}}, nil
}

func (f *fakeScrapBackend) Materials(context.Context) ([]model.NamedItem, error) {
	return []model.NamedItem{{ID: 4, Name: "Aluminio 6061"}}, nil
}

func (f *fakeScrapBackend) TypeScrap(context.Context) ([]model.NamedItem, error) {
	return []model.NamedItem{{ID: 9, Name: "Proceso"}}, nil
}

func (f *fakeScrapBackend) ProcessesByLine(context.Context, int) ([]model.NamedItem, error) {
	return []model.NamedItem{{ID: 11, Name: "Extrusión"}}, nil
}

func (f *fakeScrapBackend) MachinesByProcess(context.Context, int) ([]model.NamedItem, error) {
	return []model.NamedItem{{ID: 21, Name: "EXT-01"}}, nil
}

func (f *fakeScrapBackend) DefectsByTypeScrap(context.Context, int) ([]model.NamedItem, error) {
	return []model.NamedItem{{ID: 31, Name: "RDM interno"}, {ID: 32, Name: "Poro"}}, nil
}

func (f *fakeScrapBackend) Create(_ context.Context, record model.ScrapRecord) (model.MutationResult, error) {
	if f.createErr != nil {
		return model.MutationResult{}, f.createErr
	}

	f.created = append(f.created, record)
	return model.MutationResult{Success: true}, nil
}

func selectAll(t *testing.T, draft *ScrapDraft, defectID int) {
	t.Helper()
	ctx := context.Background()

	for _, step := range []struct {
		link string
		id   int
	}{
		{"line", 1}, {"process", 11}, {"machine", 21},
		{"typeScrap", 9}, {"defect", defectID},
	} {
		done, err := draft.Select(ctx, step.link, step.id)
		require.NoError(t, err, step.link)
		<-done
	}
}

func validScrapFields() ScrapFields {
	return ScrapFields{
		ShiftID:       1,
		MaterialID:    4,
		PayrollNumber: "8071",
		Alloy:         "6061",
		Diameter:      "50.8",
		Wall:          "3.2",
		Weight:        "12.4",
	}
}

func TestScrapDraft_SubmitHappyPath(t *testing.T) {
	fake := &fakeScrapBackend{}
	draft, err := NewScrapDraft(fake)
	require.NoError(t, err)
	require.NoError(t, draft.Init(context.Background()))

	selectAll(t, draft, 32)
	draft.SetFields(validScrapFields())

	result, err := draft.Submit(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Success)

	require.Len(t, fake.created, 1)
	record := fake.created[0]
	assert.Equal(t, 1, record.LineID)
	assert.Equal(t, 11, record.ProcessID)
	assert.Equal(t, 21, record.MachineID)
	assert.Equal(t, 9, record.TypeScrapID)
	assert.Equal(t, 32, record.DefectID)
	assert.Equal(t, "8071", record.PayrollNumber)
}

func TestScrapDraft_RDMRequiredForRDMDefects(t *testing.T) {
	fake := &fakeScrapBackend{createErr: errors.New("must not be called")}
	draft, err := NewScrapDraft(fake)
	require.NoError(t, err)
	require.NoError(t, draft.Init(context.Background()))

	selectAll(t, draft, 31) // "RDM interno"
	draft.SetFields(validScrapFields())

	_, err = draft.Submit(context.Background())
	require.Error(t, err, "submission must halt, not warn and continue")

	var problems FieldErrors
	require.True(t, errors.As(err, &problems))
	assert.Contains(t, problems, "rdm")
	assert.Empty(t, fake.created)
}

func TestScrapDraft_RDMSatisfied(t *testing.T) {
	fake := &fakeScrapBackend{}
	draft, err := NewScrapDraft(fake)
	require.NoError(t, err)
	require.NoError(t, draft.Init(context.Background()))

	selectAll(t, draft, 31)
	fields := validScrapFields()
	fields.RDM = "RDM-2026-014"
	draft.SetFields(fields)

	_, err = draft.Submit(context.Background())
	require.NoError(t, err)
	require.Len(t, fake.created, 1)
	assert.Equal(t, "RDM-2026-014", fake.created[0].RDM)
}

func TestScrapDraft_PayrollMustBeDigits(t *testing.T) {
	// Signed and decimal values are still numbers but not payrolls.
	for _, payroll := range []string{"80a71", "-12", "+7", "3.5"} {
		t.Run(payroll, func(t *testing.T) {
			fake := &fakeScrapBackend{createErr: errors.New("must not be called")}
			draft, err := NewScrapDraft(fake)
			require.NoError(t, err)
			require.NoError(t, draft.Init(context.Background()))

			selectAll(t, draft, 32)
			fields := validScrapFields()
			fields.PayrollNumber = payroll
			draft.SetFields(fields)

			_, err = draft.Submit(context.Background())
			require.Error(t, err)

			var problems FieldErrors
			require.True(t, errors.As(err, &problems))
			assert.Equal(t, msgDigitsOnly, problems["payRollNumber"])
		})
	}
}

func TestScrapDraft_ChainsValidateIndependently(t *testing.T) {
	fake := &fakeScrapBackend{createErr: errors.New("must not be called")}
	draft, err := NewScrapDraft(fake)
	require.NoError(t, err)
	require.NoError(t, draft.Init(context.Background()))

	// Only the line chain is completed.
	ctx := context.Background()
	for _, step := range []struct {
		link string
		id   int
	}{{"line", 1}, {"process", 11}, {"machine", 21}} {
		done, err := draft.Select(ctx, step.link, step.id)
		require.NoError(t, err)
		<-done
	}
	draft.SetFields(validScrapFields())

	_, err = draft.Submit(ctx)
	require.Error(t, err)

	var problems FieldErrors
	require.True(t, errors.As(err, &problems))
	assert.Contains(t, problems, "typeScrapId")
	assert.NotContains(t, problems, "lineId")
	assert.NotContains(t, problems, "machineId")
}
