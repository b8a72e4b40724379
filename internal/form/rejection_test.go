package form

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qc-console/internal/backend"
	"qc-console/internal/model"
)

// fakeRejectionBackend drives drafts without a network. Created multipart
// payloads are forwarded to a capture server so their wire form can be
// inspected.
type fakeRejectionBackend struct {
	conditions map[int][]model.NamedItem
	folio      int
	createURL  string
	created    *http.Request
	createErr  error
	block      chan struct{}
}

func (f *fakeRejectionBackend) Defects(context.Context) ([]model.NamedItem, error) {
	return []model.NamedItem{{ID: 3, Name: "Porosidad"}, {ID: 7, Name: "Rayado"}}, nil
}

func (f *fakeRejectionBackend) ConditionsByDefect(_ context.Context, defectID int) ([]model.NamedItem, error) {
	if f.block != nil && defectID == 3 {
		<-f.block
	}
	return f.conditions[defectID], nil
}

func (f *fakeRejectionBackend) Lines(context.Context) ([]model.NamedItem, error) {
	return []model.NamedItem{{ID: 1, Name: "Línea 1"}}, nil
}

func (f *fakeRejectionBackend) Clients(context.Context) ([]model.NamedItem, error) {
	return []model.NamedItem{{ID: 5, Name: "Acme"}}, nil
}

func (f *fakeRejectionBackend) ContainmentActions(context.Context) ([]model.NamedItem, error) {
	return []model.NamedItem{{ID: 2, Name: "Contener"}}, nil
}

func (f *fakeRejectionBackend) NextFolio(context.Context) (int, error) {
	return f.folio, nil
}

func (f *fakeRejectionBackend) Create(ctx context.Context, payload *backend.Multipart) (model.MutationResult, error) {
	if f.createErr != nil {
		return model.MutationResult{}, f.createErr
	}

	client := backend.NewClient(f.createURL, time.Second, nil)
	var result model.MutationResult
	err := client.Post(ctx, "/capture", payload, &result)
	return result, err
}

func newCaptureServer(t *testing.T, into **http.Request) string {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(8<<20))
		*into = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"id":"55"}`))
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func conditionFixtures() map[int][]model.NamedItem {
	return map[int][]model.NamedItem{
		3: {{ID: 31, Name: "Poro"}, {ID: 32, Name: "Grieta"}},
		7: {{ID: 71, Name: "Rebaba"}},
	}
}

func validFields() RejectionFields {
	return RejectionFields{
		Inspector:           "Laura",
		PartNumber:          "1205-A",
		NumberOfPieces:      12,
		OperatorPayroll:     8071,
		Description:         "poro en cara exterior",
		RegistrationDate:    "2026-08-29",
		IDLine:              1,
		IDClient:            5,
		IDContainmentAction: 2,
	}
}

func readyDraft(t *testing.T, fake *fakeRejectionBackend) *RejectionDraft {
	t.Helper()

	draft, err := NewRejectionDraft(fake)
	require.NoError(t, err)
	require.NoError(t, draft.Init(context.Background()))

	done, err := draft.Select(context.Background(), "defect", 3)
	require.NoError(t, err)
	<-done
	done, err = draft.Select(context.Background(), "condition", 31)
	require.NoError(t, err)
	<-done

	draft.SetFields(validFields())
	return draft
}

func TestRejectionDraft_SubmitBuildsMultipart(t *testing.T) {
	fake := &fakeRejectionBackend{conditions: conditionFixtures(), folio: 1042}
	fake.createURL = newCaptureServer(t, &fake.created)

	draft := readyDraft(t, fake)
	require.NoError(t, draft.AddPhotos(photo(t, "foto1.png"), photo(t, "foto2.png")))
	require.NoError(t, draft.SetSignature(signatureDataURL(t)))

	result, err := draft.Submit(context.Background(), time.UnixMilli(1700000000000))
	require.NoError(t, err)
	assert.True(t, result.Success)

	req := fake.created
	require.NotNil(t, req)

	mediaType, _, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/form-data", mediaType)

	assert.Equal(t, "Laura", req.FormValue("insepector"))
	assert.Equal(t, "1205-A", req.FormValue("partNumber"))
	assert.Equal(t, "12", req.FormValue("numberOfPieces"))
	assert.Equal(t, "8071", req.FormValue("operatorPayroll"))
	assert.Equal(t, "1042", req.FormValue("folio"))
	assert.Equal(t, "3", req.FormValue("idDefect"))
	assert.Equal(t, "31", req.FormValue("idCondition"))
	assert.Equal(t, "1", req.FormValue("idLine"))
	assert.Equal(t, "5", req.FormValue("idClient"))
	assert.Equal(t, "2", req.FormValue("idContainmentaction"))

	files := req.MultipartForm.File["photos"]
	require.Len(t, files, 3, "signature plus two photos travel in the same field")
	assert.Equal(t, "signature_1700000000000.png", files[0].Filename)
	assert.Equal(t, "foto1.png", files[1].Filename)
	assert.Equal(t, "foto2.png", files[2].Filename)
}

func TestRejectionDraft_SubmitWithoutSignature(t *testing.T) {
	fake := &fakeRejectionBackend{conditions: conditionFixtures(), folio: 1}
	fake.createURL = newCaptureServer(t, &fake.created)

	draft := readyDraft(t, fake)

	_, err := draft.Submit(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Empty(t, fake.created.MultipartForm.File["photos"])
}

func TestRejectionDraft_SubmitGateBlocksIncompleteChain(t *testing.T) {
	fake := &fakeRejectionBackend{conditions: conditionFixtures(), folio: 1, createErr: errors.New("must not be called")}

	draft, err := NewRejectionDraft(fake)
	require.NoError(t, err)
	require.NoError(t, draft.Init(context.Background()))
	draft.SetFields(validFields())

	done, err := draft.Select(context.Background(), "defect", 3)
	require.NoError(t, err)
	<-done
	// Condition left unselected.

	_, err = draft.Submit(context.Background(), time.Now())
	require.Error(t, err)

	var fields FieldErrors
	require.True(t, errors.As(err, &fields))
	assert.Contains(t, fields, "idCondition")
	assert.NotContains(t, fields, "idDefect")
}

func TestRejectionDraft_SubmitGateBlocksWhileLoading(t *testing.T) {
	fake := &fakeRejectionBackend{
		conditions: conditionFixtures(),
		folio:      1,
		createErr:  errors.New("must not be called"),
		block:      make(chan struct{}),
	}

	draft, err := NewRejectionDraft(fake)
	require.NoError(t, err)
	require.NoError(t, draft.Init(context.Background()))
	draft.SetFields(validFields())

	done, err := draft.Select(context.Background(), "defect", 3)
	require.NoError(t, err)

	_, err = draft.Submit(context.Background(), time.Now())
	require.Error(t, err)

	var fields FieldErrors
	require.True(t, errors.As(err, &fields))
	assert.Equal(t, "las opciones siguen cargando", fields["idCondition"])

	close(fake.block)
	<-done
}

func TestRejectionDraft_SubmitValidatesScalars(t *testing.T) {
	fake := &fakeRejectionBackend{conditions: conditionFixtures(), folio: 1, createErr: errors.New("must not be called")}
	draft := readyDraft(t, fake)

	fields := validFields()
	fields.Inspector = ""
	fields.NumberOfPieces = 0
	draft.SetFields(fields)

	_, err := draft.Submit(context.Background(), time.Now())
	require.Error(t, err)

	var problems FieldErrors
	require.True(t, errors.As(err, &problems))
	assert.Equal(t, msgRequired, problems["insepector"])
	assert.Equal(t, msgRequired, problems["numberOfPieces"])
}

func TestRejectionDraft_StaleConditionFetchDiscarded(t *testing.T) {
	fake := &fakeRejectionBackend{conditions: conditionFixtures(), folio: 1, block: make(chan struct{})}
	fake.createURL = newCaptureServer(t, &fake.created)

	draft, err := NewRejectionDraft(fake)
	require.NoError(t, err)
	require.NoError(t, draft.Init(context.Background()))

	// Defect 3's condition fetch hangs; the operator switches to defect 7.
	slow, err := draft.Select(context.Background(), "defect", 3)
	require.NoError(t, err)
	fast, err := draft.Select(context.Background(), "defect", 7)
	require.NoError(t, err)
	<-fast

	close(fake.block)
	<-slow

	snapshot := draft.Snapshot()
	condition := snapshot.Chain[RejectionLinkCondition]
	require.Len(t, condition.Options, 1)
	assert.Equal(t, "Rebaba", condition.Options[0].Name)
}

func TestRejectionDraft_SignatureMustBeInline(t *testing.T) {
	fake := &fakeRejectionBackend{conditions: conditionFixtures(), folio: 1}
	draft, err := NewRejectionDraft(fake)
	require.NoError(t, err)

	assert.Error(t, draft.SetSignature("not a data url"))
	assert.NoError(t, draft.SetSignature(""))
}

func TestCheckNonNegative(t *testing.T) {
	assert.Empty(t, CheckNonNegative(""))
	assert.Empty(t, CheckNonNegative("12"))
	assert.Equal(t, msgNotNegative, CheckNonNegative("-3"))
	assert.Equal(t, msgDigitsOnly, CheckNonNegative("abc"))
	assert.Equal(t, msgDigitsOnly, CheckNonNegative("12.5"))
}

func TestFieldErrors_ErrorIsStable(t *testing.T) {
	err := FieldErrors{"b": "x", "a": "y"}
	assert.Equal(t, "a: y; b: x", err.Error())
}
