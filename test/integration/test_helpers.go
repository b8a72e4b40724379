//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"qc-console/internal/backend"
	"qc-console/internal/config"
	"qc-console/internal/form"
	"qc-console/internal/handler"
	"qc-console/internal/middleware"
	"qc-console/internal/model"
	"qc-console/internal/router"
	"qc-console/internal/service"
	"qc-console/internal/session"
)

// Claim keys as minted by the plant backend's token issuer.
const (
	claimSubject = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/nameidentifier"
	claimName    = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/name"
	claimRole    = "http://schemas.microsoft.com/ws/2008/06/identity/claims/role"
)

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

// capturedCreate is what the fake plant backend saw on Rejections/Create.
type capturedCreate struct {
	Values map[string][]string
	Files  []*multipart.FileHeader
}

// plantBackend fakes the remote REST API the station talks to.
type plantBackend struct {
	server *httptest.Server
	role   string

	mu      sync.Mutex
	creates []capturedCreate
}

func newPlantBackend(t *testing.T, role string) *plantBackend {
	t.Helper()

	pb := &plantBackend{role: role}
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/Auth/Login", func(w http.ResponseWriter, r *http.Request) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			claimSubject: "42",
			claimName:    "Laura Mendez",
			claimRole:    pb.role,
		})
		signed, err := token.SignedString([]byte("integration-secret"))
		require.NoError(t, err)
		writeJSON(t, w, model.TokenResponse{Token: signed})
	})
	mux.HandleFunc("POST /api/Auth/Logout", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]bool{"success": true})
	})

	mux.HandleFunc("GET /api/Rejections/GetDefects", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []model.NamedItem{{ID: 1, Name: "Poro"}, {ID: 2, Name: "Grieta"}})
	})
	mux.HandleFunc("GET /api/Rejections/GetConditionByDefect", func(w http.ResponseWriter, r *http.Request) {
		defectID, _ := strconv.Atoi(r.URL.Query().Get("defectId"))
		writeJSON(t, w, []model.NamedItem{{ID: 10 * defectID, Name: "Leve"}})
	})
	mux.HandleFunc("GET /api/Rejections/GetLines", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []model.NamedItem{{ID: 5, Name: "Línea 5"}})
	})
	mux.HandleFunc("GET /api/Rejections/GetClients", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []model.NamedItem{{ID: 7, Name: "Acme"}})
	})
	mux.HandleFunc("GET /api/Rejections/GetContainmentAction", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []model.NamedItem{{ID: 3, Name: "Retrabajo"}})
	})
	mux.HandleFunc("GET /api/Rejections/GetNextFolio", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, 1042)
	})
	mux.HandleFunc("GET /api/Rejections/GetRejections", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []model.Rejection{})
	})
	mux.HandleFunc("POST /api/Rejections/Create", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(32<<20))
		pb.mu.Lock()
		pb.creates = append(pb.creates, capturedCreate{
			Values: r.MultipartForm.Value,
			Files:  r.MultipartForm.File["photos"],
		})
		pb.mu.Unlock()
		writeJSON(t, w, model.MutationResult{Success: true})
	})
	mux.HandleFunc("GET /api/Rejections/DownloadExcel", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		_, _ = w.Write([]byte("PK\x03\x04fake-xlsx"))
	})

	pb.server = httptest.NewServer(mux)
	t.Cleanup(pb.server.Close)
	return pb
}

func (pb *plantBackend) lastCreate(t *testing.T) capturedCreate {
	t.Helper()

	pb.mu.Lock()
	defer pb.mu.Unlock()
	require.NotEmpty(t, pb.creates)
	return pb.creates[len(pb.creates)-1]
}

// newStation wires the full station stack against the fake backend, the
// same way the app package does at boot.
func newStation(t *testing.T, pb *plantBackend) *httptest.Server {
	t.Helper()

	cfg := &config.Config{
		ServerPort:         "8080",
		ServerReadTimeout:  15 * time.Second,
		ServerWriteTimeout: 30 * time.Second,
		ServerIdleTimeout:  120 * time.Second,
		RequestTimeout:     30 * time.Second,
		BackendBaseURL:     pb.server.URL,
		BackendTimeout:     10 * time.Second,
		TokenFile:          filepath.Join(t.TempDir(), "token"),
		CORSOrigins:        []string{"*"},
		RateLimitRPM:       1000,
		AuthRateLimitRPM:   1000,
		MaxUploadSize:      32 << 20,
		DraftTTL:           time.Hour,
		DraftSweepInterval: time.Minute,
	}

	tokenFile, err := session.NewFileStore(cfg.TokenFile, cfg.TokenKey)
	require.NoError(t, err)
	sessions := session.NewStore(tokenFile)
	sessions.Restore()

	client := backend.NewClient(cfg.BackendBaseURL, cfg.BackendTimeout, sessions)

	authService := service.NewAuthService(client)
	rejectionService := service.NewRejectionService(client)
	scrapService := service.NewScrapService(client)

	server := httptest.NewServer(router.New(cfg, middleware.NewSessionMiddleware(sessions), router.Handlers{
		Auth:          handler.NewAuthHandler(authService, sessions),
		Rejection:     handler.NewRejectionHandler(rejectionService),
		RejectionForm: handler.NewRejectionFormHandler(rejectionService, form.NewRegistry[*form.RejectionDraft](cfg.DraftTTL), cfg.MaxUploadSize),
		Scrap:         handler.NewScrapHandler(scrapService),
		ScrapForm:     handler.NewScrapFormHandler(scrapService, form.NewRegistry[*form.ScrapDraft](cfg.DraftTTL)),
		Clients:       handler.NewReferenceHandler(service.NewClientsService(client)),
		Defects:       handler.NewReferenceHandler(service.NewDefectsService(client)),
		Lines:         handler.NewReferenceHandler(service.NewLinesService(client)),
		Conditions:    handler.NewConditionHandler(service.NewConditionService(client)),
		Users:         handler.NewUsersHandler(service.NewUsersService(client)),
	}))
	t.Cleanup(server.Close)

	return server
}

func login(t *testing.T, station *httptest.Server) {
	t.Helper()

	resp := doJSON(t, http.MethodPost, station.URL+"/api/auth/login", map[string]string{
		"email":    "laura@planta.mx",
		"password": "secreto123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func doJSON(t *testing.T, method string, url string, body any) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeData[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	var parsed struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	require.True(t, parsed.Success)

	var out T
	require.NoError(t, json.Unmarshal(parsed.Data, &out))
	return out
}

func pngBytes(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1))))
	return buf.Bytes()
}
