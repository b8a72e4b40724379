package backend

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qc-console/pkg/apierror"
)

type staticTokens string

func (s staticTokens) Token() string { return string(s) }

func TestClient_AttachesBearerWhenPresent(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, staticTokens("tok123"))
	var out map[string]bool
	require.NoError(t, client.Get(context.Background(), "/x", &out))

	assert.Equal(t, "Bearer tok123", gotAuth)
	assert.True(t, out["ok"])
}

func TestClient_OmitsBearerWhenLoggedOut(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, staticTokens(""))
	require.NoError(t, client.Get(context.Background(), "/x", nil))
	assert.Empty(t, gotAuth)
}

func TestClient_NonJSONResponseLeavesTargetUntouched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("registered"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, nil)
	out := map[string]bool{"sentinel": true}
	require.NoError(t, client.Post(context.Background(), "/x", map[string]string{"name": "a"}, &out))
	assert.True(t, out["sentinel"], "non-JSON 2xx must not touch the decode target")
}

func TestClient_NonOKCarriesBodyText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte("El folio ya existe"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, nil)
	err := client.Get(context.Background(), "/x", nil)

	require.Error(t, err)
	apiErr, ok := err.(*apierror.Error)
	require.True(t, ok)
	assert.Equal(t, apierror.KindHTTP, apiErr.Kind)
	assert.Equal(t, http.StatusConflict, apiErr.HTTPStatus)
	assert.Equal(t, "El folio ya existe", apiErr.Message)
}

func TestClient_NonOKEmptyBodyFallsBackToStatusLine(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, nil)
	err := client.Get(context.Background(), "/x", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP Error: 503 - Service Unavailable")
}

func TestClient_TransportFailureIsKinded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // force connection refused

	client := NewClient(srv.URL, time.Second, nil)
	err := client.Get(context.Background(), "/x", nil)

	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindTransport))
}

func TestClient_MultipartBodyUsesGeneratedBoundary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "1205-A", r.FormValue("partNumber"))

		files := r.MultipartForm.File["photos"]
		require.Len(t, files, 1)
		assert.Equal(t, "foto1.png", files[0].Filename)
		assert.Equal(t, "image/png", files[0].Header.Get("Content-Type"))

		f, err := files[0].Open()
		require.NoError(t, err)
		defer f.Close()
		data, err := io.ReadAll(f)
		require.NoError(t, err)
		assert.Equal(t, []byte{1, 2, 3}, data)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	form := NewMultipart()
	require.NoError(t, form.AddField("partNumber", "1205-A"))
	require.NoError(t, form.AddFile("photos", "foto1.png", "image/png", []byte{1, 2, 3}))

	client := NewClient(srv.URL, time.Second, nil)
	var out map[string]bool
	require.NoError(t, client.Post(context.Background(), "/x", form, &out))
	assert.True(t, out["success"])
}

func TestClient_Stream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		_, _ = w.Write([]byte("PK\x03\x04fake"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, nil)
	body, contentType, err := client.Stream(context.Background(), "/x")
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "PK\x03\x04fake", string(data))
	assert.Contains(t, contentType, "spreadsheetml")
}
