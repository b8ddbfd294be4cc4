package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/sivanlg/homeradar/internal/normalize"
	"github.com/sivanlg/homeradar/internal/pkg/errcode"
)

type envelope struct {
	Code int                    `json:"code"`
	Msg  string                 `json:"msg"`
	Data map[string]interface{} `json:"data"`
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	var env envelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	return resp, env
}

func seedListing(t *testing.T, env *testEnv, adID, description string) {
	t.Helper()
	result := env.ingest.IngestBatch(context.Background(), []normalize.Record{{
		"adNumber":   adID,
		"price":      "1,900,000 ₪",
		"searchText": description,
		"additionalDetails": map[string]interface{}{
			"roomsCount": 3.5,
			"property":   map[string]interface{}{"text": "apartment"},
		},
	}}, "", normalize.Context{City: "Haifa"})
	require.Equal(t, 1, result.Saved)
	require.Empty(t, result.Errors)
}

func TestSearchEndpoint(t *testing.T) {
	env, cleanup := setupRouter(t)
	defer cleanup()

	adID := "ad-" + uuid.NewString()
	seedListing(t, env, adID, "sunny three and a half rooms near the beach")

	resp, body := doJSON(t, env.router, http.MethodPost, "/api/v1/search", map[string]interface{}{
		"query": "apartment near the sea",
		"city":  "Haifa",
	})
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, 0, body.Code)
	results, ok := body.Data["results"].([]interface{})
	require.True(t, ok)
	require.NotEmpty(t, results)

	// Empty query never reaches the gateway.
	_, body = doJSON(t, env.router, http.MethodPost, "/api/v1/search", map[string]interface{}{
		"query": "   ",
	})
	require.Equal(t, errcode.ErrInvalid, body.Code)
}

func TestAdHistoryEndpoint(t *testing.T) {
	env, cleanup := setupRouter(t)
	defer cleanup()

	adID := "ad-" + uuid.NewString()
	seedListing(t, env, adID, "first observation")
	seedListing(t, env, adID, "first observation")

	resp, body := doJSON(t, env.router, http.MethodGet, "/api/v1/ads/"+adID+"/history", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, 0, body.Code)
	snaps, ok := body.Data["snapshots"].([]interface{})
	require.True(t, ok)
	require.Len(t, snaps, 2)

	_, body = doJSON(t, env.router, http.MethodGet, "/api/v1/ads/ad-missing-"+uuid.NewString()+"/history", nil)
	require.Equal(t, errcode.ErrNotFound, body.Code)
}

func TestAdStatusEndpoint(t *testing.T) {
	env, cleanup := setupRouter(t)
	defer cleanup()

	adID := "ad-" + uuid.NewString()
	seedListing(t, env, adID, "about to be sold")

	resp, body := doJSON(t, env.router, http.MethodPut, "/api/v1/ads/"+adID+"/status", map[string]interface{}{
		"status": "sold",
	})
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, 0, body.Code)

	_, body = doJSON(t, env.router, http.MethodGet, "/api/v1/ads/"+adID, nil)
	require.Equal(t, 0, body.Code)
	require.Equal(t, "sold", body.Data["status"])

	_, body = doJSON(t, env.router, http.MethodPut, "/api/v1/ads/"+adID+"/status", map[string]interface{}{
		"status": "haunted",
	})
	require.Equal(t, errcode.ErrInvalid, body.Code)

	_, body = doJSON(t, env.router, http.MethodPut, "/api/v1/ads/ad-missing-"+uuid.NewString()+"/status", map[string]interface{}{
		"status": "removed",
	})
	require.Equal(t, errcode.ErrNotFound, body.Code)
}

func TestSegmentEndpointWithoutResolver(t *testing.T) {
	env, cleanup := setupRouter(t)
	defer cleanup()

	// The test router runs without a locations file, so segment
	// creation reports the dependency as unavailable.
	_, body := doJSON(t, env.router, http.MethodPost, "/api/v1/segments", map[string]interface{}{
		"city": "Haifa",
		"criteria": map[string]interface{}{
			"min_rooms": 3,
		},
	})
	require.Equal(t, errcode.ErrUnavailable, body.Code)
}

func TestArchiveEndpoint(t *testing.T) {
	env, cleanup := setupRouter(t)
	defer cleanup()

	key := "scrape-" + uuid.NewString() + ".json"
	payload := []byte(`{"items":[]}`)
	require.NoError(t, os.WriteFile(filepath.Join(env.archiveDir, key), payload, 0o644))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/archive/"+key, nil)
	resp := httptest.NewRecorder()
	env.router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, payload, resp.Body.Bytes())

	req = httptest.NewRequest(http.MethodGet, "/api/v1/archive/missing-"+uuid.NewString(), nil)
	resp = httptest.NewRecorder()
	env.router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusNotFound, resp.Code)
}

func TestIngestEndpointRejectsMissingFile(t *testing.T) {
	env, cleanup := setupRouter(t)
	defer cleanup()

	_, body := doJSON(t, env.router, http.MethodPost, "/api/v1/ingest", map[string]interface{}{
		"city": "Haifa",
	})
	require.Equal(t, errcode.ErrInvalid, body.Code)
}
