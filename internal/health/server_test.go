package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUsers struct {
	n   int64
	err error
}

func (s stubUsers) CountUsers(context.Context) (int64, error) { return s.n, s.err }

type stubDialogues int

func (s stubDialogues) Len() int { return int(s) }

func serve(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestNewServer_Validation(t *testing.T) {
	_, err := NewServer("", stubUsers{}, stubDialogues(0))
	assert.Error(t, err)
	_, err = NewServer(":0", nil, stubDialogues(0))
	assert.Error(t, err)
}

func TestHealthz(t *testing.T) {
	s, err := NewServer(":0", stubUsers{}, stubDialogues(0))
	require.NoError(t, err)

	rec := serve(t, s, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestStats(t *testing.T) {
	s, err := NewServer(":0", stubUsers{n: 12}, stubDialogues(3))
	require.NoError(t, err)

	rec := serve(t, s, "/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var got Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, Stats{Users: 12, OpenDialogues: 3}, got)
}

func TestStats_StoreDown(t *testing.T) {
	s, err := NewServer(":0", stubUsers{err: errors.New("no primary")}, stubDialogues(0))
	require.NoError(t, err)

	rec := serve(t, s, "/stats")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	s, err := NewServer(":0", stubUsers{}, stubDialogues(0))
	require.NoError(t, err)

	assert.Equal(t, http.StatusNotFound, serve(t, s, "/nope").Code)
}
