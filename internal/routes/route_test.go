package routes

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chiller-selector/internal/auth"
	"chiller-selector/internal/config"
	"chiller-selector/internal/database"
	"chiller-selector/internal/logger"
	"chiller-selector/internal/services"
)

func newRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	db, err := database.NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, services.NewChillerStore(db).Migrate(context.Background()))

	return NewRouter(db, services.NewMemoryHistoryStore(), cfg, logger.Nop())
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func importBody(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(map[string]any{
		"text":      "Model,Tons,kW/ton\nYVAA0500,500,0.58\n",
		"ambient_f": 95,
	}))
	return &buf
}

func TestRouter_OpenWhenAuthDisabled(t *testing.T) {
	h := newRouter(t, &config.Config{Selector: config.SelectorConfig{RatedAmbients: []int{95, 105, 115}}})

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = serve(h, httptest.NewRequest(http.MethodPost, "/api/v1/import", importBody(t)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/api/v1/chillers", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "YVAA0500")

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/api/v1/chillers/search?capacity=480&ambient=95", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"best_option":{`)

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "chiller_searches_total")
}

func TestRouter_WriteRoutesNeedAdminToken(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	pubDer, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pubPath := filepath.Join(t.TempDir(), "jwt_public.pem")
	require.NoError(t, os.WriteFile(pubPath, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDer}), 0o644))

	h := newRouter(t, &config.Config{
		AuthEnabled:      true,
		JWTPublicKeyPath: pubPath,
		Selector:         config.SelectorConfig{RatedAmbients: []int{95, 105, 115}},
	})

	rec := serve(h, httptest.NewRequest(http.MethodPost, "/api/v1/import", importBody(t)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(h, httptest.NewRequest(http.MethodDelete, "/api/v1/folders?model_prefix=YVAA&folder_name=95%C2%B0F", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(h, httptest.NewRequest(http.MethodPost, "/api/v1/import/parse", importBody(t)))
	assert.Equal(t, http.StatusOK, rec.Code)

	signer := auth.NewJWTManagerFromKeys(key, &key.PublicKey, auth.DefaultIssuer)
	tok, _, err := signer.IssueToken("ops", time.Minute, []string{auth.RoleAdmin})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/import", importBody(t))
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = serve(h, req)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/folders?model_prefix=YVAA&folder_name=95%C2%B0F", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = serve(h, req)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}
