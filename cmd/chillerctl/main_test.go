package main

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/csv"
	"encoding/pem"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chiller-selector/internal/auth"
)

const ratingTable = "Model\tTons\tEnergy Efficiency (kW/ton)\tUSGPM\n" +
	"ACHX-B 95S\t95\t0.62\t228\n" +
	"ACHX-B 100S\t100\t0.60\t240\n" +
	"\t104\t0.58\t250\n"

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(dir, "chillers.db"))
	t.Setenv("REDIS_URL", "")
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("RATED_AMBIENTS", "95,105,115")
	return dir
}

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(append([]string{"--no-color"}, args...))
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestImportPreviewThenImportThenSearch(t *testing.T) {
	dir := setupEnv(t)

	out, _, err := run(t, ratingTable, "import", "--ambient", "105", "--ewt", "12", "--lwt", "7", "--preview")
	require.NoError(t, err)
	assert.Contains(t, out, "ACHX-B 100S")
	assert.Contains(t, out, "Row 3: Model is required")
	assert.Contains(t, out, `2 of 3 rows valid, folder "105°F 12°C/7°C"`)

	out, _, err = run(t, "", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "chillers:      0")

	tablePath := filepath.Join(dir, "achx.tsv")
	require.NoError(t, os.WriteFile(tablePath, []byte(ratingTable), 0o644))
	out, _, err = run(t, "", "import", "--file", tablePath, "--ambient", "105", "--ewt", "12", "--lwt", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "Record 3 skipped: Model is required")
	assert.Contains(t, out, `Imported 2 chillers into "105°F 12°C/7°C"`)

	csvPath := filepath.Join(dir, "compare.csv")
	out, _, err = run(t, "", "search", "--capacity", "99", "--ambient", "105", "--csv", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Best option: ACHX-B 100S")
	assert.Contains(t, out, "Dunham Bush")

	f, err := os.Open(csvPath)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	out, _, err = run(t, "", "search", "--capacity", "99", "--ambient", "95")
	require.NoError(t, err)
	assert.Contains(t, out, "No chillers matched")
	assert.Contains(t, out, "105°F: 2 chiller(s)")

	out, _, err = run(t, "", "stats", "--folders")
	require.NoError(t, err)
	assert.Contains(t, out, "chillers:      2")
	assert.Contains(t, out, "ACHX-B")
}

func TestImportRejectsUnratedAmbient(t *testing.T) {
	setupEnv(t)

	_, _, err := run(t, ratingTable, "import", "--ambient", "100")
	require.Error(t, err)
	assert.Equal(t, "--ambient must be one of [95 105 115]", err.Error())

	_, _, err = run(t, "   ", "import", "--ambient", "95")
	assert.EqualError(t, err, "nothing to import")
}

func TestSearchRequiresFlags(t *testing.T) {
	setupEnv(t)
	_, _, err := run(t, "", "search", "--ambient", "105")
	assert.Error(t, err)
}

func TestTokenCommand(t *testing.T) {
	dir := setupEnv(t)

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	privPath := filepath.Join(dir, "jwt_private.pem")
	pubPath := filepath.Join(dir, "jwt_public.pem")
	pubDer, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(privPath, pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}), 0o600))
	require.NoError(t, os.WriteFile(pubPath, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDer}), 0o644))
	t.Setenv("JWT_PRIVATE_KEY_PATH", privPath)
	t.Setenv("JWT_PUBLIC_KEY_PATH", pubPath)

	out, errOut, err := run(t, "", "token", "--subject", "ops@example.com")
	require.NoError(t, err)
	assert.Contains(t, errOut, "expires")

	verifier, err := auth.NewJWTManager("", pubPath, auth.DefaultIssuer)
	require.NoError(t, err)
	claims, err := verifier.VerifyToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", claims["sub"])
	assert.True(t, auth.HasRole(claims, auth.RoleAdmin))
}
