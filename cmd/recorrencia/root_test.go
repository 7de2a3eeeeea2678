package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tecmax-dev/sisvida-sub017/internal/auth"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPreview_Table(t *testing.T) {
	out, err := run(t, "preview", "--start", "2025-01-01", "--frequency", "weekly", "--sessions", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "01/01/2025")
	assert.Contains(t, out, "08/01/2025")
	assert.Contains(t, out, "15/01/2025")
	assert.Contains(t, out, "quarta")
}

func TestPreview_JSONDateLimit(t *testing.T) {
	out, err := run(t, "preview", "--start", "2025-01-01", "--limit", "date", "--end-date", "2025-01-10", "--format", "json")
	require.NoError(t, err)
	var got struct {
		Dates []string `json:"dates"`
		Count int      `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []string{"2025-01-01", "2025-01-08"}, got.Dates)
	assert.Equal(t, 2, got.Count)
}

func TestPreview_Errors(t *testing.T) {
	_, err := run(t, "preview", "--start", "01/01/2025")
	assert.Error(t, err)
	_, err = run(t, "preview", "--start", "2025-01-01", "--frequency", "daily")
	assert.Error(t, err)
	_, err = run(t, "preview", "--start", "2025-01-01", "--limit", "date")
	assert.Error(t, err)
	_, err = run(t, "preview")
	assert.Error(t, err)
}

func TestRRule(t *testing.T) {
	out, err := run(t, "rrule", "--start", "2025-01-01", "--frequency", "biweekly", "--sessions", "4")
	require.NoError(t, err)
	line := strings.TrimSpace(out)
	assert.True(t, strings.HasPrefix(line, "RRULE:"), line)
	assert.Contains(t, line, "INTERVAL=2")
	assert.Contains(t, line, "COUNT=4")
}

func TestToken(t *testing.T) {
	secret := "cli-test-secret-with-at-least-32-chars!!"
	t.Setenv("JWT_SECRET", secret)
	t.Setenv("ENV", "development")
	out, err := run(t, "token", "--user", "u-1", "--clinic", "c-1", "--role", auth.RoleSuperAdmin)
	require.NoError(t, err)

	claims, err := auth.ParseJWT([]byte(secret), strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, auth.RoleSuperAdmin, claims.Role)
	require.NotNil(t, claims.ClinicID)
	assert.Equal(t, "c-1", *claims.ClinicID)
}

func TestToken_RefusedInProduction(t *testing.T) {
	t.Setenv("ENV", "production")
	_, err := run(t, "token", "--user", "u-1")
	assert.Error(t, err)
}

func TestSeed_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := run(t, "seed")
	assert.ErrorContains(t, err, "DATABASE_URL")
}
