package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/jonathan/vacancy-templater/internal/fetch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testTemplate = "Position: [Position]\nCompany: [Company]"
	testVacancy  = "Position: Engineer\nCompany: Acme\n\nWe build things."
)

func executeFill(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newFillCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func completionServer(t *testing.T, status int, text string, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "Api-Key test-key", r.Header.Get("Authorization"))
		if status != http.StatusOK {
			http.Error(w, "upstream exploded", status)
			return
		}
		payload, _ := json.Marshal(text)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"result":{"alternatives":[{"message":{"role":"assistant","text":`+
			string(payload)+`},"status":"ALTERNATIVE_STATUS_FINAL"}]}}`)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestFillCommand_Deterministic(t *testing.T) {
	isolateEnv(t)
	tpl := writeFile(t, "template.txt", testTemplate+"\n")
	vacancy := writeFile(t, "vacancy.txt", testVacancy)

	stdout, _, err := executeFill(t, "--template", tpl, "--vacancy", vacancy)
	require.NoError(t, err)
	assert.Equal(t, "Position: Engineer\nCompany: Acme\n", stdout)
}

func TestFillCommand_VerboseSummary(t *testing.T) {
	isolateEnv(t)
	tpl := writeFile(t, "template.txt", testTemplate)
	vacancy := writeFile(t, "vacancy.txt", testVacancy)

	_, stderr, err := executeFill(t, "--template", tpl, "--vacancy", vacancy, "-v")
	require.NoError(t, err)
	assert.Contains(t, stderr, "deterministic")
	assert.Contains(t, stderr, "Position")
	assert.Contains(t, stderr, "Engineer")
}

func TestFillCommand_YandexSuccess(t *testing.T) {
	isolateEnv(t)
	var calls atomic.Int32
	server := completionServer(t, http.StatusOK, "Position: <b>Engineer</b>\nCompany: Acme", &calls)
	t.Setenv("YANDEX_API_KEY", "test-key")
	t.Setenv("YANDEX_FOLDER_ID", "folder-1")
	t.Setenv("AI_ENDPOINT", server.URL)

	tpl := writeFile(t, "template.txt", testTemplate)
	vacancy := writeFile(t, "vacancy.txt", testVacancy)

	stdout, _, err := executeFill(t, "--template", tpl, "--vacancy", vacancy)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "Position: <b>Engineer</b>\nCompany: Acme\n", stdout)
}

func TestFillCommand_YandexFailureFallsBack(t *testing.T) {
	isolateEnv(t)
	var calls atomic.Int32
	server := completionServer(t, http.StatusInternalServerError, "", &calls)
	t.Setenv("YANDEX_API_KEY", "test-key")
	t.Setenv("YANDEX_FOLDER_ID", "folder-1")
	t.Setenv("AI_ENDPOINT", server.URL)

	tpl := writeFile(t, "template.txt", testTemplate)
	vacancy := writeFile(t, "vacancy.txt", testVacancy)

	stdout, _, err := executeFill(t, "--template", tpl, "--vacancy", vacancy)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "Position: Engineer\nCompany: Acme\n", stdout)
}

func TestFillCommand_NoAISkipsModel(t *testing.T) {
	isolateEnv(t)
	var calls atomic.Int32
	server := completionServer(t, http.StatusOK, "model text", &calls)
	t.Setenv("YANDEX_API_KEY", "test-key")
	t.Setenv("YANDEX_FOLDER_ID", "folder-1")
	t.Setenv("AI_ENDPOINT", server.URL)

	tpl := writeFile(t, "template.txt", testTemplate)
	vacancy := writeFile(t, "vacancy.txt", testVacancy)

	stdout, _, err := executeFill(t, "--template", tpl, "--vacancy", vacancy, "--no-ai")
	require.NoError(t, err)
	assert.Zero(t, calls.Load())
	assert.Equal(t, "Position: Engineer\nCompany: Acme\n", stdout)
}

func TestFillCommand_VacancyURL(t *testing.T) {
	isolateEnv(t)
	t.Setenv("ALLOW_PRIVATE_URLS", "true")
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, `<html><body><main><p>Position: Engineer</p><p>Company: Acme</p></main></body></html>`)
	}))
	t.Cleanup(page.Close)

	tpl := writeFile(t, "template.txt", testTemplate)

	stdout, _, err := executeFill(t, "--template", tpl, "--vacancy-url", page.URL)
	require.NoError(t, err)
	assert.Equal(t, "Position: Engineer\nCompany: Acme\n", stdout)
}

func TestFillCommand_VacancyURLRefusesLoopback(t *testing.T) {
	isolateEnv(t)
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `<html><body><main><p>Position: Engineer</p></main></body></html>`)
	}))
	t.Cleanup(page.Close)

	tpl := writeFile(t, "template.txt", testTemplate)

	_, _, err := executeFill(t, "--template", tpl, "--vacancy-url", page.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch vacancy")
	assert.ErrorIs(t, err, fetch.ErrBlockedAddress)
}

func TestFillCommand_Errors(t *testing.T) {
	isolateEnv(t)
	tpl := writeFile(t, "template.txt", testTemplate)
	empty := writeFile(t, "empty.txt", "  \n")
	vacancy := writeFile(t, "vacancy.txt", testVacancy)

	tests := []struct {
		name        string
		args        []string
		errorString string
	}{
		{
			name:        "missing --template",
			args:        []string{"--vacancy", vacancy},
			errorString: "required flag(s) \"template\" not set",
		},
		{
			name:        "no vacancy input",
			args:        []string{"--template", tpl},
			errorString: "either --vacancy or --vacancy-url must be provided",
		},
		{
			name:        "both vacancy inputs",
			args:        []string{"--template", tpl, "--vacancy", vacancy, "--vacancy-url", "http://example.com"},
			errorString: "none of the others can be",
		},
		{
			name:        "empty template",
			args:        []string{"--template", empty, "--vacancy", vacancy},
			errorString: "is empty",
		},
		{
			name:        "missing template file",
			args:        []string{"--template", tpl + ".missing", "--vacancy", vacancy},
			errorString: "failed to read template",
		},
		{
			name:        "missing vacancy file",
			args:        []string{"--template", tpl, "--vacancy", vacancy + ".missing"},
			errorString: "file not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := executeFill(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorString)
		})
	}
}

func TestFillCommand_TruncatedCompletionFallsBack(t *testing.T) {
	isolateEnv(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"result":{"alternatives":[{"message":{"role":"assistant","text":"Position: Engin"},"status":"ALTERNATIVE_STATUS_TRUNCATED_FINAL"}]}}`)
	}))
	t.Cleanup(server.Close)
	t.Setenv("YANDEX_API_KEY", "test-key")
	t.Setenv("YANDEX_FOLDER_ID", "folder-1")
	t.Setenv("AI_ENDPOINT", server.URL)

	tpl := writeFile(t, "template.txt", testTemplate)
	vacancy := writeFile(t, "vacancy.txt", testVacancy)

	stdout, _, err := executeFill(t, "--template", tpl, "--vacancy", vacancy)
	require.NoError(t, err)
	assert.Equal(t, "Position: Engineer\nCompany: Acme\n", stdout)
}

func TestFillCommand_VerboseListsSynonymsForUnfilled(t *testing.T) {
	isolateEnv(t)
	tpl := writeFile(t, "template.txt", "[Position] for [Salary]")
	vacancy := writeFile(t, "vacancy.txt", testVacancy)

	stdout, stderr, err := executeFill(t, "--template", tpl, "--vacancy", vacancy, "-v")
	require.NoError(t, err)
	assert.Equal(t, "Engineer for [Salary]\n", stdout)
	assert.Contains(t, stderr, "✗ [Salary] (looked for: salary, compensation")
}
