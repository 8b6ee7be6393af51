package main

import (
	"os"
	"path/filepath"
	"testing"
)

// isolateEnv clears every variable the config layer reads so a developer's
// .env cannot leak into command tests.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"TELEGRAM_BOT_TOKEN", "YANDEX_API_KEY", "YANDEX_FOLDER_ID", "YANDEX_MODEL_URI",
		"GEMINI_API_KEY", "GEMINI_MODEL", "AI_ENDPOINT", "DATABASE_URL", "ALIASES_PATH", "ADMIN_ADDR",
	} {
		t.Setenv(name, "")
	}
	t.Setenv("AI_PROVIDER", "yandex")
	t.Setenv("FETCH_URLS", "false")
	t.Setenv("USE_BROWSER", "false")
	t.Setenv("ALLOW_PRIVATE_URLS", "false")
	t.Setenv("LOG_LEVEL", "disabled")
	t.Setenv("TEMPLATE_STORE_PATH", filepath.Join(t.TempDir(), "templates.json"))
}

// writeFile writes content under a fresh temp dir and returns its path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}
