package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthEndpoint(t *testing.T) {
	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	healthHandler(w, req)

	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Status = %d, want 200", resp.StatusCode)
	}
	if string(body) != "OK" {
		t.Errorf("Body = %q, want OK", string(body))
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ROPROXY_TEST_VALUE", "set")

	if got := getEnv("ROPROXY_TEST_VALUE", "default"); got != "set" {
		t.Errorf("getEnv = %q, want set", got)
	}
	if got := getEnv("ROPROXY_TEST_UNSET", "default"); got != "default" {
		t.Errorf("getEnv = %q, want default", got)
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("ROPROXY_TEST_INT", "250")
	t.Setenv("ROPROXY_TEST_BAD_INT", "many")

	if got := getEnvInt("ROPROXY_TEST_INT", 1); got != 250 {
		t.Errorf("getEnvInt = %d, want 250", got)
	}
	if got := getEnvInt("ROPROXY_TEST_BAD_INT", 1); got != 1 {
		t.Errorf("getEnvInt with invalid value = %d, want fallback 1", got)
	}
	if got := getEnvInt("ROPROXY_TEST_UNSET", 7); got != 7 {
		t.Errorf("getEnvInt = %d, want fallback 7", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("ROPROXY_TEST_BOOL", "true")

	if got := getEnvBool("ROPROXY_TEST_BOOL", false); !got {
		t.Error("getEnvBool = false, want true")
	}
	if got := getEnvBool("ROPROXY_TEST_UNSET", true); !got {
		t.Error("getEnvBool = false, want fallback true")
	}
}
