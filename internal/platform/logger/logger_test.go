package logger

import "testing"

func TestSanitizeKVsRedactsSecrets(t *testing.T) {
	got := sanitizeKVs([]interface{}{
		"api_key", "sk-123",
		"MINIO_SECRET_KEY", "abc",
		"model", "qwen3:1.7b",
		"header", "Bearer abc.def",
		"dangling",
	})
	want := []interface{}{
		"api_key", "[REDACTED]",
		"MINIO_SECRET_KEY", "[REDACTED]",
		"model", "qwen3:1.7b",
		"header", "[REDACTED]",
		"dangling",
	}
	if len(got) != len(want) {
		t.Fatalf("len=%d want=%d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("kv[%d]=%v want=%v", i, got[i], want[i])
		}
	}
}

func TestSanitizeValueNestedMap(t *testing.T) {
	out, ok := sanitizeValue("cfg", map[string]interface{}{"password": "x", "host": "h"}).(map[string]interface{})
	if !ok {
		t.Fatalf("expected map")
	}
	if out["password"] != "[REDACTED]" || out["host"] != "h" {
		t.Fatalf("unexpected map: %#v", out)
	}
}

func TestNopLogger(t *testing.T) {
	l := Nop().With("component", "test")
	l.Info("hello", "k", "v")
	l.Sync()
}
