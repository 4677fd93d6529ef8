package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
)

func TestSecretNeverLeaks(t *testing.T) {
	secret := NewSecret("sk-super-secret")

	for _, format := range []string{"%v", "%s", "%#v", "%+v"} {
		if out := fmt.Sprintf(format, secret); strings.Contains(out, "sk-super-secret") {
			t.Errorf("Sprintf(%q) = %q leaked the value", format, out)
		}
	}

	type holder struct {
		Key Secret `json:"key"`
	}
	data, err := json.Marshal(holder{Key: secret})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if strings.Contains(string(data), "sk-super-secret") {
		t.Errorf("JSON = %s leaked the value", data)
	}
	if !strings.Contains(string(data), "[REDACTED]") {
		t.Errorf("JSON = %s is not redacted", data)
	}
}

func TestSecretExpose(t *testing.T) {
	secret := NewSecret("sk-super-secret")
	if secret.Expose() != "sk-super-secret" {
		t.Errorf("Expose() = %q", secret.Expose())
	}
	if secret.IsEmpty() {
		t.Error("IsEmpty() = true for a non-empty secret")
	}
	if !NewSecret("").IsEmpty() {
		t.Error("IsEmpty() = false for an empty secret")
	}
}
