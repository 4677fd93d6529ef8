package keypool

import (
	"errors"
	"testing"
)

func TestLoadArrayShape(t *testing.T) {
	src := []byte(`[
		{"name": "primary", "key": "sk-1", "tier": "paid"},
		{"name": "backup", "key": "sk-2"}
	]`)

	p := New(WithEnvLookup(noEnv))
	n, err := p.Load("openai", src)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if n != 2 {
		t.Fatalf("Load() = %d, want 2", n)
	}

	creds := p.Credentials("openai")
	if len(creds) != 2 {
		t.Fatalf("len(Credentials()) = %d, want 2", len(creds))
	}
	for _, cred := range creds {
		if !cred.Valid {
			t.Errorf("credential %q loaded invalid", cred.Name)
		}
		if cred.ErrorCount != 0 {
			t.Errorf("credential %q loaded with ErrorCount = %d", cred.Name, cred.ErrorCount)
		}
	}
	if creds[0].Name != "primary" || creds[1].Name != "backup" {
		t.Errorf("names = %q, %q, want primary, backup", creds[0].Name, creds[1].Name)
	}
	if creds[0].Key.Expose() != "sk-1" {
		t.Errorf("Key = %q, want sk-1", creds[0].Key.Expose())
	}
}

func TestLoadSingleKeyShape(t *testing.T) {
	p := New(WithEnvLookup(noEnv))
	n, err := p.Load("anthropic", []byte(`{"api_key": "sk-solo"}`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if n != 1 {
		t.Fatalf("Load() = %d, want 1", n)
	}

	creds := p.Credentials("anthropic")
	if len(creds) != 1 {
		t.Fatalf("len(Credentials()) = %d, want 1", len(creds))
	}
	if !creds[0].Valid {
		t.Error("credential loaded invalid")
	}
	if creds[0].Key.Expose() != "sk-solo" {
		t.Errorf("Key = %q, want sk-solo", creds[0].Key.Expose())
	}
	if creds[0].Name == "" {
		t.Error("single-key credential has no generated name")
	}
}

func TestLoadMalformed(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"not JSON", `not json at all`},
		{"bare string", `"sk-123"`},
		{"number", `42`},
		{"object without api_key", `{"token": "sk-1"}`},
		{"array entry missing key", `[{"name": "k1"}]`},
		{"array of strings", `["sk-1", "sk-2"]`},
		{"empty input", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(WithEnvLookup(noEnv))
			if _, err := p.Load("openai", []byte(tt.src)); !errors.Is(err, ErrMalformedKeySource) {
				t.Errorf("Load(%q) error = %v, want ErrMalformedKeySource", tt.src, err)
			}
		})
	}
}

func TestLoadEmptyArray(t *testing.T) {
	p := New(WithEnvLookup(noEnv))
	n, err := p.Load("openai", []byte(`[]`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if n != 0 {
		t.Errorf("Load() = %d, want 0", n)
	}
	if p.HasAnyValid("openai") {
		t.Error("HasAnyValid() = true after loading an empty array")
	}
}
