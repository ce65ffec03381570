package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

// newStore returns an in-memory store and clears env vars that would leak
// into Resolve.
func newStore(t *testing.T) *Store {
	t.Helper()
	for _, k := range []string{"PROVIDER", "API_KEY", "MODEL", "BASE_URL"} {
		t.Setenv(EnvPrefix+k, "")
	}
	for _, k := range providerKeyEnv {
		t.Setenv(k, "")
	}
	return &Store{Fs: afero.NewMemMapFs(), Path: "/home/u/.config/yega/config.yaml"}
}

func TestSetAndLoad(t *testing.T) {
	s := newStore(t)

	if err := s.Set("provider", "blackbox"); err != nil {
		t.Fatalf("set error: %v", err)
	}
	cfg, err := s.Load()
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Provider != "blackbox" {
		t.Errorf("Provider = %q, want %q", cfg.Provider, "blackbox")
	}
	fi, err := s.Fs.Stat(s.Path)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", fi.Mode().Perm())
	}
}

func TestLoad_Missing(t *testing.T) {
	s := newStore(t)
	cfg, err := s.Load()
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if *cfg != (Config{}) {
		t.Errorf("cfg = %+v, want empty", cfg)
	}
}

func TestLoad_Invalid(t *testing.T) {
	s := newStore(t)
	if err := afero.WriteFile(s.Fs, s.Path, []byte("provider: [unterminated"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load(); err == nil || !strings.Contains(err.Error(), "parsing config") {
		t.Errorf("err = %v, want parse error", err)
	}
}

func TestList_MasksAPIKey(t *testing.T) {
	s := newStore(t)

	if err := s.Set("api-key", "sk-1234567890abcdef"); err != nil {
		t.Fatalf("set error: %v", err)
	}
	m, err := s.List()
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	key := m["api-key"]
	if key == "sk-1234567890abcdef" {
		t.Error("API key should be masked")
	}
	if !strings.HasPrefix(key, "sk-1") {
		t.Errorf("masked key should start with first 4 chars, got %q", key)
	}
	if !strings.HasSuffix(key, "cdef") {
		t.Errorf("masked key should end with last 4 chars, got %q", key)
	}
	if got := maskKey("short"); got != "*****" {
		t.Errorf("maskKey(short) = %q", got)
	}
}

func TestReset(t *testing.T) {
	s := newStore(t)

	if err := s.Set("provider", "openai"); err != nil {
		t.Fatalf("set error: %v", err)
	}
	if err := s.Reset(); err != nil {
		t.Fatalf("reset error: %v", err)
	}
	cfg, err := s.Load()
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Provider != "" {
		t.Errorf("Provider = %q after reset, want empty", cfg.Provider)
	}
	if err := s.Reset(); err != nil {
		t.Errorf("second reset error: %v", err)
	}
}

func TestSet_UnknownKey(t *testing.T) {
	s := newStore(t)

	err := s.Set("unknown-key", "value")
	if err == nil {
		t.Fatal("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "unknown config key") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "unknown config key")
	}
}

func TestResolve_Priority(t *testing.T) {
	s := newStore(t)

	if err := s.Set("provider", "from-config"); err != nil {
		t.Fatal(err)
	}
	t.Setenv("YEGA_PROVIDER", "from-env")
	brief := &Config{Provider: "from-brief"}
	flags := &Config{Provider: "from-cli"}

	tests := []struct {
		name  string
		flags *Config
		brief *Config
		want  string
	}{
		{"flag wins", flags, brief, "from-cli"},
		{"brief over env", nil, brief, "from-brief"},
		{"env over file", nil, nil, "from-env"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := s.Resolve(tt.flags, tt.brief)
			if err != nil {
				t.Fatalf("resolve error: %v", err)
			}
			if r.Provider != tt.want {
				t.Errorf("Provider = %q, want %q", r.Provider, tt.want)
			}
		})
	}
}

func TestResolve_ProviderKeyFallback(t *testing.T) {
	s := newStore(t)
	t.Setenv("BLACKBOX_API_KEY", "bb-key")

	r, err := s.Resolve(&Config{Provider: "Blackbox"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if r.Provider != "blackbox" || r.APIKey != "bb-key" {
		t.Errorf("resolved = %+v", r)
	}

	t.Setenv("YEGA_API_KEY", "generic")
	r, err = s.Resolve(&Config{Provider: "blackbox"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if r.APIKey != "generic" {
		t.Errorf("APIKey = %q, want the YEGA_API_KEY value", r.APIKey)
	}
}

func TestDefaultStore(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	s, err := DefaultStore()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(home, ".config", "yega", "config.yaml"); s.Path != want {
		t.Errorf("Path = %q, want %q", s.Path, want)
	}
	if err := s.Set("model", "blackboxai"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(s.Path); err != nil {
		t.Errorf("config not written to disk: %v", err)
	}
}
