package brief

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func TestLoad_WithFrontmatter(t *testing.T) {
	b, err := Load(afero.NewOsFs(), filepath.Join("testdata", "blackbox.md"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Frontmatter.Name != "yega-backend" {
		t.Errorf("Name = %q, want %q", b.Frontmatter.Name, "yega-backend")
	}
	if b.Frontmatter.Pause != "2s" {
		t.Errorf("Pause = %q, want 2s", b.Frontmatter.Pause)
	}
	o := b.Overrides()
	if o == nil || o.Provider != "blackbox" || o.Model != "blackboxai" {
		t.Errorf("Overrides = %+v", o)
	}
	if got := strings.Join(b.SectionNames(), ","); got != "Convenciones,Resumen" {
		t.Errorf("sections = %s", got)
	}
	if !strings.HasPrefix(b.Context(), "# Resumen") {
		t.Errorf("context should start at the body, got %q", b.Context())
	}
}

func TestLoad_Plain(t *testing.T) {
	b, err := Load(afero.NewOsFs(), filepath.Join("testdata", "plain.md"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Overrides() != nil {
		t.Errorf("Overrides = %+v, want nil", b.Overrides())
	}
	if _, ok := b.Sections["Análisis de Contexto: backend"]; !ok {
		t.Errorf("sections = %v", b.Sections)
	}
}

func TestLoad_Missing(t *testing.T) {
	b, err := Load(afero.NewMemMapFs(), "/backend/blackbox.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Context() != "" || len(b.Sections) != 0 {
		t.Errorf("brief = %+v, want empty", b)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"unclosed", "---\nname: x\n# Body", "closing frontmatter"},
		{"bad yaml", "---\nname: [x\n---\n# Body", "parsing brief frontmatter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.in))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestInit(t *testing.T) {
	fs := afero.NewMemMapFs()
	created, err := Init(fs, "/app/backend")
	if err != nil || !created {
		t.Fatalf("Init = %v, %v", created, err)
	}
	data, err := afero.ReadFile(fs, "/app/backend/blackbox.md")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# Análisis de Contexto: backend") {
		t.Errorf("brief = %q", data)
	}

	if err := afero.WriteFile(fs, "/app/backend/blackbox.md", []byte("custom"), 0o644); err != nil {
		t.Fatal(err)
	}
	created, err = Init(fs, "/app/backend")
	if err != nil || created {
		t.Fatalf("second Init = %v, %v", created, err)
	}
	data, _ = afero.ReadFile(fs, "/app/backend/blackbox.md")
	if string(data) != "custom" {
		t.Error("Init overwrote an existing brief")
	}
}
