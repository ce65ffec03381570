package endpoint

import (
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

const promocionYAML = `
name: promocion
description: Sistema de promociones
fields:
  - name: titulo
    type: String
    required: true
    maxlength: 200
  - name: tiendaId
    type: ObjectId
    ref: Usuario
  - name: tipo
    type: String
    enum: [descuento, envio_gratis, combo]
  - name: usos_maximos
    type: Number
    default: null
  - name: usos_actuales
    type: Number
    default: 0
  - name: icono
    type: String
    default: default-icon.png
  - name: activo
    type: Boolean
    default: true
  - name: email
    type: String
    match: /^\S+@\S+$/
operations: [getAll, create, aplicarPromocion]
roles: [tienda, administrador]
indexes:
  - {tiendaId: 1, activo: -1}
  - {tipo: 1}
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(promocionYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Name != "promocion" {
		t.Errorf("Name = %q, want %q", cfg.Name, "promocion")
	}
	if !cfg.Auth {
		t.Error("Auth should default to true")
	}
	if !cfg.HasTimestamps() {
		t.Error("timestamps should default to true")
	}
	if len(cfg.Fields) != 8 {
		t.Fatalf("got %d fields, want 8", len(cfg.Fields))
	}

	wantOps := []Operation{GetAll, Create, Custom("aplicarPromocion")}
	if len(cfg.Operations) != len(wantOps) {
		t.Fatalf("operations = %+v, want %+v", cfg.Operations, wantOps)
	}
	for i, op := range wantOps {
		if cfg.Operations[i] != op {
			t.Errorf("operation %d = %+v, want %+v", i, cfg.Operations[i], op)
		}
	}

	if got := cfg.Fields[0].MaxLength; got == nil || *got != 200 {
		t.Errorf("titulo maxlength = %v, want 200", got)
	}
	if cfg.Fields[1].Ref != "Usuario" {
		t.Errorf("tiendaId ref = %q, want Usuario", cfg.Fields[1].Ref)
	}
	if strings.Join(cfg.Fields[2].Enum, ",") != "descuento,envio_gratis,combo" {
		t.Errorf("enum = %v", cfg.Fields[2].Enum)
	}
	if cfg.Fields[7].Match != `/^\S+@\S+$/` {
		t.Errorf("match = %q", cfg.Fields[7].Match)
	}
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(promocionYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tests := []struct {
		field string
		want  string
	}{
		{"titulo", ""},
		{"usos_maximos", "null"},
		{"usos_actuales", "0"},
		{"icono", "'default-icon.png'"},
		{"activo", "true"},
	}
	byName := map[string]Field{}
	for _, f := range cfg.Fields {
		byName[f.Name] = f
	}
	for _, tt := range tests {
		f := byName[tt.field]
		got := ""
		if f.Default != nil {
			got = f.Default.JS()
		}
		if got != tt.want {
			t.Errorf("%s default = %q, want %q", tt.field, got, tt.want)
		}
	}
}

func TestParse_IndexOrder(t *testing.T) {
	cfg, err := Parse([]byte(promocionYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Indexes) != 2 {
		t.Fatalf("got %d indexes, want 2", len(cfg.Indexes))
	}
	first := cfg.Indexes[0]
	if len(first) != 2 || first[0] != (IndexKey{Field: "tiendaId", Order: 1}) || first[1] != (IndexKey{Field: "activo", Order: -1}) {
		t.Errorf("first index = %+v, want tiendaId:1, activo:-1 in order", first)
	}
}

func TestParse_IndexTypes(t *testing.T) {
	doc := "name: articulo\nfields:\n  - {name: titulo, type: String}\n" +
		"indexes:\n  - {titulo: text}\n  - {ubicacion: 2dsphere, activo: 1}\n"
	cfg, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Index{
		{{Field: "titulo", Type: "text"}},
		{{Field: "ubicacion", Type: "2dsphere"}, {Field: "activo", Order: 1}},
	}
	for i, ix := range want {
		if len(cfg.Indexes[i]) != len(ix) {
			t.Fatalf("index %d = %+v, want %+v", i, cfg.Indexes[i], ix)
		}
		for j := range ix {
			if cfg.Indexes[i][j] != ix[j] {
				t.Errorf("index %d key %d = %+v, want %+v", i, j, cfg.Indexes[i][j], ix[j])
			}
		}
	}

	data, err := Marshal(cfg)
	if err != nil {
		t.Fatal(err)
	}
	again, err := Parse(data)
	if err != nil {
		t.Fatalf("reparse: %v\n%s", err, data)
	}
	if again.Indexes[0][0] != (IndexKey{Field: "titulo", Type: "text"}) {
		t.Errorf("reparsed index = %+v", again.Indexes[0])
	}
}

func TestParse_IndexValueErrors(t *testing.T) {
	for _, doc := range []string{
		"name: a\nindexes:\n  - {x: [1]}\n",
		"name: a\nindexes:\n  - {x: 1.5}\n",
	} {
		if _, err := Parse([]byte(doc)); err == nil || !strings.Contains(err.Error(), `index key "x"`) {
			t.Errorf("Parse(%q) err = %v", doc, err)
		}
	}
}

func TestParse_AuthFalseAndCRUDDefault(t *testing.T) {
	cfg, err := Parse([]byte("name: nota\nauth: false\nfields:\n  - {name: texto, type: String}\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Auth {
		t.Error("Auth = true, want false")
	}
	if len(cfg.Operations) != 5 || cfg.Operations[0] != GetAll || cfg.Operations[4] != Delete {
		t.Errorf("operations = %+v, want CRUD", cfg.Operations)
	}
}

func TestParse_BadDefault(t *testing.T) {
	_, err := Parse([]byte("name: x\nfields:\n  - name: a\n    type: String\n    default: [1, 2]\n"))
	if err == nil {
		t.Fatal("expected error for non-scalar default")
	}
	if !strings.Contains(err.Error(), "scalar") {
		t.Errorf("error = %q, want to mention scalar", err.Error())
	}
}

func TestLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/cfg/promocion.yaml", []byte(promocionYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(fs, "/cfg/promocion.yaml")
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Name != "promocion" {
		t.Errorf("Name = %q", cfg.Name)
	}

	if _, err := Load(fs, "/cfg/missing.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestMarshal_PresetReparses(t *testing.T) {
	orig, err := Preset("promocion")
	if err != nil {
		t.Fatal(err)
	}
	data, err := Marshal(orig)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	got, err := Parse(data)
	if err != nil {
		t.Fatalf("parse error: %v\n%s", err, data)
	}
	if len(got.Fields) != len(orig.Fields) {
		t.Fatalf("got %d fields, want %d", len(got.Fields), len(orig.Fields))
	}
	usos := got.Fields[9]
	if usos.Name != "usos_maximos" || usos.Default == nil || usos.Default.JS() != "null" {
		t.Errorf("usos_maximos = %+v, want null default preserved", usos)
	}
	if got.Operations[5] != Custom("aplicarPromocion") {
		t.Errorf("custom op = %+v", got.Operations[5])
	}
	if got.Indexes[1][1].Field != "fecha_fin" {
		t.Errorf("index order lost: %+v", got.Indexes[1])
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"valid", Config{Name: "x", Fields: []Field{{Name: "a", Type: TypeString}}, Operations: CRUD()}, ""},
		{"missing name", Config{Name: "  "}, "name is required"},
		{"duplicate field", Config{Name: "x", Fields: []Field{{Name: "a", Type: TypeString}, {Name: "a", Type: TypeNumber}}}, "duplicate name"},
		{"empty field name", Config{Name: "x", Fields: []Field{{Type: TypeString}}}, "field 0: name is required"},
		{"unknown type", Config{Name: "x", Fields: []Field{{Name: "a", Type: "Decimal"}}}, "unknown type"},
		{"objectid without ref", Config{Name: "x", Fields: []Field{{Name: "a", Type: TypeObjectID}}}, "ObjectId requires ref"},
		{"duplicate operation", Config{Name: "x", Operations: []Operation{GetAll, GetAll}}, "listed twice"},
		{"duplicate custom", Config{Name: "x", Operations: []Operation{Custom("a"), Custom("a")}}, "listed twice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error %v should wrap ErrInvalidConfig", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestPresets_Valid(t *testing.T) {
	for _, name := range PresetNames() {
		cfg, err := Preset(name)
		if err != nil {
			t.Fatal(err)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("preset %s: %v", name, err)
		}
	}
	if err := Basic("zona").Validate(); err != nil {
		t.Errorf("basic: %v", err)
	}
	if _, err := Preset("nope"); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("unknown preset error = %v, want ErrInvalidConfig", err)
	}
}

func TestParseOperation(t *testing.T) {
	tests := []struct {
		in   string
		want Operation
	}{
		{"getAll", GetAll},
		{"getById", GetByID},
		{" delete ", Delete},
		{"aplicarPromocion", Custom("aplicarPromocion")},
	}
	for _, tt := range tests {
		if got := ParseOperation(tt.in); got != tt.want {
			t.Errorf("ParseOperation(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
		if got := tt.want.String(); got != strings.TrimSpace(tt.in) {
			t.Errorf("String() = %q, want %q", got, strings.TrimSpace(tt.in))
		}
	}
}

func TestQuote(t *testing.T) {
	if got := Quote(`it's`); got != `'it\'s'` {
		t.Errorf("Quote = %q", got)
	}
	if got := FormatNumber(0.5); got != "0.5" {
		t.Errorf("FormatNumber(0.5) = %q", got)
	}
}
