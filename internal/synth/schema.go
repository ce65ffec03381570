// Package synth renders the Mongoose model, Express controller and route
// module for an endpoint. Every function here is a pure function of the
// endpoint config and the naming set computed once by the caller.
package synth

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"text/template"

	"github.com/yega/scaffold/internal/endpoint"
	"github.com/yega/scaffold/internal/naming"
)

var templates = template.Must(template.New("synth").Parse(handlerBlocks))

func init() {
	for name, text := range map[string]string{
		"model":      modelTemplate,
		"controller": controllerTemplate,
		"getAll":     getAllTemplate,
		"getById":    getByIDTemplate,
		"create":     createTemplate,
		"update":     updateTemplate,
		"delete":     deleteTemplate,
		"custom":     customTemplate,
		"routes":     routesTemplate,
	} {
		template.Must(templates.New(name).Parse(text))
	}
}

// render executes a named template. The templates are compiled in and only
// receive values built in this package, so a failure is a programming error.
func render(name string, data any) string {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		panic("synth: rendering " + name + ": " + err.Error())
	}
	return buf.String()
}

type modelData struct {
	Model      string
	Fields     string
	Timestamps bool
	Indexes    []string
}

// Model renders the schema module for cfg. Fields keep their declared order.
func Model(cfg *endpoint.Config, names naming.Set) string {
	clauses := make([]string, len(cfg.Fields))
	for i, f := range cfg.Fields {
		clauses[i] = FieldClause(f)
	}
	indexes := make([]string, len(cfg.Indexes))
	for i, ix := range cfg.Indexes {
		indexes[i] = IndexJSON(ix)
	}
	return render("model", modelData{
		Model:      names.Model(),
		Fields:     strings.Join(clauses, ",\n"),
		Timestamps: cfg.HasTimestamps(),
		Indexes:    indexes,
	})
}

// FieldClause renders one schema entry, e.g.
//
//	nombre: { type: String, required: [true, 'nombre es requerido'], trim: true }
func FieldClause(f endpoint.Field) string {
	var b strings.Builder
	b.WriteString("  ")
	b.WriteString(f.Name)
	b.WriteString(": { ")

	switch f.Type {
	case endpoint.TypeObjectID:
		// A missing ref is rendered as-is; Validate rejects it earlier.
		ref := f.Ref
		if ref == "" {
			ref = "undefined"
		}
		b.WriteString("type: mongoose.Schema.Types.ObjectId, ref: " + endpoint.Quote(ref))
	case endpoint.TypeArray:
		b.WriteString("type: [" + f.ElementType() + "]")
	default:
		b.WriteString("type: " + string(f.Type))
	}

	if f.Required {
		b.WriteString(", required: [true, " + endpoint.Quote(f.Name+" es requerido") + "]")
	}
	if f.Unique {
		b.WriteString(", unique: true")
	}
	if f.Default != nil {
		b.WriteString(", default: " + f.Default.JS())
	}
	bound := func(key string, v *float64, msg func(string) string) {
		if v == nil {
			return
		}
		n := endpoint.FormatNumber(*v)
		b.WriteString(", " + key + ": [" + n + ", " + endpoint.Quote(f.Name+" "+msg(n)) + "]")
	}
	bound("min", f.Min, func(n string) string { return "debe ser mayor a " + n })
	bound("max", f.Max, func(n string) string { return "debe ser menor a " + n })
	bound("minlength", f.MinLength, func(n string) string { return "debe tener al menos " + n + " caracteres" })
	bound("maxlength", f.MaxLength, func(n string) string { return "no puede exceder " + n + " caracteres" })
	if len(f.Enum) > 0 {
		vals := make([]string, len(f.Enum))
		for i, v := range f.Enum {
			vals[i] = endpoint.Quote(v)
		}
		b.WriteString(", enum: [" + strings.Join(vals, ", ") + "]")
	}
	if f.Match != "" {
		b.WriteString(", match: [" + f.Match + ", " + endpoint.Quote(f.Name+" tiene formato inválido") + "]")
	}
	if f.Trim {
		b.WriteString(", trim: true")
	}
	if f.Lowercase {
		b.WriteString(", lowercase: true")
	}
	if f.Uppercase {
		b.WriteString(", uppercase: true")
	}

	b.WriteString(" }")
	return b.String()
}

// IndexJSON renders an index the way JSON.stringify would, keeping key order.
func IndexJSON(ix endpoint.Index) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range ix {
		if i > 0 {
			b.WriteByte(',')
		}
		key, _ := json.Marshal(k.Field)
		b.Write(key)
		b.WriteByte(':')
		if k.Type != "" {
			typ, _ := json.Marshal(k.Type)
			b.Write(typ)
			continue
		}
		b.WriteString(strconv.Itoa(k.Order))
	}
	b.WriteByte('}')
	return b.String()
}
