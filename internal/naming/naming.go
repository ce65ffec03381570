// Package naming derives the identifier spellings shared by every artifact
// generated for one endpoint.
package naming

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Set holds the three case variants of an entity name. It is computed once
// per endpoint and passed to every synthesizer.
type Set struct {
	Pascal string
	Camel  string
	Kebab  string
}

// New derives the naming set for a free-text entity name.
// e.g., "metodo pago" -> {MetodoPago, metodoPago, metodo-pago}
func New(name string) Set {
	pascal := ToPascalCase(name)
	return Set{
		Pascal: pascal,
		Camel:  lowerFirst(pascal),
		Kebab:  ToKebabCase(name),
	}
}

// Model is the Mongoose model identifier and file stem.
func (s Set) Model() string { return s.Pascal }

// Controller is the controller module name, e.g. "categoriaController".
func (s Set) Controller() string { return s.Camel + "Controller" }

// RouterVar is the variable the bootstrap file binds the router to.
func (s Set) RouterVar() string { return s.Camel + "Routes" }

// RouteFile is the router module name, e.g. "categoriaRoutes".
func (s Set) RouteFile() string { return s.Kebab + "Routes" }

// APIPrefix is the URL prefix the router is mounted at.
func (s Set) APIPrefix() string { return "/api/" + s.Kebab + "s" }

// ToPascalCase capitalizes each whitespace-delimited word and joins them.
// Only the first rune of a word changes, so "miEntidad" -> "MiEntidad".
func ToPascalCase(s string) string {
	var b strings.Builder
	for _, word := range strings.Fields(s) {
		b.WriteString(upperFirst(word))
	}
	return b.String()
}

// ToCamelCase is ToPascalCase with the first rune lower-cased.
func ToCamelCase(s string) string {
	return lowerFirst(ToPascalCase(s))
}

// ToKebabCase lower-cases s, splitting on whitespace and on lower->upper
// boundaries. e.g., "aplicarPromocion" -> "aplicar-promocion"
func ToKebabCase(s string) string {
	var b strings.Builder
	var prev rune
	inSpace := false
	for _, r := range strings.TrimSpace(s) {
		if unicode.IsSpace(r) {
			inSpace = true
			continue
		}
		if inSpace {
			b.WriteByte('-')
			inSpace = false
		} else if unicode.IsLower(prev) && unicode.IsUpper(r) {
			b.WriteByte('-')
		}
		b.WriteRune(unicode.ToLower(r))
		prev = r
	}
	return b.String()
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
