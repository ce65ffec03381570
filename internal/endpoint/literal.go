package endpoint

import (
	"strconv"
	"strings"
)

type literalKind int

const (
	literalNull literalKind = iota
	literalString
	literalNumber
	literalBool
)

// Literal is a field default value. The zero value is null.
type Literal struct {
	kind literalKind
	str  string
	num  float64
	b    bool
}

func String(s string) *Literal  { return &Literal{kind: literalString, str: s} }
func Number(n float64) *Literal { return &Literal{kind: literalNumber, num: n} }
func Bool(b bool) *Literal      { return &Literal{kind: literalBool, b: b} }
func Null() *Literal            { return &Literal{kind: literalNull} }

// IsString reports whether the literal is rendered quoted.
func (l *Literal) IsString() bool { return l.kind == literalString }

// JS renders the literal as JavaScript source. Strings are single-quoted.
func (l *Literal) JS() string {
	switch l.kind {
	case literalString:
		return Quote(l.str)
	case literalNumber:
		return FormatNumber(l.num)
	case literalBool:
		return strconv.FormatBool(l.b)
	default:
		return "null"
	}
}

// String returns the unquoted form, as it reads in prompts.
func (l *Literal) String() string {
	switch l.kind {
	case literalString:
		return l.str
	case literalNumber:
		return FormatNumber(l.num)
	case literalBool:
		return strconv.FormatBool(l.b)
	default:
		return "null"
	}
}

// FormatNumber prints n the way JavaScript does for integral and decimal
// values: 100, 0.5, -3.
func FormatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

var quoteReplacer = strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`)

// Quote wraps s in single quotes, escaping what would end the literal.
func Quote(s string) string {
	return "'" + quoteReplacer.Replace(s) + "'"
}
