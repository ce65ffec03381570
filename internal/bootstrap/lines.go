// Package bootstrap registers generated route modules in the application's
// entry file. It works on lines and two recognizable line shapes rather than
// parsing JavaScript, so it only understands entry files written in the
// conventional require/app.use style.
package bootstrap

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/yega/scaffold/internal/naming"
)

var (
	// Identifiers and kebab names may carry non-ASCII letters.
	routeImport = regexp.MustCompile(`^\s*const [\p{L}\p{N}_$]+Routes = require\('\./routes/[\p{L}\p{N}_-]+Routes'\);`)
	routeMount  = regexp.MustCompile(`^\s*app\.use\('/api/[\p{L}\p{N}_-]+', (protect, )?[\p{L}\p{N}_$]+Routes\);`)

	// Fallback anchors used when the file has no registrations yet.
	importAnchor = regexp.MustCompile(`^\s*const \{[^}]*\bprotect\b[^}]*\} = require\('\./middleware/authMiddleware'\);`)
	mountAnchor  = regexp.MustCompile(`^\s*app\.use\('/api/auth', authRoutes\);`)
)

// Plan is the pair of statements that registers one route module.
type Plan struct {
	Import string
	Mount  string
	// mounted matches a mount of the same router under the same prefix,
	// with or without protect.
	mounted *regexp.Regexp
}

// PlanFor derives the statements for an entity. Authenticated endpoints are
// mounted behind protect.
func PlanFor(names naming.Set, auth bool) Plan {
	mount := fmt.Sprintf("app.use('%s', %s);", names.APIPrefix(), names.RouterVar())
	if auth {
		mount = fmt.Sprintf("app.use('%s', protect, %s);", names.APIPrefix(), names.RouterVar())
	}
	mounted := regexp.MustCompile(`^\s*app\.use\('` + regexp.QuoteMeta(names.APIPrefix()) +
		`', (protect, )?` + regexp.QuoteMeta(names.RouterVar()) + `\);`)
	return Plan{
		Import:  fmt.Sprintf("const %s = require('./routes/%s');", names.RouterVar(), names.RouteFile()),
		Mount:   mount,
		mounted: mounted,
	}
}

// Manual returns the instructions printed when the file cannot be patched.
func (p Plan) Manual(file string) string {
	return fmt.Sprintf("Add manually to %s:\n   %s\n   %s\n", file, p.Import, p.Mount)
}

// Status is what happened to one statement.
type Status int

const (
	// Unplaced means neither a prior registration nor the anchor was found.
	Unplaced Status = iota
	Present
	Inserted
)

func (s Status) String() string {
	switch s {
	case Present:
		return "present"
	case Inserted:
		return "inserted"
	default:
		return "unplaced"
	}
}

// Outcome reports the status of both statements.
type Outcome struct {
	Import Status
	Mount  Status
}

// Complete reports whether both statements are now in the file.
func (o Outcome) Complete() bool { return o.Import != Unplaced && o.Mount != Unplaced }

// Changed reports whether Apply produced new content.
func (o Outcome) Changed() bool {
	return o.Complete() && (o.Import == Inserted || o.Mount == Inserted)
}

// Apply inserts the plan's statements into content. A statement already
// present is left alone; for the mount that includes a mount of the same
// router whose protect gate differs from the plan. Otherwise it goes after the last line of
// the same shape, or after the anchor line when there is none. If either
// statement cannot be placed, content is returned unchanged.
func Apply(content string, plan Plan) (string, Outcome) {
	lines := strings.Split(content, "\n")
	var out Outcome
	lines, out.Import = place(lines, plan.Import, nil, routeImport, importAnchor)
	lines, out.Mount = place(lines, plan.Mount, plan.mounted, routeMount, mountAnchor)
	if !out.Changed() {
		return content, out
	}
	return strings.Join(lines, "\n"), out
}

func place(lines []string, stmt string, existing, shape, anchor *regexp.Regexp) ([]string, Status) {
	for _, l := range lines {
		if strings.Contains(l, stmt) || (existing != nil && existing.MatchString(l)) {
			return lines, Present
		}
	}
	at := lastMatch(lines, shape)
	if at < 0 {
		at = lastMatch(lines, anchor)
	}
	if at < 0 {
		return lines, Unplaced
	}
	return insertAfter(lines, at, stmt), Inserted
}

func lastMatch(lines []string, re *regexp.Regexp) int {
	for i := len(lines) - 1; i >= 0; i-- {
		if re.MatchString(lines[i]) {
			return i
		}
	}
	return -1
}

// insertAfter adds stmt below lines[i], copying its indentation and line
// ending.
func insertAfter(lines []string, i int, stmt string) []string {
	ref := lines[i]
	indent := ref[:len(ref)-len(strings.TrimLeft(ref, " \t"))]
	line := indent + stmt
	if strings.HasSuffix(ref, "\r") {
		line += "\r"
	}
	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[:i+1]...)
	out = append(out, line)
	return append(out, lines[i+1:]...)
}
