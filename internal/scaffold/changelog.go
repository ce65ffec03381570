package scaffold

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// changelogEntry describes one scaffold run in markdown.
func changelogEntry(r *Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "### Endpoint %s\n", r.Endpoint)
	for _, f := range r.Files {
		fmt.Fprintf(&b, "- %s\n", f)
	}
	for _, route := range r.Routes {
		fmt.Fprintf(&b, "- `%s`\n", route)
	}
	if r.Bootstrap.Updated {
		fmt.Fprintf(&b, "- registered in %s\n", r.Bootstrap.Path)
	}
	return b.String()
}

// PrependChangelogEntry prepends a new entry to an existing CHANGELOG.md,
// preserving previous entries.
func PrependChangelogEntry(newEntry, existingChangelog string, now time.Time) string {
	header := fmt.Sprintf("## %s\n\n", now.Format("2006-01-02"))

	entry := header + strings.TrimSpace(newEntry) + "\n"

	if existingChangelog == "" {
		return "# CHANGELOG\n\n" + entry
	}

	// Previous entries start after the top-level header, if any.
	lines := strings.SplitN(existingChangelog, "\n", 3)
	if strings.HasPrefix(strings.TrimSpace(lines[0]), "# ") {
		rest := ""
		if len(lines) >= 3 {
			rest = lines[2]
		}
		return lines[0] + "\n\n" + entry + "\n" + rest
	}

	return entry + "\n" + existingChangelog
}

// appendChangelog records r in the CHANGELOG.md at path.
func appendChangelog(afs afero.Fs, path string, r *Report, now time.Time) error {
	existing, err := afero.ReadFile(afs, path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading changelog: %w", err)
	}
	out := PrependChangelogEntry(changelogEntry(r), string(existing), now)
	if err := afero.WriteFile(afs, path, []byte(out), 0o644); err != nil {
		return fmt.Errorf("writing changelog: %w", err)
	}
	return nil
}
