// Package brief reads the project context document (backend/blackbox.md)
// that is sent along with every generation prompt.
package brief

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/yega/scaffold/internal/config"
)

// FileName is the context document looked up in the backend directory.
const FileName = "blackbox.md"

// Brief is a parsed context document.
type Brief struct {
	Frontmatter Frontmatter
	Sections    map[string]string // H1 heading -> content
	Body        string
}

// Frontmatter holds the optional YAML header of a brief.
type Frontmatter struct {
	Name     string        `yaml:"name"`
	Provider config.Config `yaml:"provider"`
	// Pause overrides the delay between generation calls, e.g. "2s".
	Pause string `yaml:"pause,omitempty"`
}

// Load reads the brief at path. A missing file yields an empty brief.
func Load(afs afero.Fs, path string) (*Brief, error) {
	data, err := afero.ReadFile(afs, path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Brief{Sections: map[string]string{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading brief: %w", err)
	}
	return Parse(data)
}

// Parse parses a brief. The frontmatter is optional.
func Parse(data []byte) (*Brief, error) {
	fm, body, err := splitFrontmatter(string(data))
	if err != nil {
		return nil, err
	}
	var b Brief
	if fm != "" {
		if err := yaml.Unmarshal([]byte(fm), &b.Frontmatter); err != nil {
			return nil, fmt.Errorf("parsing brief frontmatter: %w", err)
		}
	}
	b.Body = body
	b.Sections = extractSections(body)
	return &b, nil
}

// Overrides returns the provider settings declared in the frontmatter, or nil.
func (b *Brief) Overrides() *config.Config {
	if b.Frontmatter.Provider == (config.Config{}) {
		return nil
	}
	p := b.Frontmatter.Provider
	return &p
}

// Context is the text appended to system prompts.
func (b *Brief) Context() string { return b.Body }

// SectionNames lists the H1 headings in sorted order.
func (b *Brief) SectionNames() []string {
	names := make([]string, 0, len(b.Sections))
	for name := range b.Sections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// splitFrontmatter returns the YAML between leading --- delimiters and the
// rest of the document. Documents without a leading --- have no frontmatter.
func splitFrontmatter(content string) (string, string, error) {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "---") {
		return "", trimmed, nil
	}
	rest := trimmed[3:]
	idx := strings.Index(rest, "\n---")
	if idx < 0 {
		return "", "", fmt.Errorf("brief is missing the closing frontmatter delimiter (---)")
	}
	return strings.TrimSpace(rest[:idx]), strings.TrimSpace(rest[idx+4:]), nil
}

// extractSections splits the markdown body on H1 headings into named sections.
func extractSections(body string) map[string]string {
	sections := make(map[string]string)
	var current string
	var content []string
	flush := func() {
		if current != "" {
			sections[current] = strings.TrimSpace(strings.Join(content, "\n"))
		}
	}
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(line, "# ") {
			flush()
			current = strings.TrimSpace(line[2:])
			content = nil
			continue
		}
		content = append(content, line)
	}
	flush()
	return sections
}
