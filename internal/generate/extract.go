package generate

import (
	"regexp"
	"strings"
)

var anyFence = regexp.MustCompile("```[^\\n]*\\n([\\s\\S]*?)```")

// ExtractCode returns the body of the first ```lang block in resp, else of
// the first fenced block of any kind, else resp itself.
func ExtractCode(resp, lang string) string {
	if lang == "" {
		lang = "javascript"
	}
	langFence := regexp.MustCompile("```" + regexp.QuoteMeta(lang) + "[ \\t]*\\r?\\n([\\s\\S]*?)```")
	if m := langFence.FindStringSubmatch(resp); m != nil {
		return m[1]
	}
	if m := anyFence.FindStringSubmatch(resp); m != nil {
		return m[1]
	}
	return strings.TrimSpace(resp)
}
