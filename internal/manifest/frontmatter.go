package manifest

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// splitFrontmatter separates a leading YAML block delimited by "---" lines
// from the markdown body. Keys are lower-cased; non-string values dropped.
// ok is false when there is no parseable frontmatter.
func splitFrontmatter(content string) (fields map[string]string, body string, ok bool) {
	s := strings.TrimPrefix(content, "\ufeff")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	if !strings.HasPrefix(s, "---\n") {
		return map[string]string{}, content, false
	}

	rest := s[len("---\n"):]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return map[string]string{}, content, false
	}
	fmText := rest[:end]
	body = strings.TrimPrefix(rest[end+len("\n---"):], "\n")

	var raw map[string]any
	if err := yaml.Unmarshal([]byte(fmText), &raw); err != nil {
		return map[string]string{}, content, false
	}

	fields = make(map[string]string, len(raw))
	for k, v := range raw {
		if sv, ok := v.(string); ok {
			fields[strings.ToLower(k)] = sv
		}
	}
	return fields, body, true
}

func inferDescriptionFromBody(body string) string {
	for _, ln := range strings.Split(body, "\n") {
		ln = strings.TrimSpace(ln)
		if ln == "" || strings.HasPrefix(ln, "#") {
			continue
		}
		return ln
	}
	return ""
}
