package creds

import "strings"

// parseINI parses INI-style profile files. Blank lines and lines starting
// with '#' or ';' are skipped. A "[section]" line opens a section; a
// leading "profile " token inside the brackets is stripped, which maps the
// config file's "[profile dev]" namespacing onto the credentials file's
// bare "[dev]". "key = value" lines split at the first '=' with both sides
// trimmed. Lines before any section header are discarded.
func parseINI(content string) map[string]map[string]string {
	sections := map[string]map[string]string{}
	current := ""

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)

		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			current = strings.TrimSpace(line[1 : len(line)-1])
			current = strings.TrimPrefix(current, "profile ")
			if _, ok := sections[current]; !ok {
				sections[current] = map[string]string{}
			}
			continue
		}

		if key, value, ok := strings.Cut(line, "="); ok && current != "" {
			sections[current][strings.TrimSpace(key)] = strings.TrimSpace(value)
		}
	}

	return sections
}
