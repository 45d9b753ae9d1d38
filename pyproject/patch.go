package pyproject

import (
	"fmt"
	"os"
	"strings"
)

// optionalHeader is the canonical optional-dependencies table header.
const optionalHeader = "[project.optional-dependencies]"

// Patch returns the manifest content with the given optional-dependency
// group set to the resolved specifier list. The edit is textual: only
// the group's own lines are replaced, every other line of the document
// survives byte-for-byte. A missing [project.optional-dependencies]
// table is appended at end of file.
func (d *Document) Patch(group string, resolved []string) []byte {
	lines := strings.SplitAfter(string(d.raw), "\n")
	block := formatGroup(group, resolved)

	headerIdx := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == optionalHeader {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return appendTable(d.raw, block)
	}

	groupStart, groupEnd := -1, -1
	sectionEnd := len(lines)
	i := headerIdx + 1
	for i < len(lines) {
		trimmed := strings.TrimSpace(lines[i])
		if strings.HasPrefix(trimmed, "[") {
			sectionEnd = i
			break
		}
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			i++
			continue
		}
		// Every other line in a table body starts a key assignment.
		// Consuming the whole value keeps array continuation lines from
		// being mistaken for keys.
		end := valueEnd(lines, i)
		if keyMatches(trimmed, group) {
			groupStart, groupEnd = i, end
		}
		i = end
	}

	var b strings.Builder
	if groupStart >= 0 {
		writeLines(&b, lines[:groupStart])
		b.WriteString(block)
		writeLines(&b, lines[groupEnd:])
		return []byte(b.String())
	}

	// The group is new: insert at the end of the section, keeping any
	// blank lines that separate it from the next table.
	insertAt := sectionEnd
	for insertAt > headerIdx+1 && strings.TrimSpace(lines[insertAt-1]) == "" {
		insertAt--
	}
	writeLines(&b, lines[:insertAt])
	if insertAt > 0 && !strings.HasSuffix(lines[insertAt-1], "\n") {
		b.WriteByte('\n')
	}
	b.WriteString(block)
	writeLines(&b, lines[insertAt:])
	return []byte(b.String())
}

// PatchFile patches the manifest at path in place, keeping the previous
// content at BackupPath(path). Re-running refreshes the group and
// overwrites the backup with the pre-run content.
func PatchFile(path, group string, resolved []string) error {
	doc, err := Load(path)
	if err != nil {
		return err
	}
	patched := doc.Patch(group, resolved)

	if err := os.WriteFile(BackupPath(path), doc.Bytes(), filePermissions); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	if err := os.WriteFile(path, patched, filePermissions); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// appendTable adds the optional-dependencies table after the existing
// content, separated by one blank line.
func appendTable(raw []byte, block string) []byte {
	var b strings.Builder
	b.Write(raw)
	if len(raw) > 0 && raw[len(raw)-1] != '\n' {
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.WriteString(optionalHeader)
	b.WriteByte('\n')
	b.WriteString(block)
	return []byte(b.String())
}

// formatGroup renders one group assignment, one specifier per line.
func formatGroup(group string, resolved []string) string {
	if len(resolved) == 0 {
		return formatKey(group) + " = []\n"
	}

	var b strings.Builder
	b.WriteString(formatKey(group))
	b.WriteString(" = [\n")
	for _, spec := range resolved {
		b.WriteString("    ")
		b.WriteString(fmt.Sprintf("%q", spec))
		b.WriteString(",\n")
	}
	b.WriteString("]\n")
	return b.String()
}

// formatKey quotes a group name that is not a bare TOML key.
func formatKey(group string) string {
	if group == "" {
		return `""`
	}
	for _, r := range group {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_':
		default:
			return fmt.Sprintf("%q", group)
		}
	}
	return group
}

// keyMatches reports whether a trimmed line assigns the given key,
// spelled bare or quoted.
func keyMatches(line, group string) bool {
	if strings.HasPrefix(line, "#") {
		return false
	}
	key, _, found := strings.Cut(line, "=")
	if !found {
		return false
	}
	key = strings.TrimSpace(key)
	key = strings.Trim(key, `"'`)
	return key == group
}

// valueEnd returns the index of the line after a key's value, tracking
// bracket depth outside quoted strings so array entries containing "["
// (extras syntax) do not end the value early.
func valueEnd(lines []string, start int) int {
	depth := 0
	inBasic, inLiteral := false, false
	for i := start; i < len(lines); i++ {
		s := lines[i]
		if i == start {
			if _, rest, ok := strings.Cut(s, "="); ok {
				s = rest
			}
		}
		for j := 0; j < len(s); j++ {
			switch c := s[j]; {
			case inBasic:
				if c == '\\' {
					j++
				} else if c == '"' {
					inBasic = false
				}
			case inLiteral:
				if c == '\'' {
					inLiteral = false
				}
			case c == '"':
				inBasic = true
			case c == '\'':
				inLiteral = true
			case c == '#':
				j = len(s)
			case c == '[':
				depth++
			case c == ']':
				depth--
			}
		}
		if depth <= 0 {
			return i + 1
		}
	}
	return len(lines)
}

func writeLines(b *strings.Builder, lines []string) {
	for _, line := range lines {
		b.WriteString(line)
	}
}
