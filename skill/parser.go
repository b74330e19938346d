package skill

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// frontmatterDelimiter opens and closes the YAML block of a skill file.
const frontmatterDelimiter = "---"

// SkipReason explains why a candidate file did not produce a skill.
type SkipReason string

const (
	SkipReadFailed              SkipReason = "read_failed"
	SkipNoFrontmatter           SkipReason = "no_frontmatter"
	SkipUnterminatedFrontmatter SkipReason = "unterminated_frontmatter"
	SkipInvalidFrontmatter      SkipReason = "invalid_frontmatter"
	SkipMissingName             SkipReason = "missing_name"
)

// ParseResult is the outcome of parsing one candidate file. Exactly one of
// Skill and Reason is set.
type ParseResult struct {
	Skill  *LocalSkill
	Reason SkipReason
	Err    error
}

// OK reports whether the file produced a skill.
func (r ParseResult) OK() bool {
	return r.Skill != nil
}

func skipped(reason SkipReason, err error) ParseResult {
	return ParseResult{Reason: reason, Err: err}
}

// Parse reads and parses the skill file at filePath. It returns nil for any
// file that is not a valid skill.
func Parse(filePath, agent string) *LocalSkill {
	return ParseSkillFile(filePath, agent).Skill
}

// ParseSkillFile reads the file at filePath and parses it as a skill owned by
// agent.
func ParseSkillFile(filePath, agent string) ParseResult {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return skipped(SkipReadFailed, fmt.Errorf("reading skill file: %w", err))
	}
	return ParseSkillContent(content, agent, filePath)
}

// ParseSkillContent parses skill file content. filePath is stored on the
// returned skill as its identity and is not read.
//
// The content must start with a "---" line (leading blank space is ignored)
// and contain a closing "---" line. The block between them must decode to a
// YAML mapping with a non-empty string "name".
func ParseSkillContent(content []byte, agent, filePath string) ParseResult {
	frontmatter, reason := extractFrontmatter(content)
	if reason != "" {
		return skipped(reason, nil)
	}

	frontmatter = bytes.ReplaceAll(frontmatter, []byte("\r\n"), []byte("\n"))

	var data map[string]any
	if err := yaml.Unmarshal(frontmatter, &data); err != nil {
		return skipped(SkipInvalidFrontmatter, fmt.Errorf("parsing skill frontmatter: %w", err))
	}

	name, _ := data["name"].(string)
	if name == "" {
		return skipped(SkipMissingName, errors.New("skill name is required"))
	}
	description, _ := data["description"].(string)
	internal, _ := data["internal"].(bool)

	return ParseResult{Skill: &LocalSkill{
		Name:        name,
		Description: description,
		Path:        filePath,
		Agent:       agent,
		Internal:    internal,
		Tags:        tagList(data["tags"]),
	}}
}

// extractFrontmatter returns the bytes between the opening and closing
// delimiters.
func extractFrontmatter(content []byte) ([]byte, SkipReason) {
	content = bytes.TrimLeft(content, " \t\r\n\ufeff")
	if !bytes.HasPrefix(content, []byte(frontmatterDelimiter)) {
		return nil, SkipNoFrontmatter
	}
	content = content[len(frontmatterDelimiter):]

	// the opening delimiter must be alone on its line
	lineEnd := bytes.IndexByte(content, '\n')
	if lineEnd == -1 {
		return nil, SkipUnterminatedFrontmatter
	}
	if len(bytes.TrimSpace(content[:lineEnd])) != 0 {
		return nil, SkipNoFrontmatter
	}
	content = content[lineEnd+1:]

	for offset := 0; offset <= len(content); {
		rest := content[offset:]
		end := bytes.IndexByte(rest, '\n')
		line := rest
		if end != -1 {
			line = rest[:end]
		}
		if string(bytes.TrimRight(line, " \t\r")) == frontmatterDelimiter {
			return content[:offset], ""
		}
		if end == -1 {
			break
		}
		offset += end + 1
	}
	return nil, SkipUnterminatedFrontmatter
}

// tagList keeps sequence values only. Non-string items are formatted.
func tagList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	tags := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			tags = append(tags, s)
			continue
		}
		tags = append(tags, fmt.Sprint(item))
	}
	return tags
}
