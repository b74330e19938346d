// Package skill discovers and parses agent skill definitions.
//
// A skill is declared in a file named SKILL.md that starts with a YAML
// frontmatter block followed by free-form Markdown:
//
//	---
//	name: log-explorer
//	description: Explore application logs.
//	internal: false
//	tags:
//	  - logs
//	  - debugging
//	---
//
//	# Log Explorer
//	...
//
// Only the frontmatter is read. The body is ignored.
//
// # Discovery
//
// FindSkillFiles walks a skills directory depth-first, following symbolic
// links, and returns the absolute path of every SKILL.md it finds within a
// bounded depth. ParseSkillFile turns one of those paths into a LocalSkill or
// reports why the file was skipped.
//
//	for _, path := range skill.FindSkillFiles(dir, skill.DefaultMaxDepth) {
//	    if s := skill.Parse(path, "Claude Code"); s != nil {
//	        fmt.Println(s.Name, s.Description)
//	    }
//	}
package skill

// LocalSkill is a skill found on the local filesystem.
type LocalSkill struct {
	// Name is the skill name from the frontmatter. Never empty.
	Name string `json:"name"`

	// Description is the frontmatter description, or "" when absent.
	Description string `json:"description"`

	// Path is the absolute path of the SKILL.md file. It identifies the
	// skill within a scan.
	Path string `json:"path"`

	// Agent is the display name of the agent the skill was found for.
	Agent string `json:"agent"`

	// Internal marks skills hidden from default search results.
	Internal bool `json:"internal"`

	// Tags is nil unless the frontmatter holds a tag sequence.
	Tags []string `json:"tags,omitempty"`
}

// Public reports whether the skill should appear in default results.
func (s LocalSkill) Public() bool {
	return !s.Internal
}

// FilterPublic returns the non-internal skills in their original order.
func FilterPublic(skills []LocalSkill) []LocalSkill {
	out := make([]LocalSkill, 0, len(skills))
	for _, s := range skills {
		if s.Public() {
			out = append(out, s)
		}
	}
	return out
}
