package skillsearch

import (
	"github.com/deepnoodle-ai/skillsearch/remote"
	"github.com/deepnoodle-ai/skillsearch/skill"
)

// Result is the outcome of a combined local and remote search.
type Result struct {
	Local  []skill.LocalSkill `json:"local"`
	Remote []remote.Skill     `json:"remote"`
}

// Empty reports whether neither source returned anything.
func (r Result) Empty() bool {
	return len(r.Local) == 0 && len(r.Remote) == 0
}
