// Package skillsearch discovers the skills installed for AI coding agents on
// this machine and searches them.
//
// The core types are:
//
//   - [Repository] scans every installed agent's global and project skills
//     directories and caches the result until [Repository.Invalidate].
//   - [Searcher] ranks the cached skills against a free-text query with a
//     fuzzy, prefix-aware full-text index.
//   - [Result] combines local matches with matches from the remote registry.
//
// # Quick Start
//
//	registry, _ := agents.DefaultRegistry()
//	repo := skillsearch.NewRepository(skillsearch.RepositoryOptions{
//	    Agents: registry,
//	})
//	skills, _ := skillsearch.NewSearcher(repo).Search(ctx, "log")
//	for _, s := range skills {
//	    fmt.Println(s.Name, s.Path)
//	}
//
// Skill files are parsed by the [github.com/deepnoodle-ai/skillsearch/skill]
// package and indexed by [github.com/deepnoodle-ai/skillsearch/search].
package skillsearch
