package skillsearch

import (
	"context"
	"strings"

	"github.com/deepnoodle-ai/skillsearch/skill"
)

// Searcher runs free-text queries against a Repository.
type Searcher struct {
	repo *Repository
}

// NewSearcher returns a Searcher over repo.
func NewSearcher(repo *Repository) *Searcher {
	return &Searcher{repo: repo}
}

// Search returns the public skills matching query, best match first.
//
// A blank query returns every public skill in scan order. Otherwise the query
// is tokenized and each term matches skill names, descriptions and tags
// exactly, by prefix, or within a small edit distance; name matches count
// double. Internal skills are never returned. There is no result limit.
func (s *Searcher) Search(ctx context.Context, query string) ([]skill.LocalSkill, error) {
	skills, gen, err := s.repo.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return skill.FilterPublic(skills), nil
	}

	hits := s.repo.searchIndex(skills, gen).Search(query)

	byPath := make(map[string][]int, len(skills))
	for i, sk := range skills {
		byPath[sk.Path] = append(byPath[sk.Path], i)
	}
	results := make([]skill.LocalSkill, 0, len(hits))
	for _, hit := range hits {
		for _, i := range byPath[hit.ID] {
			if skills[i].Name == hit.Name {
				results = append(results, skills[i])
				break
			}
		}
	}
	return results, nil
}
