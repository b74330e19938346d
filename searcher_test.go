package skillsearch

import (
	"context"
	"testing"

	"github.com/deepnoodle-ai/wonton/assert"
)

func searchFixture(t *testing.T) (*fixture, *Repository) {
	t.Helper()
	f := newFixture(t)
	writeSkill(t, f.global("alpha"), "log-explorer", "Explore application logs", "tags: [logs, debugging]")
	writeSkill(t, f.global("alpha"), "release-notes", "Internal release tooling", "internal: true")
	writeSkill(t, f.project("alpha"), "jira-helper", "Work with Jira tickets", "tags: [tickets]")
	writeSkill(t, f.global("beta"), "slack-cli", "Send Slack messages")
	return f, f.repo(nil)
}

func TestSearchEmptyQueryReturnsPublicSkillsInScanOrder(t *testing.T) {
	_, repo := searchFixture(t)
	s := NewSearcher(repo)

	for _, q := range []string{"", "   ", "\t\n"} {
		skills, err := s.Search(context.Background(), q)
		assert.NoError(t, err)
		assert.Equal(t, []string{"log-explorer", "jira-helper", "slack-cli"}, skillNames(skills))
	}
}

func TestSearchByName(t *testing.T) {
	_, repo := searchFixture(t)
	skills, err := NewSearcher(repo).Search(context.Background(), "log")
	assert.NoError(t, err)
	assert.Equal(t, []string{"log-explorer"}, skillNames(skills))
	assert.Equal(t, "Alpha", skills[0].Agent)
	assert.Equal(t, []string{"logs", "debugging"}, skills[0].Tags)
}

func TestSearchFuzzy(t *testing.T) {
	_, repo := searchFixture(t)
	skills, err := NewSearcher(repo).Search(context.Background(), "slak")
	assert.NoError(t, err)
	assert.Equal(t, []string{"slack-cli"}, skillNames(skills))
}

func TestSearchRanksNameAboveDescription(t *testing.T) {
	f, repo := searchFixture(t)
	writeSkill(t, f.global("beta"), "ticket-triage", "Sort incoming work")
	skills, err := NewSearcher(repo).Search(context.Background(), "ticket")
	assert.NoError(t, err)
	assert.Equal(t, "ticket-triage", skills[0].Name)
	assert.Contains(t, skillNames(skills), "jira-helper")
}

func TestSearchNeverReturnsInternalSkills(t *testing.T) {
	_, repo := searchFixture(t)
	skills, err := NewSearcher(repo).Search(context.Background(), "release")
	assert.NoError(t, err)
	assert.Len(t, skills, 0)

	all, err := repo.Scan(context.Background())
	assert.NoError(t, err)
	assert.Contains(t, skillNames(all), "release-notes")
}

func TestSearchNoMatch(t *testing.T) {
	_, repo := searchFixture(t)
	skills, err := NewSearcher(repo).Search(context.Background(), "kubernetes")
	assert.NoError(t, err)
	assert.NotNil(t, skills)
	assert.Len(t, skills, 0)
}

func TestSearchIndexIsRebuiltAfterInvalidate(t *testing.T) {
	f, repo := searchFixture(t)
	ctx := context.Background()

	skills, err := repo.Query(ctx, "log")
	assert.NoError(t, err)
	assert.Equal(t, []string{"log-explorer"}, skillNames(skills))

	writeSkill(t, f.global("beta"), "log-shipper", "Ship logs")
	skills, err = repo.Query(ctx, "log")
	assert.NoError(t, err)
	assert.Equal(t, []string{"log-explorer"}, skillNames(skills))

	repo.Invalidate()
	skills, err = repo.Query(ctx, "log")
	assert.NoError(t, err)
	assert.Equal(t, []string{"log-explorer", "log-shipper"}, skillNames(skills))
}

func TestSearchCancelled(t *testing.T) {
	_, repo := searchFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewSearcher(repo).Search(ctx, "log")
	assert.Error(t, err)
}
