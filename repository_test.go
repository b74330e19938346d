package skillsearch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/deepnoodle-ai/skillsearch/agents"
	"github.com/deepnoodle-ai/skillsearch/log"
	"github.com/deepnoodle-ai/skillsearch/skill"
	"github.com/deepnoodle-ai/wonton/assert"
)

func writeSkill(t *testing.T, dir, name, description string, extra ...string) string {
	t.Helper()
	content := fmt.Sprintf("---\nname: %s\ndescription: %s\n", name, description)
	for _, line := range extra {
		content += line + "\n"
	}
	content += "---\n\n# " + name + "\n"
	path := filepath.Join(dir, name, skill.SkillFileName)
	assert.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

type fixture struct {
	home     string
	work     string
	registry *agents.Registry
}

func installed(context.Context) bool { return true }

// newFixture builds two installed agents (Alpha, Beta) and one that is not
// installed (Gamma), each with global skills under home and project skills
// under work.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	home := t.TempDir()
	work := t.TempDir()
	reg := agents.NewRegistryFrom(
		agents.Config{
			Name:            "alpha",
			DisplayName:     "Alpha",
			SkillsDir:       ".alpha/skills",
			GlobalSkillsDir: filepath.Join(home, ".alpha", "skills"),
			DetectInstalled: installed,
		},
		agents.Config{
			Name:            "beta",
			DisplayName:     "Beta",
			SkillsDir:       ".beta/skills",
			GlobalSkillsDir: filepath.Join(home, ".beta", "skills"),
			DetectInstalled: installed,
		},
		agents.Config{
			Name:            "gamma",
			DisplayName:     "Gamma",
			SkillsDir:       ".gamma/skills",
			GlobalSkillsDir: filepath.Join(home, ".gamma", "skills"),
		},
	)
	return &fixture{home: home, work: work, registry: reg}
}

func (f *fixture) global(agent string) string {
	return filepath.Join(f.home, "."+agent, "skills")
}

func (f *fixture) project(agent string) string {
	return filepath.Join(f.work, "."+agent, "skills")
}

func (f *fixture) repo(source AgentSource) *Repository {
	if source == nil {
		source = f.registry
	}
	return NewRepository(RepositoryOptions{Agents: source, WorkDir: f.work})
}

func skillNames(skills []skill.LocalSkill) []string {
	names := make([]string, 0, len(skills))
	for _, s := range skills {
		names = append(names, s.Name)
	}
	return names
}

// gatedSource wraps a registry so tests can observe and hold agent detection.
type gatedSource struct {
	*agents.Registry
	calls   atomic.Int32
	entered chan struct{}
	release chan struct{}
}

func (g *gatedSource) DetectInstalled(ctx context.Context) []string {
	if g.calls.Add(1) == 1 && g.entered != nil {
		close(g.entered)
	}
	if g.release != nil {
		<-g.release
	}
	return g.Registry.DetectInstalled(ctx)
}

func TestScanOrdersGlobalBeforeProject(t *testing.T) {
	f := newFixture(t)
	writeSkill(t, f.global("alpha"), "log-explorer", "Explore application logs")
	writeSkill(t, f.project("alpha"), "jira-helper", "Work with Jira tickets")
	writeSkill(t, f.global("beta"), "slack-cli", "Send Slack messages")
	writeSkill(t, f.global("gamma"), "hidden", "Not installed")

	skills, err := f.repo(nil).Scan(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []string{"log-explorer", "jira-helper", "slack-cli"}, skillNames(skills))
	assert.Equal(t, "Alpha", skills[0].Agent)
	assert.Equal(t, "Alpha", skills[1].Agent)
	assert.Equal(t, "Beta", skills[2].Agent)
	assert.Equal(t, filepath.Join(f.global("alpha"), "log-explorer", "SKILL.md"), skills[0].Path)
}

func TestScanNoInstalledAgents(t *testing.T) {
	f := newFixture(t)
	repo := f.repo(agents.NewRegistryFrom(agents.Config{Name: "none"}))
	skills, err := repo.Scan(context.Background())
	assert.NoError(t, err)
	assert.NotNil(t, skills)
	assert.Len(t, skills, 0)
}

func TestScanSkipsProjectPathsAlreadyCollected(t *testing.T) {
	f := newFixture(t)
	writeSkill(t, f.global("alpha"), "log-explorer", "Explore logs")
	// With the working directory at home, the project directory is the
	// global directory.
	repo := NewRepository(RepositoryOptions{Agents: f.registry, WorkDir: f.home})

	skills, err := repo.Scan(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []string{"log-explorer"}, skillNames(skills))
}

func TestScanReportsLinkedSkillOnce(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require privileges on windows")
	}
	f := newFixture(t)
	dir := f.global("alpha")
	writeSkill(t, dir, "log-explorer", "Explore application logs")
	assert.NoError(t, os.Symlink(filepath.Join(dir, "log-explorer"), filepath.Join(dir, "alias")))
	assert.NoError(t, os.Symlink(dir, filepath.Join(dir, "loop")))
	repo := f.repo(nil)

	skills, err := repo.Scan(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []string{"log-explorer"}, skillNames(skills))

	hits, err := repo.Query(context.Background(), "log")
	assert.NoError(t, err)
	assert.Len(t, hits, 1)
	all, err := repo.Query(context.Background(), "")
	assert.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestScanSharedGlobalDirectoryKeepsFirstAgent(t *testing.T) {
	f := newFixture(t)
	shared := filepath.Join(f.home, ".config", "agents", "skills")
	writeSkill(t, shared, "log-explorer", "Explore application logs")
	reg := agents.NewRegistryFrom(
		agents.Config{Name: "one", DisplayName: "One", SkillsDir: ".agents/skills", GlobalSkillsDir: shared, DetectInstalled: installed},
		agents.Config{Name: "two", DisplayName: "Two", SkillsDir: ".agents/skills", GlobalSkillsDir: shared, DetectInstalled: installed},
	)

	skills, err := f.repo(reg).Scan(context.Background())
	assert.NoError(t, err)
	assert.Len(t, skills, 1)
	assert.Equal(t, "One", skills[0].Agent)
}

func TestScanSkipsUnparsableFiles(t *testing.T) {
	f := newFixture(t)
	writeSkill(t, f.global("alpha"), "good", "Fine")
	bad := filepath.Join(f.global("alpha"), "bad", skill.SkillFileName)
	assert.NoError(t, os.MkdirAll(filepath.Dir(bad), 0o755))
	assert.NoError(t, os.WriteFile(bad, []byte("---\ndescription: no name\n---\n"), 0o644))

	recorder := log.NewRecorder()
	repo := NewRepository(RepositoryOptions{Agents: f.registry, WorkDir: f.work, Logger: recorder})
	skills, err := repo.Scan(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []string{"good"}, skillNames(skills))

	var reasons []any
	for _, e := range recorder.Entries() {
		if e.Message == "skipping skill file" {
			reasons = append(reasons, e.Attrs["reason"])
		}
	}
	assert.Equal(t, []any{"missing_name"}, reasons)
}

func TestScanHonoursMaxDepthAndExclude(t *testing.T) {
	f := newFixture(t)
	writeSkill(t, f.global("alpha"), "top", "Top level")
	writeSkill(t, filepath.Join(f.global("alpha"), "group", "nested"), "deep", "Too deep")
	writeSkill(t, filepath.Join(f.global("alpha"), "node_modules"), "vendored", "Excluded")

	repo := NewRepository(RepositoryOptions{
		Agents:   f.registry,
		WorkDir:  f.work,
		MaxDepth: 3,
		Exclude:  []string{"**/node_modules/**", "node_modules"},
	})
	skills, err := repo.Scan(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []string{"top"}, skillNames(skills))
}

func TestScanIsCachedUntilInvalidate(t *testing.T) {
	f := newFixture(t)
	writeSkill(t, f.global("alpha"), "first", "One")
	repo := f.repo(nil)

	_, ok := repo.Snapshot()
	assert.False(t, ok)

	skills, err := repo.Scan(context.Background())
	assert.NoError(t, err)
	assert.Len(t, skills, 1)

	writeSkill(t, f.global("alpha"), "second", "Two")
	skills, err = repo.Scan(context.Background())
	assert.NoError(t, err)
	assert.Len(t, skills, 1)

	cached, ok := repo.Snapshot()
	assert.True(t, ok)
	assert.Len(t, cached, 1)

	repo.Invalidate()
	repo.Invalidate()
	_, ok = repo.Snapshot()
	assert.False(t, ok)

	skills, err = repo.Scan(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, skillNames(skills))
}

func TestScanCancelledIsNotCached(t *testing.T) {
	f := newFixture(t)
	writeSkill(t, f.global("alpha"), "first", "One")
	repo := f.repo(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := repo.Scan(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	_, ok := repo.Snapshot()
	assert.False(t, ok)

	skills, err := repo.Scan(context.Background())
	assert.NoError(t, err)
	assert.Len(t, skills, 1)
}

func TestConcurrentScansShareOneWalk(t *testing.T) {
	f := newFixture(t)
	writeSkill(t, f.global("alpha"), "first", "One")
	source := &gatedSource{Registry: f.registry, release: make(chan struct{})}
	repo := f.repo(source)

	var wg sync.WaitGroup
	results := make([][]skill.LocalSkill, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			skills, err := repo.Scan(context.Background())
			assert.NoError(t, err)
			results[i] = skills
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(source.release)
	wg.Wait()

	assert.Equal(t, int32(1), source.calls.Load())
	for _, r := range results {
		assert.Equal(t, []string{"first"}, skillNames(r))
	}
}

func TestFillReusesFinishedFlight(t *testing.T) {
	f := newFixture(t)
	writeSkill(t, f.global("alpha"), "first", "One")
	source := &gatedSource{Registry: f.registry}
	repo := f.repo(source)

	_, err := repo.Scan(context.Background())
	assert.NoError(t, err)
	// A caller that saw an empty cache just before the first flight finished
	// reaches fill with the same generation.
	skills, err := repo.fill(context.Background(), 0)
	assert.NoError(t, err)
	assert.Equal(t, []string{"first"}, skillNames(skills))
	assert.Equal(t, int32(1), source.calls.Load())
}

func TestInvalidateDuringScanDiscardsResult(t *testing.T) {
	f := newFixture(t)
	writeSkill(t, f.global("alpha"), "first", "One")
	source := &gatedSource{
		Registry: f.registry,
		entered:  make(chan struct{}),
		release:  make(chan struct{}),
	}
	repo := f.repo(source)

	done := make(chan []skill.LocalSkill)
	go func() {
		skills, _ := repo.Scan(context.Background())
		done <- skills
	}()
	<-source.entered
	repo.Invalidate()
	close(source.release)

	skills := <-done
	assert.Equal(t, []string{"first"}, skillNames(skills))
	_, ok := repo.Snapshot()
	assert.False(t, ok)
}

func TestSkillsForAgent(t *testing.T) {
	f := newFixture(t)
	writeSkill(t, f.global("alpha"), "log-explorer", "Logs")
	writeSkill(t, f.project("alpha"), "jira-helper", "Jira")
	writeSkill(t, f.global("beta"), "slack-cli", "Slack")
	repo := f.repo(nil)

	skills, err := repo.SkillsForAgent(context.Background(), "alpha")
	assert.NoError(t, err)
	assert.Equal(t, []string{"log-explorer", "jira-helper"}, skillNames(skills))

	skills, err = repo.SkillsForAgent(context.Background(), "gamma")
	assert.NoError(t, err)
	assert.Len(t, skills, 0)

	_, err = repo.SkillsForAgent(context.Background(), "delta")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, agents.ErrUnknownAgent))
	assert.Contains(t, err.Error(), "delta")
}
