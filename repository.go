package skillsearch

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/deepnoodle-ai/skillsearch/agents"
	"github.com/deepnoodle-ai/skillsearch/log"
	"github.com/deepnoodle-ai/skillsearch/search"
	"github.com/deepnoodle-ai/skillsearch/skill"
	"golang.org/x/sync/singleflight"
)

// AgentSource supplies the agents whose skills are scanned.
// *agents.Registry satisfies it.
type AgentSource interface {
	// DetectInstalled returns the identifiers of installed agents in a stable
	// order.
	DetectInstalled(ctx context.Context) []string

	// Get returns the configuration for an agent identifier.
	Get(id string) (agents.Config, error)
}

// RepositoryOptions configures a Repository.
type RepositoryOptions struct {
	// Agents supplies the installed agents. Required.
	Agents AgentSource

	// WorkDir is the directory project skills directories are resolved
	// against. Defaults to the process working directory.
	WorkDir string

	// MaxDepth bounds how deep below each skills directory SKILL.md files are
	// searched for. Values <= 0 mean skill.DefaultMaxDepth.
	MaxDepth int

	// Exclude holds doublestar patterns for paths that are never scanned.
	Exclude []string

	// Logger receives debug output for skipped files and agents.
	Logger log.Logger
}

// Repository is the cached collection of local skills.
//
// The first call to Scan walks every installed agent's skills directories and
// keeps the result until Invalidate is called. Concurrent scans of an empty
// cache share one walk. The search index built over the collection is owned
// by the repository and is discarded together with it.
//
// All methods are safe for concurrent use. Returned slices are shared and
// must not be modified.
type Repository struct {
	agents  AgentSource
	workDir string
	walk    skill.WalkOptions
	logger  log.Logger

	group singleflight.Group

	mu         sync.Mutex
	generation uint64
	loaded     bool
	skills     []skill.LocalSkill
	index      *search.Index

	searcher *Searcher
}

// NewRepository returns an empty repository. Nothing is scanned until the
// first call to Scan.
func NewRepository(opts RepositoryOptions) *Repository {
	workDir := opts.WorkDir
	if workDir == "" {
		if wd, err := os.Getwd(); err == nil {
			workDir = wd
		} else {
			workDir = "."
		}
	}
	logger := log.OrNull(opts.Logger)
	r := &Repository{
		agents:  opts.Agents,
		workDir: workDir,
		logger:  logger,
		walk: skill.WalkOptions{
			MaxDepth: opts.MaxDepth,
			Exclude:  opts.Exclude,
			Logger:   logger,
		},
	}
	r.searcher = NewSearcher(r)
	return r
}

// Scan returns every local skill of every installed agent.
//
// Agents are visited in the order the AgentSource reports them. For each one
// the global skills directory is read first, then the project skills
// directory under WorkDir. A skill whose path was already collected, through
// another agent sharing the directory or a link, is left out. Files that cannot be parsed are skipped.
//
// The only error is the context's, when it is cancelled before the scan
// completes. A cancelled scan is not cached.
func (r *Repository) Scan(ctx context.Context) ([]skill.LocalSkill, error) {
	skills, _, err := r.snapshot(ctx)
	return skills, err
}

// Snapshot returns the cached skills without scanning. The bool is false when
// nothing is cached.
func (r *Repository) Snapshot() ([]skill.LocalSkill, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.skills, r.loaded
}

// SkillsForAgent returns the scanned skills owned by the given agent, in scan
// order. An identifier the AgentSource does not know yields an error wrapping
// agents.ErrUnknownAgent. An agent that is known but not installed yields an
// empty result.
func (r *Repository) SkillsForAgent(ctx context.Context, id string) ([]skill.LocalSkill, error) {
	cfg, err := r.agents.Get(id)
	if err != nil {
		return nil, err
	}
	all, err := r.Scan(ctx)
	if err != nil {
		return nil, err
	}
	out := []skill.LocalSkill{}
	for _, s := range all {
		if s.Agent == cfg.DisplayName {
			out = append(out, s)
		}
	}
	return out, nil
}

// Query searches the cached skills. It is shorthand for a Searcher bound to
// this repository.
func (r *Repository) Query(ctx context.Context, query string) ([]skill.LocalSkill, error) {
	return r.searcher.Search(ctx, query)
}

// Invalidate discards the cached skills and the search index. The next Scan
// walks the filesystem again. A scan already running when Invalidate is
// called still returns its result to its callers but does not repopulate the
// cache.
func (r *Repository) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generation++
	r.loaded = false
	r.skills = nil
	r.index = nil
}

// snapshot returns the cached skills along with the generation they belong
// to, scanning first when the cache is empty.
func (r *Repository) snapshot(ctx context.Context) ([]skill.LocalSkill, uint64, error) {
	r.mu.Lock()
	if r.loaded {
		skills, gen := r.skills, r.generation
		r.mu.Unlock()
		return skills, gen, nil
	}
	gen := r.generation
	r.mu.Unlock()

	v, err, _ := r.group.Do(strconv.FormatUint(gen, 10), func() (any, error) {
		return r.fill(ctx, gen)
	})
	if err != nil {
		return nil, gen, err
	}
	return v.([]skill.LocalSkill), gen, nil
}

// fill scans and caches the result for generation gen. An earlier flight for
// the same generation may have finished after the caller checked the cache,
// so the cache is checked again first.
func (r *Repository) fill(ctx context.Context, gen uint64) ([]skill.LocalSkill, error) {
	r.mu.Lock()
	if r.loaded && r.generation == gen {
		skills := r.skills
		r.mu.Unlock()
		return skills, nil
	}
	r.mu.Unlock()

	skills, err := r.scan(ctx)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.generation == gen {
		r.skills = skills
		r.loaded = true
	}
	return skills, nil
}

// searchIndex returns the index over the public skills of the given
// generation, building it on first use. An index built for a generation that
// has since been invalidated is returned but not kept.
func (r *Repository) searchIndex(skills []skill.LocalSkill, gen uint64) *search.Index {
	r.mu.Lock()
	defer r.mu.Unlock()
	current := r.loaded && r.generation == gen
	if current && r.index != nil {
		return r.index
	}
	ix := search.New(search.DefaultOptions())
	for _, s := range skills {
		if !s.Public() {
			continue
		}
		ix.Add(search.Document{
			ID:          s.Path,
			Name:        s.Name,
			Description: s.Description,
			Tags:        s.Tags,
		})
	}
	if current {
		r.index = ix
	}
	return ix
}

func (r *Repository) scan(ctx context.Context) ([]skill.LocalSkill, error) {
	if r.agents == nil {
		return []skill.LocalSkill{}, nil
	}
	installed := r.agents.DetectInstalled(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	skills := []skill.LocalSkill{}
	seen := make(map[string]bool)
	for _, id := range installed {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cfg, err := r.agents.Get(id)
		if err != nil {
			r.logger.Warn("skipping agent", "agent", id, "error", err)
			continue
		}
		if cfg.GlobalSkillsDir != "" {
			for _, s := range r.load(cfg.GlobalSkillsDir, cfg.DisplayName) {
				if seen[s.Path] {
					continue
				}
				seen[s.Path] = true
				skills = append(skills, s)
			}
		}
		projectDir := cfg.SkillsDir
		if !filepath.IsAbs(projectDir) {
			projectDir = filepath.Join(r.workDir, projectDir)
		}
		for _, s := range r.load(projectDir, cfg.DisplayName) {
			if seen[s.Path] {
				continue
			}
			seen[s.Path] = true
			skills = append(skills, s)
		}
	}
	r.logger.Debug("scanned skills",
		"agents", len(installed),
		"skills", len(skills))
	return skills, nil
}

func (r *Repository) load(dir, agent string) []skill.LocalSkill {
	var out []skill.LocalSkill
	for _, path := range skill.FindSkillFilesWith(dir, r.walk) {
		res := skill.ParseSkillFile(path, agent)
		if !res.OK() {
			r.logger.Debug("skipping skill file",
				"path", path,
				"reason", string(res.Reason),
				"error", errString(res.Err))
			continue
		}
		out = append(out, *res.Skill)
	}
	return out
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
