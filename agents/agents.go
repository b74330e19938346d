// Package agents holds the table of AI coding agents whose skills are
// searched, along with the probes that decide whether each one is installed.
package agents

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/gobwas/glob"
	"golang.org/x/sync/errgroup"
)

// ErrUnknownAgent is returned for an agent identifier that is not in the
// registry.
var ErrUnknownAgent = errors.New("unknown agent")

// Config describes where an agent keeps its skills.
type Config struct {
	// Name is the agent identifier, e.g. "claude-code".
	Name string

	// DisplayName is shown to users and stored on every skill found for the
	// agent, e.g. "Claude Code".
	DisplayName string

	// SkillsDir is the project skills directory, relative to the working
	// directory.
	SkillsDir string

	// GlobalSkillsDir is the absolute user-level skills directory, or "" when
	// the agent has none.
	GlobalSkillsDir string

	// DetectInstalled reports whether the agent appears to be installed.
	DetectInstalled func(ctx context.Context) bool
}

// Registry is an ordered, read-only set of agent configurations.
type Registry struct {
	agents []Config
	index  map[string]int
}

// NewRegistryFrom builds a registry from explicit configurations. Later
// entries with a duplicate name are ignored.
func NewRegistryFrom(configs ...Config) *Registry {
	r := &Registry{index: make(map[string]int, len(configs))}
	for _, c := range configs {
		if _, exists := r.index[c.Name]; exists {
			continue
		}
		if c.DetectInstalled == nil {
			c.DetectInstalled = func(context.Context) bool { return false }
		}
		r.index[c.Name] = len(r.agents)
		r.agents = append(r.agents, c)
	}
	return r
}

// NewRegistry returns the built-in agent table rooted at the given home
// directory.
func NewRegistry(home string) *Registry {
	return NewRegistryFrom(builtin(home)...)
}

// DefaultRegistry returns the built-in agent table for the current user.
func DefaultRegistry() (*Registry, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting home directory: %w", err)
	}
	return NewRegistry(home), nil
}

// Get returns the configuration for id.
func (r *Registry) Get(id string) (Config, error) {
	i, ok := r.index[id]
	if !ok {
		return Config{}, fmt.Errorf("%w: %s", ErrUnknownAgent, id)
	}
	return r.agents[i], nil
}

// All returns every configuration in registry order.
func (r *Registry) All() []Config {
	out := make([]Config, len(r.agents))
	copy(out, r.agents)
	return out
}

// IDs returns every agent identifier in registry order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.agents))
	for _, a := range r.agents {
		ids = append(ids, a.Name)
	}
	return ids
}

// DetectInstalled runs every probe concurrently and returns the identifiers of
// the agents that reported installed, in registry order.
func (r *Registry) DetectInstalled(ctx context.Context) []string {
	installed := make([]bool, len(r.agents))
	// Probes report false instead of failing, so Wait only joins.
	var g errgroup.Group
	for i, a := range r.agents {
		g.Go(func() error {
			installed[i] = a.DetectInstalled(ctx)
			return nil
		})
	}
	g.Wait()

	var ids []string
	for i, ok := range installed {
		if ok {
			ids = append(ids, r.agents[i].Name)
		}
	}
	return ids
}

// Match returns the identifiers matching pattern in registry order. The
// pattern uses glob syntax ("claude*", "{codex,cursor}"); a plain identifier
// matches itself. No match is reported as ErrUnknownAgent.
func (r *Registry) Match(pattern string) ([]string, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid agent pattern %q: %w", pattern, err)
	}
	var ids []string
	for _, a := range r.agents {
		if g.Match(a.Name) {
			ids = append(ids, a.Name)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAgent, pattern)
	}
	return ids, nil
}

// Restrict returns a registry holding only the agents matching any of the
// patterns. An empty pattern list returns r unchanged.
func (r *Registry) Restrict(patterns []string) (*Registry, error) {
	if len(patterns) == 0 {
		return r, nil
	}
	keep := make(map[string]bool)
	for _, p := range patterns {
		ids, err := r.Match(p)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			keep[id] = true
		}
	}
	var configs []Config
	for _, a := range r.agents {
		if keep[a.Name] {
			configs = append(configs, a)
		}
	}
	return NewRegistryFrom(configs...), nil
}

// dirExists is the probe for agents detected by a configuration directory.
func dirExists(paths ...string) func(context.Context) bool {
	return func(context.Context) bool {
		for _, p := range paths {
			if info, err := os.Stat(p); err == nil && info.IsDir() {
				return true
			}
		}
		return false
	}
}

// onPath is the probe for agents detected by their executable.
func onPath(binaries ...string) func(context.Context) bool {
	return func(context.Context) bool {
		for _, b := range binaries {
			if _, err := exec.LookPath(b); err == nil {
				return true
			}
		}
		return false
	}
}

// envSet is the probe for agents detected by an environment variable.
func envSet(name string) func(context.Context) bool {
	return func(context.Context) bool {
		return os.Getenv(name) != ""
	}
}

func anyOf(probes ...func(context.Context) bool) func(context.Context) bool {
	return func(ctx context.Context) bool {
		for _, p := range probes {
			if ctx.Err() != nil {
				return false
			}
			if p(ctx) {
				return true
			}
		}
		return false
	}
}

// builtin is the agent table, in the order agents are scanned. Replit has no
// user-level skills directory and is detected by its workspace environment.
func builtin(home string) []Config {
	h := func(parts ...string) string {
		return filepath.Join(append([]string{home}, parts...)...)
	}
	return []Config{
		{
			Name:            "amp",
			DisplayName:     "Amp",
			SkillsDir:       ".agents/skills",
			GlobalSkillsDir: h(".config", "agents", "skills"),
			DetectInstalled: anyOf(dirExists(h(".config", "amp")), onPath("amp")),
		},
		{
			Name:            "antigravity",
			DisplayName:     "Antigravity",
			SkillsDir:       ".agent/skills",
			GlobalSkillsDir: h(".gemini", "antigravity", "skills"),
			DetectInstalled: anyOf(dirExists(h(".gemini", "antigravity")), onPath("antigravity")),
		},
		{
			Name:            "augment",
			DisplayName:     "Augment",
			SkillsDir:       ".augment/skills",
			GlobalSkillsDir: h(".augment", "skills"),
			DetectInstalled: dirExists(h(".augment")),
		},
		{
			Name:            "claude-code",
			DisplayName:     "Claude Code",
			SkillsDir:       ".claude/skills",
			GlobalSkillsDir: h(".claude", "skills"),
			DetectInstalled: anyOf(dirExists(h(".claude")), onPath("claude")),
		},
		{
			Name:            "openclaw",
			DisplayName:     "OpenClaw",
			SkillsDir:       "skills",
			GlobalSkillsDir: h(".openclaw", "skills"),
			DetectInstalled: anyOf(dirExists(h(".openclaw")), onPath("openclaw")),
		},
		{
			Name:            "cline",
			DisplayName:     "Cline",
			SkillsDir:       ".cline/skills",
			GlobalSkillsDir: h(".cline", "skills"),
			DetectInstalled: dirExists(h(".cline")),
		},
		{
			Name:            "codebuddy",
			DisplayName:     "CodeBuddy",
			SkillsDir:       ".codebuddy/skills",
			GlobalSkillsDir: h(".codebuddy", "skills"),
			DetectInstalled: dirExists(h(".codebuddy")),
		},
		{
			Name:            "codex",
			DisplayName:     "Codex",
			SkillsDir:       ".codex/skills",
			GlobalSkillsDir: h(".codex", "skills"),
			DetectInstalled: anyOf(dirExists(h(".codex")), onPath("codex")),
		},
		{
			Name:            "command-code",
			DisplayName:     "Command Code",
			SkillsDir:       ".commandcode/skills",
			GlobalSkillsDir: h(".commandcode", "skills"),
			DetectInstalled: dirExists(h(".commandcode")),
		},
		{
			Name:            "continue",
			DisplayName:     "Continue",
			SkillsDir:       ".continue/skills",
			GlobalSkillsDir: h(".continue", "skills"),
			DetectInstalled: dirExists(h(".continue")),
		},
		{
			Name:            "crush",
			DisplayName:     "Crush",
			SkillsDir:       ".crush/skills",
			GlobalSkillsDir: h(".config", "crush", "skills"),
			DetectInstalled: anyOf(dirExists(h(".config", "crush")), onPath("crush")),
		},
		{
			Name:            "cursor",
			DisplayName:     "Cursor",
			SkillsDir:       ".cursor/skills",
			GlobalSkillsDir: h(".cursor", "skills"),
			DetectInstalled: dirExists(h(".cursor")),
		},
		{
			Name:            "droid",
			DisplayName:     "Droid",
			SkillsDir:       ".factory/skills",
			GlobalSkillsDir: h(".factory", "skills"),
			DetectInstalled: anyOf(dirExists(h(".factory")), onPath("droid")),
		},
		{
			Name:            "gemini-cli",
			DisplayName:     "Gemini CLI",
			SkillsDir:       ".gemini/skills",
			GlobalSkillsDir: h(".gemini", "skills"),
			DetectInstalled: anyOf(dirExists(h(".gemini")), onPath("gemini")),
		},
		{
			Name:            "github-copilot",
			DisplayName:     "GitHub Copilot",
			SkillsDir:       ".github/skills",
			GlobalSkillsDir: h(".copilot", "skills"),
			DetectInstalled: anyOf(dirExists(h(".copilot")), onPath("copilot")),
		},
		{
			Name:            "goose",
			DisplayName:     "Goose",
			SkillsDir:       ".goose/skills",
			GlobalSkillsDir: h(".config", "goose", "skills"),
			DetectInstalled: anyOf(dirExists(h(".config", "goose")), onPath("goose")),
		},
		{
			Name:            "iflow-cli",
			DisplayName:     "iFlow CLI",
			SkillsDir:       ".iflow/skills",
			GlobalSkillsDir: h(".iflow", "skills"),
			DetectInstalled: anyOf(dirExists(h(".iflow")), onPath("iflow")),
		},
		{
			Name:            "junie",
			DisplayName:     "Junie",
			SkillsDir:       ".junie/skills",
			GlobalSkillsDir: h(".junie", "skills"),
			DetectInstalled: dirExists(h(".junie")),
		},
		{
			Name:            "kilo",
			DisplayName:     "Kilo Code",
			SkillsDir:       ".kilocode/skills",
			GlobalSkillsDir: h(".kilocode", "skills"),
			DetectInstalled: dirExists(h(".kilocode")),
		},
		{
			Name:            "kimi-cli",
			DisplayName:     "Kimi Code CLI",
			SkillsDir:       ".agents/skills",
			GlobalSkillsDir: h(".config", "agents", "skills"),
			DetectInstalled: anyOf(dirExists(h(".kimi")), onPath("kimi")),
		},
		{
			Name:            "kiro-cli",
			DisplayName:     "Kiro CLI",
			SkillsDir:       ".kiro/skills",
			GlobalSkillsDir: h(".kiro", "skills"),
			DetectInstalled: anyOf(dirExists(h(".kiro")), onPath("kiro-cli")),
		},
		{
			Name:            "kode",
			DisplayName:     "Kode",
			SkillsDir:       ".kode/skills",
			GlobalSkillsDir: h(".kode", "skills"),
			DetectInstalled: dirExists(h(".kode")),
		},
		{
			Name:            "mcpjam",
			DisplayName:     "MCPJam",
			SkillsDir:       ".mcpjam/skills",
			GlobalSkillsDir: h(".mcpjam", "skills"),
			DetectInstalled: dirExists(h(".mcpjam")),
		},
		{
			Name:            "mistral-vibe",
			DisplayName:     "Mistral Vibe",
			SkillsDir:       ".vibe/skills",
			GlobalSkillsDir: h(".vibe", "skills"),
			DetectInstalled: anyOf(dirExists(h(".vibe")), onPath("vibe")),
		},
		{
			Name:            "mux",
			DisplayName:     "Mux",
			SkillsDir:       ".mux/skills",
			GlobalSkillsDir: h(".mux", "skills"),
			DetectInstalled: dirExists(h(".mux")),
		},
		{
			Name:            "neovate",
			DisplayName:     "Neovate",
			SkillsDir:       ".neovate/skills",
			GlobalSkillsDir: h(".neovate", "skills"),
			DetectInstalled: dirExists(h(".neovate")),
		},
		{
			Name:            "opencode",
			DisplayName:     "OpenCode",
			SkillsDir:       ".opencode/skills",
			GlobalSkillsDir: h(".config", "opencode", "skills"),
			DetectInstalled: anyOf(dirExists(h(".config", "opencode")), onPath("opencode")),
		},
		{
			Name:            "openhands",
			DisplayName:     "OpenHands",
			SkillsDir:       ".openhands/skills",
			GlobalSkillsDir: h(".openhands", "skills"),
			DetectInstalled: anyOf(dirExists(h(".openhands")), onPath("openhands")),
		},
		{
			Name:            "pi",
			DisplayName:     "Pi",
			SkillsDir:       ".pi/skills",
			GlobalSkillsDir: h(".pi", "agent", "skills"),
			DetectInstalled: dirExists(h(".pi", "agent")),
		},
		{
			Name:            "qoder",
			DisplayName:     "Qoder",
			SkillsDir:       ".qoder/skills",
			GlobalSkillsDir: h(".qoder", "skills"),
			DetectInstalled: dirExists(h(".qoder")),
		},
		{
			Name:            "qwen-code",
			DisplayName:     "Qwen Code",
			SkillsDir:       ".qwen/skills",
			GlobalSkillsDir: h(".qwen", "skills"),
			DetectInstalled: anyOf(dirExists(h(".qwen")), onPath("qwen")),
		},
		{
			Name:            "replit",
			DisplayName:     "Replit",
			SkillsDir:       ".agent/skills",
			DetectInstalled: envSet("REPL_ID"),
		},
		{
			Name:            "roo",
			DisplayName:     "Roo Code",
			SkillsDir:       ".roo/skills",
			GlobalSkillsDir: h(".roo", "skills"),
			DetectInstalled: dirExists(h(".roo")),
		},
		{
			Name:            "trae",
			DisplayName:     "Trae",
			SkillsDir:       ".trae/skills",
			GlobalSkillsDir: h(".trae", "skills"),
			DetectInstalled: dirExists(h(".trae")),
		},
		{
			Name:            "trae-cn",
			DisplayName:     "Trae CN",
			SkillsDir:       ".trae/skills",
			GlobalSkillsDir: h(".trae-cn", "skills"),
			DetectInstalled: dirExists(h(".trae-cn")),
		},
		{
			Name:            "windsurf",
			DisplayName:     "Windsurf",
			SkillsDir:       ".windsurf/skills",
			GlobalSkillsDir: h(".codeium", "windsurf", "skills"),
			DetectInstalled: dirExists(h(".codeium", "windsurf")),
		},
		{
			Name:            "zencoder",
			DisplayName:     "Zencoder",
			SkillsDir:       ".zencoder/skills",
			GlobalSkillsDir: h(".zencoder", "skills"),
			DetectInstalled: dirExists(h(".zencoder")),
		},
		{
			Name:            "pochi",
			DisplayName:     "Pochi",
			SkillsDir:       ".pochi/skills",
			GlobalSkillsDir: h(".pochi", "skills"),
			DetectInstalled: dirExists(h(".pochi")),
		},
		{
			Name:            "adal",
			DisplayName:     "AdaL",
			SkillsDir:       ".adal/skills",
			GlobalSkillsDir: h(".adal", "skills"),
			DetectInstalled: dirExists(h(".adal")),
		},
	}
}
