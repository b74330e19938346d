// Package onboard teaches installed agents about skill-search by appending
// usage instructions to their memory file (CLAUDE.md or AGENTS.md).
package onboard

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/deepnoodle-ai/skillsearch/agents"
)

// Marker identifies a memory file that already carries the instructions.
const Marker = "<!-- skill-search:onboard -->"

const (
	claudeFile = "CLAUDE.md"
	agentsFile = "AGENTS.md"
)

//go:embed instructions.md
var instructionsFile string

// Instructions is the block appended to memory files. It begins with Marker.
var Instructions = strings.TrimSpace(instructionsFile)

// ErrNoAgents is returned by Run when no agent is installed.
var ErrNoAgents = errors.New("no AI agents detected")

// Status is the outcome of onboarding one agent.
type Status string

const (
	StatusAdded            Status = "added"
	StatusAlreadyOnboarded Status = "already_onboarded"
	StatusError            Status = "error"
)

// Result describes what happened to one agent's memory file.
type Result struct {
	File   string `json:"file"`
	Agent  string `json:"agent"`
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Agents is the subset of *agents.Registry that Run needs.
type Agents interface {
	DetectInstalled(ctx context.Context) []string
	Get(id string) (agents.Config, error)
}

// Target picks the memory file in agentDir. The preferred file wins when it
// exists, then the other one, and otherwise the preferred file is created.
func Target(agentDir string, preferClaude bool) string {
	first, second := agentsFile, claudeFile
	if preferClaude {
		first, second = claudeFile, agentsFile
	}
	for _, name := range []string{first, second} {
		path := filepath.Join(agentDir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return filepath.Join(agentDir, first)
}

// Apply appends Instructions to the memory file in agentDir unless it already
// contains Marker. Failures are reported in the result, not returned.
func Apply(agentDir, agentName string, preferClaude bool) Result {
	target := Target(agentDir, preferClaude)
	result := Result{File: target, Agent: agentName}

	existing, err := os.ReadFile(target)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return result.failed(err)
	}
	if strings.Contains(string(existing), Marker) {
		result.Status = StatusAlreadyOnboarded
		return result
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return result.failed(err)
	}
	content := Instructions + "\n"
	if len(existing) > 0 {
		content = strings.TrimRightFunc(string(existing), unicode.IsSpace) + "\n\n" + content
	}
	if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
		return result.failed(err)
	}
	result.Status = StatusAdded
	return result
}

func (r Result) failed(err error) Result {
	r.Status = StatusError
	r.Error = err.Error()
	return r
}

// Run onboards every installed agent in registry order. An agent's directory
// is the parent of its global skills directory, or ~/.<name> when it has
// none. Claude Code prefers CLAUDE.md; every other agent prefers AGENTS.md.
func Run(ctx context.Context, registry Agents) ([]Result, error) {
	installed := registry.DetectInstalled(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(installed) == 0 {
		return nil, ErrNoAgents
	}

	var home string
	results := make([]Result, 0, len(installed))
	for _, id := range installed {
		cfg, err := registry.Get(id)
		if err != nil {
			results = append(results, Result{Agent: id}.failed(err))
			continue
		}
		agentDir := ""
		if cfg.GlobalSkillsDir != "" {
			agentDir = filepath.Dir(cfg.GlobalSkillsDir)
		} else {
			if home == "" {
				if home, err = os.UserHomeDir(); err != nil {
					return results, fmt.Errorf("getting home directory: %w", err)
				}
			}
			agentDir = filepath.Join(home, "."+cfg.Name)
		}
		results = append(results, Apply(agentDir, cfg.DisplayName, id == "claude-code"))
	}
	return results, nil
}

// Count returns how many results have the given status.
func Count(results []Result, status Status) int {
	n := 0
	for _, r := range results {
		if r.Status == status {
			n++
		}
	}
	return n
}
