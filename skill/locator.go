package skill

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/deepnoodle-ai/skillsearch/log"
)

const (
	// SkillFileName is the exact name of a skill definition file.
	SkillFileName = "SKILL.md"

	// DefaultMaxDepth is how many directory levels below a root are searched.
	DefaultMaxDepth = 3
)

// WalkOptions configures FindSkillFilesWith.
type WalkOptions struct {
	// MaxDepth bounds descent below the root. Values <= 0 mean DefaultMaxDepth.
	MaxDepth int

	// Exclude holds doublestar patterns matched against slash-separated paths
	// relative to the root. Matching directories are not entered and matching
	// files are not returned.
	Exclude []string

	// Logger receives a debug message for every entry that is skipped.
	Logger log.Logger
}

// FindSkillFiles returns the absolute paths of all SKILL.md files under root,
// searching at most maxDepth levels deep. See FindSkillFilesWith.
func FindSkillFiles(root string, maxDepth int) []string {
	return FindSkillFilesWith(root, WalkOptions{MaxDepth: maxDepth})
}

// FindSkillFilesWith walks root depth-first and returns the absolute paths of
// all files named exactly SKILL.md.
//
// Symbolic links are resolved. A link to a directory is descended into at the
// cost of one depth level, the same as a plain subdirectory, and files found
// through it are reported under the resolved target path. A link cycle
// terminates because every hop consumes depth. Each resolved path is reported
// once, in the order it was first reached, even when several links lead to it.
//
// The walk never fails. Unreadable directories, broken links and a missing
// root are skipped, so the result may be empty.
func FindSkillFilesWith(root string, opts WalkOptions) []string {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil
	}
	w := &walker{
		root:     abs,
		maxDepth: opts.MaxDepth,
		exclude:  opts.Exclude,
		logger:   log.OrNull(opts.Logger),
		seen:     make(map[string]bool),
	}
	w.walk(abs, 0)
	return w.files
}

type walker struct {
	root     string
	maxDepth int
	exclude  []string
	logger   log.Logger
	files    []string
	seen     map[string]bool
}

func (w *walker) add(path string) {
	if w.seen[path] {
		return
	}
	w.seen[path] = true
	w.files = append(w.files, path)
}

func (w *walker) walk(dir string, depth int) {
	if depth >= w.maxDepth {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			w.logger.Debug("skipping unreadable directory", "dir", dir, "error", err)
		}
		return
	}

	for _, entry := range entries {
		fullPath := filepath.Join(dir, entry.Name())
		switch {
		case entry.Type()&fs.ModeSymlink != 0:
			w.followLink(dir, fullPath, depth)
		case entry.IsDir():
			if w.excluded(fullPath) {
				continue
			}
			w.walk(fullPath, depth+1)
		case entry.Type().IsRegular() && entry.Name() == SkillFileName:
			if w.excluded(fullPath) {
				continue
			}
			w.add(fullPath)
		}
	}
}

func (w *walker) followLink(dir, linkPath string, depth int) {
	target, err := os.Readlink(linkPath)
	if err != nil {
		w.logger.Debug("skipping unreadable symlink", "path", linkPath, "error", err)
		return
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(dir, target)
	}
	info, err := os.Stat(target)
	if err != nil {
		w.logger.Debug("skipping broken symlink", "path", linkPath, "target", target, "error", err)
		return
	}
	if w.excluded(linkPath) || w.excluded(target) {
		return
	}
	switch {
	case info.IsDir():
		w.walk(target, depth+1)
	case info.Mode().IsRegular() && filepath.Base(linkPath) == SkillFileName:
		w.add(target)
	}
}

func (w *walker) excluded(path string) bool {
	if len(w.exclude) == 0 {
		return false
	}
	candidate := filepath.ToSlash(path)
	if rel, err := filepath.Rel(w.root, path); err == nil && !strings.HasPrefix(rel, "..") {
		candidate = filepath.ToSlash(rel)
	}
	for _, pattern := range w.exclude {
		if ok, err := doublestar.Match(pattern, candidate); err == nil && ok {
			w.logger.Debug("skipping excluded path", "path", path, "pattern", pattern)
			return true
		}
	}
	return false
}
