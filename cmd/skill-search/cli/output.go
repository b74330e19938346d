package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/deepnoodle-ai/skillsearch/remote"
	"github.com/deepnoodle-ai/skillsearch/skill"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

var (
	headerStyle  = color.New(color.FgCyan, color.Bold)
	boldStyle    = color.New(color.Bold)
	agentStyle   = color.New(color.FgCyan)
	sourceStyle  = color.New(color.FgMagenta)
	successStyle = color.New(color.FgGreen)
	warningStyle = color.New(color.FgYellow, color.Bold)
	errorStyle   = color.New(color.FgRed)
	mutedStyle   = color.New(color.FgHiBlack)
)

const (
	checkmark = "✓"
	xmark     = "✗"
	dot       = "·"

	defaultWidth = 80
	maxWidth     = 120
	indent       = "    "
)

// renderer writes human-readable output wrapped to the terminal width.
type renderer struct {
	w     io.Writer
	width int
}

func newRenderer(w io.Writer) *renderer {
	return &renderer{w: w, width: terminalWidth(w)}
}

func (r *renderer) line(s string) {
	fmt.Fprintln(r.w, s)
}

func (r *renderer) blank() {
	fmt.Fprintln(r.w)
}

func (r *renderer) header(s string) {
	r.line(headerStyle.Sprint(s))
}

func (r *renderer) localSkills(skills []skill.LocalSkill, showInternal bool) {
	if len(skills) == 0 {
		r.line(mutedStyle.Sprint("No local skills found"))
		return
	}
	r.header(fmt.Sprintf("Local skills (%d)", len(skills)))
	for _, s := range skills {
		title := "  " + boldStyle.Sprint(s.Name) + " " + agentStyle.Sprintf("[%s]", s.Agent)
		if showInternal && s.Internal {
			title += " " + warningStyle.Sprint("(internal)")
		}
		r.line(title)
		r.line(indent + mutedStyle.Sprint(shortenHome(s.Path)))
		for _, l := range wrapText(s.Description, r.width-len(indent)) {
			r.line(indent + l)
		}
	}
}

func (r *renderer) remoteSkills(skills []remote.Skill) {
	if len(skills) == 0 {
		r.line(mutedStyle.Sprint("No remote skills found"))
		return
	}
	r.header(fmt.Sprintf("Remote skills from skills.sh (%d)", len(skills)))
	for _, s := range skills {
		r.line(fmt.Sprintf("  %s %s %s",
			boldStyle.Sprint(s.Name),
			sourceStyle.Sprint(s.Source),
			mutedStyle.Sprintf("(%s)", plural(s.Installs, "install"))))
		for _, l := range wrapText(s.Description, r.width-len(indent)) {
			r.line(indent + l)
		}
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// terminalWidth returns the width of w when it is a terminal, capped at
// maxWidth, and defaultWidth otherwise.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return defaultWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return defaultWidth
	}
	return min(width, maxWidth)
}

// wrapText breaks text into lines no wider than width display cells. Words
// wider than width get a line of their own. Runs of whitespace collapse.
func wrapText(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if width < 20 {
		width = 20
	}
	var (
		lines []string
		cur   strings.Builder
		used  int
	)
	for _, word := range words {
		ww := runewidth.StringWidth(word)
		if used > 0 && used+1+ww > width {
			lines = append(lines, cur.String())
			cur.Reset()
			used = 0
		}
		if used > 0 {
			cur.WriteByte(' ')
			used++
		}
		cur.WriteString(word)
		used += ww
	}
	return append(lines, cur.String())
}

// shortenHome replaces the user's home directory prefix with ~.
func shortenHome(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if path == home {
		return "~"
	}
	if rel, ok := strings.CutPrefix(path, home+string(filepath.Separator)); ok {
		return filepath.Join("~", rel)
	}
	return path
}

func padRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
