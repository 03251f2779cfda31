// Package console is the interactive terminal surface of the pipeline: a
// readline-backed language prompt and the progress lines printed while a
// run moves through its stages.
package console

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/chzyer/readline"

	"github.com/tendant/simple-caption-pipeline/internal/imageprep"
)

// LineReader reads one line of user input after showing a prompt
type LineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
}

// Completer is implemented by readers that offer tab completion
type Completer interface {
	SetCompletions(items []string)
}

// Terminal is a LineReader on the process terminal with tab completion
type Terminal struct {
	rl *readline.Instance

	mu    sync.Mutex
	items []string
}

// NewTerminal opens the terminal for line editing
func NewTerminal() (*Terminal, error) {
	t := &Terminal{}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		AutoComplete:    readline.NewPrefixCompleter(readline.PcItemDynamic(t.complete)),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}
	t.rl = rl
	return t, nil
}

// Readline implements LineReader
func (t *Terminal) Readline() (string, error) {
	return t.rl.Readline()
}

// SetPrompt implements LineReader
func (t *Terminal) SetPrompt(prompt string) {
	t.rl.SetPrompt(prompt)
}

// SetCompletions replaces the tab completion candidates
func (t *Terminal) SetCompletions(items []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.items = append([]string(nil), items...)
}

func (t *Terminal) complete(line string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.items
}

// Stdout is the terminal output that does not clobber the prompt line
func (t *Terminal) Stdout() io.Writer {
	return t.rl.Stdout()
}

// Close restores the terminal
func (t *Terminal) Close() error {
	return t.rl.Close()
}

// ImageFiles lists the image files in dir, sorted by name
func ImageFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() && imageprep.HasImageExtension(e.Name()) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files
}

// AskImagePath prompts for an image path, completing image files of the
// working directory. An empty answer returns "".
func AskImagePath(in LineReader) (string, error) {
	if c, ok := in.(Completer); ok {
		c.SetCompletions(ImageFiles("."))
	}
	in.SetPrompt("Image path: ")

	line, err := in.Readline()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
