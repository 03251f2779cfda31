package console

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/tendant/simple-caption-pipeline/internal/languages"
)

// LanguageHint is printed once before the first language prompt
const LanguageHint = "Enter a target language code for translation (e.g., 'en' for English, 'fr' for French, 'de' for German):"

// Prompter asks the user for a target language code
type Prompter struct {
	in  LineReader
	out io.Writer
}

// NewPrompter creates a prompter reading from in and writing to out
func NewPrompter(in LineReader, out io.Writer) *Prompter {
	return &Prompter{in: in, out: out}
}

// Announce prints the catalog size and the prompt hint
func (p *Prompter) Announce(catalog *languages.Catalog) {
	fmt.Fprintf(p.out, "%d languages supported.\n", catalog.Len())
	fmt.Fprintln(p.out, LanguageHint)

	if c, ok := p.in.(Completer); ok {
		c.SetCompletions(catalog.Codes())
	}
}

// NextCode reads one code. EOF and interrupts end the run.
func (p *Prompter) NextCode(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	p.in.SetPrompt("Target language: ")
	line, err := p.in.Readline()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Rejected tells the user the code is not supported
func (p *Prompter) Rejected(code string) {
	fmt.Fprintf(p.out, "%s is not a supported language. Please try again.\n", code)
}
