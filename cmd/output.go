package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/spigell/shiftmatch/internal/ranking"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

// printer writes command results to stdout. Logs go to stderr.
type printer struct {
	format string
	w      io.Writer
}

func newPrinter(format string) (*printer, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case "":
		format = outputText
	case outputText, outputJSON, outputYAML:
	default:
		return nil, fmt.Errorf("unsupported output format %q: use %s, %s or %s", format, outputText, outputJSON, outputYAML)
	}
	return &printer{format: format, w: os.Stdout}, nil
}

// print renders v as json or yaml, or calls text for the text format.
func (p *printer) print(v any, text func(w io.Writer)) error {
	switch p.format {
	case outputJSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		text(p.w)
		return nil
	}
}

// terminalNotifier reports ranking outcomes on stderr.
type terminalNotifier struct {
	w io.Writer
}

func (n terminalNotifier) Success(msg string) {
	fmt.Fprintln(n.w, msg)
}

// Failure prints selection problems as they are; anything else is a failed ranking.
func (n terminalNotifier) Failure(err error) {
	if errors.Is(err, ranking.ErrSelectionRequired) || errors.Is(err, ranking.ErrUnknownSelection) {
		fmt.Fprintln(n.w, err)
		return
	}
	fmt.Fprintf(n.w, "ranking failed: %v\n", err)
}
