// Package pdf extracts text from PDF papers using poppler's pdftotext.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/paperpilot/internal/core/domain"
	"github.com/custodia-labs/paperpilot/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// DefaultCommand is the extraction tool looked up on PATH.
const DefaultCommand = domain.DefaultPDFCommand

// ErrPDFToolNotFound indicates pdftotext is not installed.
var ErrPDFToolNotFound = fmt.Errorf("%w: pdftotext not found in PATH", domain.ErrExtraction)

// CommandRunner runs an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner runs commands with os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if _, err := exec.LookPath(name); err != nil {
		return nil, ErrPDFToolNotFound
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return out, nil
}

// Extractor turns PDF files or uploaded PDF bytes into plain text.
type Extractor struct {
	command string
	runner  CommandRunner
}

// New creates an extractor that runs the given command (default: pdftotext).
func New(command string) *Extractor {
	return NewWithRunner(command, execRunner{})
}

// NewWithRunner creates an extractor with a custom command runner.
func NewWithRunner(command string, runner CommandRunner) *Extractor {
	if command == "" {
		command = DefaultCommand
	}
	return &Extractor{command: command, runner: runner}
}

// Supports reports whether the file name has a .pdf extension.
func (e *Extractor) Supports(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

// Extract returns the text of every page, in page order.
// In-memory documents are spilled to a temporary file first.
func (e *Extractor) Extract(ctx context.Context, doc domain.Document) (string, error) {
	if err := doc.Validate(); err != nil {
		return "", err
	}

	path := doc.Path
	if doc.HasData() {
		tmp, cleanup, err := spill(doc.Data)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %w", domain.ErrExtraction, doc.Name, err)
		}
		defer cleanup()
		path = tmp
	}

	out, err := e.runner.Run(ctx, e.command, "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		if errors.Is(err, ErrPDFToolNotFound) {
			return "", err
		}
		return "", fmt.Errorf("%w: %s: pdftotext failed: %w", domain.ErrExtraction, doc.Name, err)
	}

	return pageText(out), nil
}

// pageText joins pdftotext's form-feed separated pages with newlines.
func pageText(out []byte) string {
	pages := strings.Split(string(out), "\f")
	for len(pages) > 0 && strings.TrimSpace(pages[len(pages)-1]) == "" {
		pages = pages[:len(pages)-1]
	}
	return strings.Join(pages, "\n")
}

func spill(data []byte) (string, func(), error) {
	f, err := os.CreateTemp("", "paperpilot-*.pdf")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { _ = os.Remove(f.Name()) }

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		cleanup()
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, err
	}
	return f.Name(), cleanup, nil
}

// CheckAvailable returns nil if the extraction tool is installed.
func CheckAvailable() error {
	if _, err := exec.LookPath(DefaultCommand); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions returns platform-specific install hints for pdftotext.
func InstallInstructions() string {
	return `pdftotext is required to read PDF papers. Install poppler:
  macOS:         brew install poppler
  Debian/Ubuntu: sudo apt install poppler-utils
  Fedora:        sudo dnf install poppler-utils
  Windows:       choco install poppler`
}
