package cmdutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/29next/devdocs/document"
	"github.com/29next/devdocs/system"
)

// Processor handles reading and writing API descriptions for a command and reports
// progress to stderr.
type Processor struct {
	InputFile     string
	OutputFile    string
	ReadFromStdin bool
	WriteToStdout bool
	Verbose       bool

	// Optional overrides for testing. When nil, os.Stdin/os.Stdout/os.Stderr and the
	// operating system's files are used.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	FS     system.VirtualFS
}

func (p *Processor) stdin() io.Reader {
	if p.Stdin != nil {
		return p.Stdin
	}
	return os.Stdin
}

func (p *Processor) stdout() io.Writer {
	if p.Stdout != nil {
		return p.Stdout
	}
	return os.Stdout
}

func (p *Processor) stderr() io.Writer {
	if p.Stderr != nil {
		return p.Stderr
	}
	return os.Stderr
}

// Files returns the file system documents are read from and written to.
func (p *Processor) Files() system.VirtualFS {
	if p.FS != nil {
		return p.FS
	}
	return &system.FileSystem{}
}

// NewProcessor creates a processor for the given input and output files.
// Pass "-" as inputFile to read from stdin.
func NewProcessor(inputFile, outputFile string, writeInPlace bool) (*Processor, error) {
	readFromStdin := IsStdin(inputFile)

	if writeInPlace {
		if readFromStdin {
			return nil, errors.New("cannot use --write flag when reading from stdin")
		}
		if outputFile != "" {
			return nil, errors.New("cannot specify output file when using --write flag")
		}
		outputFile = inputFile
	}

	return &Processor{
		InputFile:     inputFile,
		OutputFile:    outputFile,
		ReadFromStdin: readFromStdin,
		WriteToStdout: outputFile == "" || IsStdin(outputFile),
	}, nil
}

// LoadDocument reads the input file, or stdin, as an API description.
func (p *Processor) LoadDocument(ctx context.Context) (*document.Document, error) {
	if p.ReadFromStdin {
		fmt.Fprintf(p.stderr(), "Processing API description from stdin\n")
		return document.Unmarshal(ctx, p.stdin())
	}

	fmt.Fprintf(p.stderr(), "Processing API description: %s\n", filepath.Clean(p.InputFile))
	return p.ReadDocument(ctx, p.InputFile)
}

// ReadDocument reads the API description at path.
func (p *Processor) ReadDocument(ctx context.Context, path string) (*document.Document, error) {
	f, err := p.Files().Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	doc, err := document.Unmarshal(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", path, err)
	}

	return doc, nil
}

// WriteDocument writes doc to the output file, or stdout.
func (p *Processor) WriteDocument(ctx context.Context, doc *document.Document) error {
	if p.WriteToStdout {
		return document.Marshal(ctx, doc, p.stdout())
	}

	return p.SaveDocument(ctx, p.OutputFile, doc)
}

// SaveDocument writes doc to path, creating missing directories.
func (p *Processor) SaveDocument(ctx context.Context, path string, doc *document.Document) error {
	var buf bytes.Buffer
	if err := document.Marshal(ctx, doc, &buf); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}

	return p.WriteFile(path, buf.Bytes())
}

// WriteFile writes data to path, or to stdout when path is "-".
func (p *Processor) WriteFile(path string, data []byte) error {
	if IsStdin(path) {
		_, err := p.stdout().Write(data)
		return err
	}

	cleanPath := filepath.Clean(path)
	if err := p.Files().WriteFile(cleanPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", cleanPath, err)
	}

	fmt.Fprintf(p.stderr(), "📄 Written to: %s\n", cleanPath)

	return nil
}

// ReportElapsed prints how long action took to stderr.
func (p *Processor) ReportElapsed(action string, elapsed time.Duration) {
	ReportElapsed(p.stderr(), action, elapsed)
}

// PrintSuccess prints a success message to stderr.
func (p *Processor) PrintSuccess(message string) {
	fmt.Fprintf(p.stderr(), "✅ %s\n", message)
}

// PrintInfo prints an info message to stderr.
func (p *Processor) PrintInfo(message string) {
	fmt.Fprintf(p.stderr(), "📋 %s\n", message)
}

// PrintVerbose prints an info message to stderr when Verbose is set.
func (p *Processor) PrintVerbose(message string) {
	if p.Verbose {
		p.PrintInfo(message)
	}
}

// PrintWarning prints a warning message to stderr.
func (p *Processor) PrintWarning(message string) {
	fmt.Fprintf(p.stderr(), "⚠️  Warning: %s\n", message)
}
