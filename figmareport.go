package figmareport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hellenic-development/figma-report/pkg/diagram"
	"github.com/hellenic-development/figma-report/pkg/extract"
	"github.com/hellenic-development/figma-report/pkg/figma"
	"github.com/hellenic-development/figma-report/pkg/llm"
	"github.com/hellenic-development/figma-report/pkg/report"
)

// Logger receives progress messages during a pipeline run.
type Logger interface {
	Logf(format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Logf(string, ...interface{}) {}

// Options configures a report generation run.
type Options struct {
	// FigmaToken authenticates against the Figma REST API. When empty the
	// pipeline falls back to LLM synthesis if an API key is configured.
	FigmaToken string

	// FigmaBaseURL overrides the Figma API endpoint, mainly for tests.
	FigmaBaseURL string

	// LLM synthesis settings. APIKey empty disables the fallback.
	LLMAPIKey  string
	LLMBaseURL string
	LLMModel   string

	// MaxDepth bounds tree traversal; zero uses the default.
	MaxDepth int

	// RateLimit caps Figma API requests per second; zero uses the client
	// default.
	RateLimit float64

	// SkipDiagrams leaves the PNG diagrams out of the result and report.
	SkipDiagrams bool

	Logger Logger
}

func (o *Options) logger() Logger {
	if o.Logger == nil {
		return noopLogger{}
	}
	return o.Logger
}

// Result holds everything a run produces.
type Result struct {
	Structure    *extract.ParsedStructure
	PDF          []byte
	Markdown     string
	Architecture []byte
	Flow         []byte

	// FileName is the suggested download name for the PDF.
	FileName string

	// Synthesized reports that the structure came from LLM synthesis rather
	// than the Figma API.
	Synthesized bool
}

// Run executes the full pipeline for one Figma URL: resolve the file key,
// fetch (or synthesize) the file, extract its structure, render diagrams and
// the PDF report.
func Run(ctx context.Context, figmaURL string, opts Options) (*Result, error) {
	log := opts.logger()

	fileKey, err := figma.ExtractFileKey(figmaURL)
	if err != nil {
		return nil, err
	}
	log.Logf("resolved file key %s", fileKey)

	structure, synthesized, err := obtainStructure(ctx, figmaURL, fileKey, opts)
	if err != nil {
		return nil, err
	}
	log.Logf("extracted %d pages, %d layers, %d text nodes, %d components (fingerprint %s)",
		len(structure.Pages), len(structure.Layers), len(structure.TextNodes),
		len(structure.Components), structure.Fingerprint)

	result := &Result{
		Structure:   structure,
		Markdown:    report.Markdown(structure),
		FileName:    report.FileName(structure, time.Now()),
		Synthesized: synthesized,
	}

	if !opts.SkipDiagrams {
		if result.Architecture, err = diagram.Architecture(structure); err != nil {
			return nil, fmt.Errorf("rendering architecture diagram: %w", err)
		}
		if result.Flow, err = diagram.Flow(structure); err != nil {
			return nil, fmt.Errorf("rendering flow diagram: %w", err)
		}
		log.Logf("rendered diagrams")
	}

	result.PDF, err = report.Generate(structure, report.Diagrams{
		Architecture: result.Architecture,
		Flow:         result.Flow,
	})
	if err != nil {
		return nil, err
	}
	log.Logf("generated PDF report (%d bytes)", len(result.PDF))

	return result, nil
}

// obtainStructure prefers a real Figma API fetch, then falls back to LLM
// synthesis when the API is unreachable or no token was provided.
func obtainStructure(ctx context.Context, figmaURL, fileKey string, opts Options) (*extract.ParsedStructure, bool, error) {
	log := opts.logger()

	synth := llm.NewClient(opts.LLMAPIKey, opts.LLMBaseURL, opts.LLMModel)

	if opts.FigmaToken != "" {
		client := figma.NewClient(opts.FigmaToken)
		if opts.FigmaBaseURL != "" {
			client.SetBaseURL(opts.FigmaBaseURL)
		}
		client.SetRateLimit(opts.RateLimit)

		file, err := client.GetFile(ctx, fileKey)
		if err == nil {
			var extractOpts []extract.Option
			if opts.MaxDepth > 0 {
				extractOpts = append(extractOpts, extract.WithMaxDepth(opts.MaxDepth))
			}
			extractOpts = append(extractOpts, extract.WithLogf(log.Logf))

			structure, err := extract.Extract(file, extractOpts...)
			return structure, false, err
		}

		if !errors.Is(err, figma.ErrUpstreamUnavailable) || !synth.Configured() {
			return nil, false, err
		}
		log.Logf("figma API unavailable, falling back to LLM synthesis: %v", err)
	} else if !synth.Configured() {
		return nil, false, fmt.Errorf("no Figma token and no LLM API key configured: %w", figma.ErrUpstreamUnavailable)
	}

	structure, err := synth.Synthesize(ctx, figmaURL)
	if err != nil {
		return nil, false, err
	}
	return structure, true, nil
}
