// Command figma-report generates developer PDF reports from Figma design
// files, either one-shot from the command line or as an HTTP service.
package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	figmareport "github.com/hellenic-development/figma-report"
	"github.com/hellenic-development/figma-report/pkg/artifacts"
	"github.com/hellenic-development/figma-report/pkg/config"
	"github.com/hellenic-development/figma-report/pkg/figma"
	"github.com/hellenic-development/figma-report/pkg/server"
)

type cliLogger struct {
	verbose bool
}

func (l *cliLogger) Logf(format string, args ...interface{}) {
	if l.verbose {
		color.Cyan(format, args...)
	}
}

var (
	configPath   string
	token        string
	outputDir    string
	maxDepth     int
	markdownOut  bool
	skipDiagrams bool
	verbose      bool

	serveAddr string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "figma-report <figma-url>",
		Short: "Generate a developer PDF report from a Figma design file",
		Long: `figma-report fetches a Figma file through the REST API, extracts its
pages, frames, text content and components, and renders a PDF report
with architecture recommendations and generated diagrams.

Set FIGMA_TOKEN in the environment or pass --token. Without a token the
tool can fall back to LLM synthesis when LLM_API_KEY is set.`,
		Args: cobra.ExactArgs(1),
		RunE: runGenerate,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to TOML config file")
	rootCmd.PersistentFlags().StringVarP(&token, "token", "t", "", "Figma access token (overrides config and FIGMA_TOKEN)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline progress")

	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory for generated files")
	rootCmd.Flags().IntVar(&maxDepth, "max-depth", 0, "maximum node tree depth")
	rootCmd.Flags().BoolVar(&markdownOut, "markdown", false, "also write a markdown summary")
	rootCmd.Flags().BoolVar(&skipDiagrams, "skip-diagrams", false, "skip PNG diagram generation")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the report generation HTTP service",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("figma-report v%s\n", figma.Version)
		},
	}

	rootCmd.AddCommand(serveCmd, versionCmd)
	return rootCmd
}

func loadOptions() (*config.Config, figmareport.Options, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, figmareport.Options{}, err
	}

	if token != "" {
		cfg.Figma.AccessToken = token
	}
	if outputDir != "" {
		cfg.Server.OutputDir = outputDir
	}
	if maxDepth > 0 {
		cfg.Figma.MaxDepth = maxDepth
	}

	opts := figmareport.Options{
		FigmaToken:   cfg.Figma.AccessToken,
		FigmaBaseURL: cfg.Figma.BaseURL,
		LLMAPIKey:    cfg.LLM.APIKey,
		LLMBaseURL:   cfg.LLM.BaseURL,
		LLMModel:     cfg.LLM.Model,
		MaxDepth:     cfg.Figma.MaxDepth,
		RateLimit:    cfg.Figma.RateLimit,
		SkipDiagrams: skipDiagrams,
		Logger:       &cliLogger{verbose: verbose},
	}
	return cfg, opts, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, opts, err := loadOptions()
	if err != nil {
		return err
	}

	start := time.Now()
	result, err := figmareport.Run(cmd.Context(), args[0], opts)
	if err != nil {
		return err
	}

	store, err := artifacts.NewStore(cfg.Server.OutputDir)
	if err != nil {
		return err
	}

	pdfName, err := store.Save(result.FileName, result.PDF)
	if err != nil {
		return err
	}
	color.Green("PDF report: %s", store.Dir()+"/"+pdfName)

	if markdownOut {
		mdName := pdfName[:len(pdfName)-len(".pdf")] + ".md"
		if mdName, err = store.Save(mdName, []byte(result.Markdown)); err != nil {
			return err
		}
		color.Green("Markdown summary: %s", store.Dir()+"/"+mdName)
	}

	st := result.Structure
	fmt.Printf("%d pages, %d layers, %d text nodes, %d components", len(st.Pages), len(st.Layers), len(st.TextNodes), len(st.Components))
	if result.Synthesized {
		fmt.Print(" (synthesized)")
	}
	fmt.Printf(" in %s\n", time.Since(start).Round(time.Millisecond))
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, opts, err := loadOptions()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	store, err := artifacts.NewStore(cfg.Server.OutputDir)
	if err != nil {
		return err
	}

	opts.Logger = &cliLogger{verbose: true}
	srv := server.New(opts, store)

	color.Green("figma-report v%s listening on %s (output: %s)", figma.Version, cfg.Server.Addr, store.Dir())
	if opts.FigmaToken == "" {
		color.Yellow("Warning: no Figma token configured; only LLM synthesis will work")
	}

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return httpSrv.ListenAndServe()
}
