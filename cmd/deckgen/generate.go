package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lessondeck/internal/config"
	"github.com/phrazzld/lessondeck/internal/deck"
	"github.com/phrazzld/lessondeck/internal/domain"
	"github.com/phrazzld/lessondeck/internal/export"
	"github.com/phrazzld/lessondeck/internal/platform/gemini"
	"github.com/phrazzld/lessondeck/internal/platform/logger"
	"github.com/phrazzld/lessondeck/internal/platform/redis"
	"github.com/spf13/cobra"
)

type generateFlags struct {
	input string
	pdf   string
	doc   string
	json  string
}

func newGenerateCmd() *cobra.Command {
	var f generateFlags

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run the deck pipeline on a lesson and write the exports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.input, "input", "i", "", "lesson JSON file, or - for stdin")
	flags.StringVar(&f.pdf, "pdf", "", "write the slide PDF to this path")
	flags.StringVar(&f.doc, "doc", "", "write the Word document to this path")
	flags.StringVar(&f.json, "json", "", "write the deck as JSON to this path")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func runGenerate(cmd *cobra.Command, f generateFlags) error {
	ctx := cmd.Context()

	in, err := readInput(f.input, cmd.InOrStdin())
	if err != nil {
		return err
	}

	cfg, err := config.LoadGeneration()
	if err != nil {
		return err
	}
	log, err := logger.Setup(logger.LoggerConfig{Level: cfg.Server.LogLevel, Output: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}

	var cache deck.ImageCache
	if cfg.Cache.RedisAddr != "" {
		c, closeFn, err := redis.Connect(ctx, cfg.Cache, log)
		if err != nil {
			log.Warn("image cache unavailable, continuing without it", "error", err)
		} else {
			defer closeFn()
			cache = c
		}
	}

	generator, err := gemini.NewGenerator(ctx, log, cfg.LLM)
	if err != nil {
		return err
	}
	opts, err := deck.OptionsFromConfig(cfg.LLM, cfg.Generation, cache)
	if err != nil {
		return err
	}
	pipeline := deck.NewPipeline(generator, generator, opts, log)

	progress := pipeline.NewProgress()
	stopReport := reportProgress(ctx, cmd.ErrOrStderr(), progress)
	res := pipeline.Build(ctx, in, progress)
	stopReport()

	d := deckFromResult(res)
	printSummary(cmd.OutOrStdout(), d)

	exporter, err := export.NewExporter(mustFonts(cfg.Export, log))
	if err != nil {
		return err
	}
	if err := writeOutputs(f, d, exporter); err != nil {
		return err
	}

	if res.Err != nil {
		return fmt.Errorf("content generation failed: %w", res.Err)
	}
	return nil
}

// deckFromResult wraps a pipeline result in a deck so the exporters can
// render it without a stored lesson plan.
func deckFromResult(res deck.Result) *domain.Deck {
	now := time.Now().UTC()
	d := &domain.Deck{
		ID:        uuid.New(),
		Status:    res.Status(),
		Content:   res.Content,
		Images:    res.Images,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if res.Err != nil {
		d.ErrorMessage = res.Err.Error()
	}
	d.Normalize()
	return d
}

func mustFonts(cfg config.ExportConfig, log *slog.Logger) export.Fonts {
	fonts, err := export.LoadFonts(cfg.FontRegular, cfg.FontBold)
	if err != nil {
		log.Warn("falling back to bundled fonts", "error", err)
		return export.DefaultFonts()
	}
	return fonts
}

func writeOutputs(f generateFlags, d *domain.Deck, exporter *export.Exporter) error {
	var errs []error
	write := func(path string, render func(io.Writer) error) {
		if path == "" {
			return
		}
		var buf bytes.Buffer
		if err := render(&buf); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			return
		}
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			errs = append(errs, err)
		}
	}

	write(f.json, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	})
	write(f.pdf, func(w io.Writer) error { return exporter.DeckPDF(w, d) })
	write(f.doc, func(w io.Writer) error { return exporter.DeckDoc(w, d) })

	return errors.Join(errs...)
}

func printSummary(w io.Writer, d *domain.Deck) {
	fmt.Fprintf(w, "status: %s\n", d.Status)
	for _, k := range domain.SlideKeys() {
		content := "ok"
		if d.Content.IsError(k) {
			content = "error"
		} else if !d.Content.Usable(k) {
			content = "empty"
		}
		fmt.Fprintf(w, "  %-12s content=%-5s image=%s\n", k, content, d.Images.State(k))
	}
}

// reportProgress prints the progress value to w once a second until the
// returned stop function is called.
func reportProgress(ctx context.Context, w io.Writer, p *deck.Progress) func() {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fmt.Fprintf(w, "\rprogress: %3d%%", p.Value())
			}
		}
	}()
	return func() {
		cancel()
		<-done
		fmt.Fprintf(w, "\rprogress: %3d%%\n", p.Value())
	}
}
