package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/feichai0017/pdf-ocr/config"
	"github.com/feichai0017/pdf-ocr/internal/agent"
	"github.com/feichai0017/pdf-ocr/internal/environment"
	"github.com/feichai0017/pdf-ocr/internal/service/document"
	"github.com/feichai0017/pdf-ocr/pkg/logger"
)

type rootOptions struct {
	cfgFile  string
	input    string
	output   string
	workers  int
	logLevel string
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pdfocr",
		Short: "Convert a scanned PDF into per-page OCR text",
		Long: `pdfocr renders every page of a PDF, cleans it up for recognition
(grayscale, denoise, local contrast, Otsu binarization) and runs Japanese and
English OCR on it. Page i produces page_i.txt and debug_page_i.png in the
output directory.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.cfgFile, opts.overrides(cmd)...)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.cfgFile, "config", "c", "", "config file path")
	flags.StringVarP(&opts.input, "input", "i", "", "PDF to convert")
	flags.StringVarP(&opts.output, "output", "o", "", "output directory")
	flags.IntVarP(&opts.workers, "workers", "w", 1, "pages processed in parallel")
	flags.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error")
	return cmd
}

// overrides returns config options for the flags set on the command line.
func (o *rootOptions) overrides(cmd *cobra.Command) []config.Option {
	var opts []config.Option
	flags := cmd.Flags()
	if flags.Changed("input") {
		opts = append(opts, config.WithInputPath(o.input))
	}
	if flags.Changed("output") {
		opts = append(opts, config.WithOutputDir(o.output))
	}
	if flags.Changed("workers") {
		opts = append(opts, config.WithWorkers(o.workers))
	}
	if flags.Changed("log-level") {
		opts = append(opts, config.WithLogLevel(o.logLevel))
	}
	return opts
}

func run(ctx context.Context, cfg *config.Config) error {
	log, err := logger.NewLogger(logger.WithConfig(cfg.Log))
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	env := environment.Resolve(cfg, nil)
	converter, err := buildConverter(ctx, cfg, env, log)
	if err != nil {
		log.Error("Failed to set up pipeline", logger.Error(err))
		return err
	}
	defer func() {
		if err := converter.Close(); err != nil {
			log.Warn("Failed to release pipeline resources", logger.Error(err))
		}
	}()

	summary, err := converter.Run(ctx)
	if err != nil {
		log.Error("Conversion failed", logger.Error(err))
		return err
	}

	log.Info("Done",
		logger.String("run_id", summary.RunID),
		logger.Int("pages", len(summary.Pages)),
		logger.String("output", cfg.Output.Dir),
	)
	return nil
}

func buildConverter(ctx context.Context, cfg *config.Config, env environment.Environment, log logger.Logger) (document.DocumentConverter, error) {
	factory := agent.NewProcessorFactory(cfg, env, log)

	rasterizer, helperDir, err := factory.Rasterizer()
	if err != nil {
		return nil, err
	}
	recognizer, err := factory.Recognizer()
	if err != nil {
		return nil, err
	}
	preprocessor, err := factory.Preprocessor()
	if err != nil {
		return nil, err
	}
	store, err := factory.Storage(ctx)
	if err != nil {
		return nil, err
	}
	pool, err := factory.Pool()
	if err != nil {
		return nil, err
	}

	return document.NewConverter(cfg, env, document.Dependencies{
		Inspector:    factory.Inspector(),
		Rasterizer:   rasterizer,
		HelperDir:    helperDir,
		Preprocessor: preprocessor,
		Recognizer:   recognizer,
		Writer:       factory.Writer(store),
		Store:        store,
		Pool:         pool,
	}, log)
}
