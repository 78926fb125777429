package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	attentionanalyzer "github.com/menta2k/attention-analyzer"
	"github.com/menta2k/attention-analyzer/internal/config"
	"github.com/menta2k/attention-analyzer/internal/utils"
	"github.com/menta2k/attention-analyzer/pkg/client"
	"github.com/menta2k/attention-analyzer/pkg/detection"
	"github.com/menta2k/attention-analyzer/pkg/gemini"
	"github.com/menta2k/attention-analyzer/pkg/llamacpp"
	"github.com/menta2k/attention-analyzer/pkg/ollama"
	"github.com/menta2k/attention-analyzer/pkg/processing"
	"github.com/menta2k/attention-analyzer/pkg/render"
)

const (
	defaultOllamaURL   = "http://localhost:11434"
	defaultLlamacppURL = "http://localhost:8080"
)

type analyzeOptions struct {
	saliencyMap string
	resample    bool
	noEnhance   bool
	heatmap     bool
	debug       bool
	workers     int

	faces string
	model string
	url   string

	outputDir string
	format    string
	output    string
}

func (o *analyzeOptions) register(fs *pflag.FlagSet) {
	fs.StringVarP(&o.saliencyMap, "saliency", "s", "", "precomputed saliency map (file or URL) used as the base prediction")
	fs.BoolVar(&o.resample, "resample", false, "resample a saliency map whose size differs from the image")
	fs.BoolVar(&o.noEnhance, "no-enhance", false, "skip face, text and centre-bias boosts")
	fs.BoolVar(&o.heatmap, "heatmap", false, "write a heatmap overlay for each image")
	fs.BoolVar(&o.debug, "debug", false, "write a debug overlay with hotspots and CTA candidates")
	fs.IntVarP(&o.workers, "workers", "w", runtime.NumCPU(), "number of images analysed in parallel")

	fs.StringVar(&o.faces, "faces", "", "face detection backend ("+strings.Join(config.Backends, ", ")+")")
	fs.StringVarP(&o.model, "model", "m", "", "vision model used for face detection")
	fs.StringVar(&o.url, "url", "", "vision backend URL")

	fs.StringVarP(&o.outputDir, "out", "d", "", "directory for overlay images")
	fs.StringVarP(&o.format, "format", "f", "", "overlay format (png, jpg, webp)")
	fs.StringVarP(&o.output, "output", "o", "", "write the JSON report to a file (default: stdout)")
}

// apply folds the command-line overrides into cfg.
func (o *analyzeOptions) apply(cfg *config.Config) error {
	if o.faces != "" {
		cfg.Vision.Backend = o.faces
	}
	if o.model != "" {
		cfg.Vision.Model = o.model
	}
	if o.url != "" {
		cfg.Vision.URL = o.url
	}
	if o.outputDir != "" {
		cfg.Output.OutputDir = o.outputDir
	}
	if o.format != "" {
		cfg.Output.DefaultFormat = o.format
	}
	if o.workers < 1 {
		return fmt.Errorf("--workers must be at least 1")
	}
	return cfg.Validate()
}

func newAnalyzeCmd() *cobra.Command {
	opts := &analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze <image|directory|URL>...",
		Short: "Analyse screenshots and report attention metrics",
		Long: `Analyse one or more images. Directories are searched recursively for image
files. The JSON report goes to stdout, or to --output when given.

Without --saliency a built-in edge and contrast heuristic provides the base
prediction.`,
		Example: `  attention-analyzer analyze landing.png --heatmap --debug
  attention-analyzer analyze shots/ --workers 4 -o report.json
  attention-analyzer analyze page.png --saliency page_sal.png --resample
  attention-analyzer analyze page.png --faces ollama --model openbmb/minicpm-v4.5`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, opts, args)
		},
	}
	opts.register(cmd.Flags())
	return cmd
}

func runAnalyze(cmd *cobra.Command, opts *analyzeOptions, args []string) error {
	logger := newLogger(cmd)
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := opts.apply(cfg); err != nil {
		return err
	}

	sources, err := expandSources(args)
	if err != nil {
		return err
	}
	if opts.saliencyMap != "" && len(sources) > 1 {
		return fmt.Errorf("--saliency needs exactly one input image, got %d", len(sources))
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	r, err := newRunner(ctx, cfg, opts, logger)
	if err != nil {
		return err
	}

	reports, err := r.run(ctx, sources)
	if err != nil {
		return err
	}

	var payload any = reports
	if len(reports) == 1 {
		payload = reports[0]
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if opts.output == "" {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}
	if err := utils.EnsureDir(filepath.Dir(opts.output)); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	if err := os.WriteFile(opts.output, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	logger.Info("report written", "path", opts.output)
	return nil
}

// expandSources resolves directories to their image files and checks that
// local paths exist. URLs pass through untouched.
func expandSources(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		switch {
		case utils.IsURL(arg):
			out = append(out, arg)
		case utils.DirExists(arg):
			files, err := utils.ListImageFiles(arg)
			if err != nil {
				return nil, fmt.Errorf("failed to list %s: %w", arg, err)
			}
			if len(files) == 0 {
				return nil, fmt.Errorf("no image files found in %s", arg)
			}
			out = append(out, files...)
		case utils.FileExists(arg):
			out = append(out, arg)
		default:
			return nil, fmt.Errorf("input not found: %s", arg)
		}
	}
	return out, nil
}

// runner carries the per-invocation pipeline shared by all workers.
type runner struct {
	cfg       *config.Config
	opts      *analyzeOptions
	processor *processing.Processor
	analyzer  *attentionanalyzer.Analyzer
	renderer  *render.Renderer
	logger    hclog.Logger

	// stems holds the overlay file stem of each source, unique per run.
	stems []string
}

func newRunner(ctx context.Context, cfg *config.Config, opts *analyzeOptions, logger hclog.Logger) (*runner, error) {
	processor := processing.NewProcessor()

	analyzerOpts := []attentionanalyzer.Option{
		attentionanalyzer.WithLogger(logger),
		attentionanalyzer.WithEnhancement(!opts.noEnhance),
	}
	if opts.saliencyMap != "" {
		analyzerOpts = append(analyzerOpts,
			attentionanalyzer.WithPredictor(processing.NewMapPredictor(processor, opts.saliencyMap, opts.resample)))
	}

	vc, err := newVisionClient(ctx, cfg.Vision)
	if err != nil {
		return nil, err
	}
	if vc != nil && !opts.noEnhance {
		locator := detection.NewFaceLocator(vc, cfg.DetectionConfig())
		locator.SetLogger(logger.Named("faces"))
		analyzerOpts = append(analyzerOpts, attentionanalyzer.WithFaceDetector(locator))
		logger.Debug("face detection enabled", "backend", cfg.Vision.Backend, "model", cfg.Vision.Model)
	}

	return &runner{
		cfg:       cfg,
		opts:      opts,
		processor: processor,
		analyzer:  attentionanalyzer.NewWithConfig(analyzerConfig(cfg), analyzerOpts...),
		renderer:  render.NewWithConfig(cfg.RenderConfig()),
		logger:    logger,
	}, nil
}

func analyzerConfig(cfg *config.Config) attentionanalyzer.Config {
	return attentionanalyzer.Config{
		Congestion: cfg.CongestionConfig(),
		Fusion:     cfg.FusionConfig(),
		Metrics:    cfg.MetricsConfig(),
		Palette:    cfg.PaletteConfig(),
		Thresholds: cfg.Thresholds(),
		Predictor:  cfg.PredictorConfig(),
	}
}

// newVisionClient returns nil when no face backend is configured.
func newVisionClient(ctx context.Context, v config.VisionConfig) (client.VisionClient, error) {
	switch v.Backend {
	case "", "none":
		return nil, nil
	case "ollama":
		url := v.URL
		if url == "" {
			url = defaultOllamaURL
		}
		return ollama.NewClient(url)
	case "llamacpp":
		url := v.URL
		if url == "" {
			url = defaultLlamacppURL
		}
		return llamacpp.NewClient(url)
	case "gemini":
		return gemini.NewClient(ctx, "")
	default:
		return nil, fmt.Errorf("unknown vision backend %q", v.Backend)
	}
}

// run analyses sources with at most opts.workers in flight. A failing image
// is logged and skipped; the run fails only when every image failed.
func (r *runner) run(ctx context.Context, sources []string) ([]*attentionanalyzer.Report, error) {
	results := make([]*attentionanalyzer.Report, len(sources))
	r.stems = utils.UniqueBaseNames(sources)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.workers)
	for i, src := range sources {
		g.Go(func() error {
			report, err := r.analyzeOne(gctx, i, src)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				r.logger.Error("analysis failed", "source", src, "error", err)
				return nil
			}
			results[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	reports := make([]*attentionanalyzer.Report, 0, len(results))
	for _, rep := range results {
		if rep != nil {
			reports = append(reports, rep)
		}
	}
	if len(reports) == 0 {
		return nil, fmt.Errorf("all %d images failed to analyse", len(sources))
	}
	if failed := len(sources) - len(reports); failed > 0 {
		r.logger.Warn("some images failed", "failed", failed, "total", len(sources))
	}
	return reports, nil
}

func (r *runner) analyzeOne(ctx context.Context, i int, src string) (*attentionanalyzer.Report, error) {
	r.logger.Debug("analysing", "source", src)
	img, err := r.processor.LoadRaster(ctx, src)
	if err != nil {
		return nil, err
	}

	report, err := r.analyzer.Analyze(ctx, img, nil)
	if err != nil {
		return nil, err
	}
	report.Source = src

	if r.opts.heatmap || r.opts.debug {
		rgba := img.ToImage()
		if r.opts.heatmap {
			if err := r.save(r.renderer.Heatmap(rgba, report.Saliency), r.stems[i], r.cfg.Output.HeatmapSuffix); err != nil {
				return nil, err
			}
		}
		if r.opts.debug {
			if err := r.save(r.renderer.DebugOverlay(rgba, report.Metrics), r.stems[i], r.cfg.Output.DebugSuffix); err != nil {
				return nil, err
			}
		}
	}

	r.logger.Info("analysed", "source", src,
		"focus_ratio", fmt.Sprintf("%.2f", report.Metrics.FocusRatio),
		"hotspots", report.Metrics.HotspotCount,
		"clutter", fmt.Sprintf("%.1f", report.Metrics.ClutterScore))
	return report, nil
}

func (r *runner) save(img image.Image, stem, suffix string) error {
	out := r.cfg.Output
	if err := utils.EnsureDir(out.OutputDir); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	path := utils.OutputFilename(stem, out.OutputDir, "", suffix, out.DefaultFormat)
	if err := r.processor.SaveImage(img, path, out.DefaultFormat, out.Quality, out.Lossless); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}

	size := int64(0)
	if info, err := os.Stat(path); err == nil {
		size = info.Size()
	}
	r.logger.Info("wrote overlay", "path", path, "size", utils.FormatFileSize(size))
	return nil
}
