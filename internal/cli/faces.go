package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/menta2k/attention-analyzer/pkg/detection"
	"github.com/menta2k/attention-analyzer/pkg/processing"
)

func newFacesCmd() *cobra.Command {
	var (
		backend, model, url string
		testVision          bool
	)
	cmd := &cobra.Command{
		Use:   "faces <image|URL>",
		Short: "Ask the vision backend for face boxes",
		Long: `Run face detection alone and print the model's parsed answer. With --test
the model is only asked to describe the image, which checks that it can see
the upload at all.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd)
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if backend != "" {
				cfg.Vision.Backend = backend
			}
			if model != "" {
				cfg.Vision.Model = model
			}
			if url != "" {
				cfg.Vision.URL = url
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			vc, err := newVisionClient(ctx, cfg.Vision)
			if err != nil {
				return err
			}
			if vc == nil {
				return fmt.Errorf("no vision backend configured (use --backend)")
			}

			img, err := processing.NewProcessor().LoadImageSmart(ctx, args[0])
			if err != nil {
				return err
			}

			locator := detection.NewFaceLocator(vc, cfg.DetectionConfig())
			locator.SetLogger(logger.Named("faces"))

			if testVision {
				answer, err := locator.TestVision(ctx, img)
				if err != nil {
					return err
				}
				writeln(cmd.OutOrStdout(), "%s", answer)
				return nil
			}

			result, err := locator.LocateFaces(ctx, img)
			if err != nil {
				return err
			}
			b := img.Bounds()
			for i, f := range result.Faces {
				logger.Debug("face", "index", i, "confidence", f.Confidence, "rect", f.Box.Rect(b.Dx(), b.Dy()))
			}
			return printJSON(cmd, result)
		},
	}
	cmd.Flags().StringVarP(&backend, "backend", "b", "", "vision backend (ollama, llamacpp, gemini)")
	cmd.Flags().StringVarP(&model, "model", "m", "", "vision model name")
	cmd.Flags().StringVar(&url, "url", "", "vision backend URL")
	cmd.Flags().BoolVar(&testVision, "test", false, "only ask the model to describe the image")
	return cmd
}
