// Package cli provides the command-line interface for attention-analyzer.
package cli

import (
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	attentionanalyzer "github.com/menta2k/attention-analyzer"
	"github.com/menta2k/attention-analyzer/internal/config"
	"github.com/menta2k/attention-analyzer/internal/utils"
)

// NewRootCmd builds the command tree. Each call returns fresh commands and
// flag state.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "attention-analyzer",
		Short: "Predict where users look on a UI screenshot",
		Long: `attention-analyzer fuses a base saliency prediction with face, text and
centre-bias boosts, then reports focus, hotspot, gaze-path, clutter and
WCAG contrast metrics for screenshots and design mockups.`,
		Version:      attentionanalyzer.GetVersion(),
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().String("config", "", "config file (default: "+config.GetConfigPath()+")")

	rootCmd.SetVersionTemplate("attention-analyzer {{.Version}}\n")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newContrastCmd())
	rootCmd.AddCommand(newCTACmd())
	rootCmd.AddCommand(newFacesCmd())
	rootCmd.AddCommand(newConfigCmd())
	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "attention-analyzer %s\n", attentionanalyzer.GetVersion())
		},
	}
}

// newLogger builds the stderr logger honouring --verbose and --quiet.
func newLogger(cmd *cobra.Command) hclog.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	quiet, _ := cmd.Flags().GetBool("quiet")

	level := hclog.Info
	switch {
	case quiet:
		level = hclog.Error
	case verbose:
		level = hclog.Debug
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:   "attention-analyzer",
		Output: cmd.ErrOrStderr(),
		Level:  level,
	})
}

// loadConfig reads --config, falling back to the default path when it exists
// and to built-in defaults otherwise.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		if !utils.FileExists(config.GetConfigPath()) {
			return config.Default(), nil
		}
		path = config.GetConfigPath()
	}

	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func writeln(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format+"\n", args...)
}
