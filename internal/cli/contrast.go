package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/menta2k/attention-analyzer/pkg/contrast"
)

func newContrastCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "contrast <foreground> <background>",
		Short: "Check the WCAG contrast of two hex colours",
		Example: `  attention-analyzer contrast "#767676" "#FFFFFF"
  attention-analyzer contrast 000 fff --json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			fg, err := contrast.ParseHex(args[0])
			if err != nil {
				return err
			}
			bg, err := contrast.ParseHex(args[1])
			if err != nil {
				return err
			}

			res := cfg.Thresholds().Check(fg, bg)
			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(cmd, res)
			}
			writeln(out, "Foreground:   %s", res.Foreground.Hex())
			writeln(out, "Background:   %s", res.Background.Hex())
			writeln(out, "Ratio:        %.2f:1", res.Ratio)
			writeln(out, "Normal text:  %s", res.Normal)
			writeln(out, "Large text:   %s", res.Large)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func newCTACmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "cta <background>",
		Short: "Recommend an accessible call-to-action colour for a background",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			bg, err := contrast.ParseHex(args[0])
			if err != nil {
				return err
			}

			rec := cfg.Thresholds().RecommendCTA(bg)
			if asJSON {
				return printJSON(cmd, rec)
			}
			out := cmd.OutOrStdout()
			writeln(out, "Recommended:  %s", rec.Color.Hex())
			writeln(out, "Ratio:        %.2f:1 (%s)", rec.Ratio, rec.Level)
			writeln(out, "Rationale:    %s", rec.Rationale)
			if !rec.Level.Passes() {
				writeln(out, "Warning:      no accessible combination known for %s", bg.Hex())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
