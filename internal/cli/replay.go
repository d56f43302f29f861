package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/crop-editor/internal/config"
	"github.com/ironsheep/crop-editor/internal/editor"
	"github.com/ironsheep/crop-editor/internal/replay"
)

var replayCmd = &cobra.Command{
	Use:   "replay <script.yaml>",
	Short: "Replay a recorded editing session",
	Long: `Run the steps of a YAML script through the editor without a display.

Relative paths in the script are resolved against the script's directory.
A step may name the error it is expected to fail with (expect_error);
any other failure stops the replay with a non-zero exit status.`,
	Example: `  crop-editor replay session.yaml
  crop-editor replay session.yaml --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

var replayFormat string

func init() {
	replayCmd.Flags().StringVar(&replayFormat, "format", "text", "report format: text, yaml or json")
	rootCmd.AddCommand(replayCmd)
}

// newReplayRunner builds a runner from the configuration.
func newReplayRunner(cfg *config.Config, logger *slog.Logger) (*replay.Runner, error) {
	opts, err := cfg.EditorOptions()
	if err != nil {
		return nil, err
	}
	return replay.NewRunner(cfg.Canvas.Width, cfg.Canvas.Height,
		editor.NewPresetFiles(cfg.Codec()), logger, opts...), nil
}

func runReplay(cmd *cobra.Command, args []string) error {
	switch replayFormat {
	case "text", "yaml", "json":
	default:
		return fmt.Errorf("unknown format %q (use text, yaml or json)", replayFormat)
	}

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	script, err := replay.Load(args[0])
	if err != nil {
		return err
	}
	runner, err := newReplayRunner(cfg, logger)
	if err != nil {
		return err
	}

	report, runErr := runner.Run(cmd.Context(), script)
	if err := printReport(cmd, report); err != nil {
		return err
	}
	return runErr
}

func printReport(cmd *cobra.Command, report *replay.Report) error {
	out := cmd.OutOrStdout()

	switch replayFormat {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "yaml":
		data, err := yaml.Marshal(report)
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		_, err = out.Write(data)
		return err
	}

	for _, st := range report.Steps {
		line := fmt.Sprintf("%3d  %-10s %-15s", st.Index, st.Action, st.Status)
		if st.Width > 0 {
			line += fmt.Sprintf(" %dx%d", st.Width, st.Height)
		}
		if st.Path != "" {
			line += "  " + st.Path
		}
		fmt.Fprintln(out, line)
	}
	summary := fmt.Sprintf("%d steps, %d renders, undo depth %d, redo depth %d",
		len(report.Steps), report.Renders, report.State.UndoDepth, report.State.RedoDepth)
	if report.State.Unsaved {
		summary += ", unsaved changes"
	}
	fmt.Fprintf(out, "\n%s\n", summary)
	return nil
}
