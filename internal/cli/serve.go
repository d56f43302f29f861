package cli

import (
	"github.com/spf13/cobra"

	"github.com/ironsheep/crop-editor/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the stdio tool server",
	Long: `Run the MCP tool server over stdin/stdout.

Configure it in your MCP client (e.g., Claude Desktop) with this binary as
the command. Set CROP_EDITOR_LOG_LEVEL=debug for verbose logs on stderr.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, logger, version)
	if err != nil {
		return err
	}
	logger.Debug("server starting", "version", version, "built", buildTime, "commit", gitCommit,
		"canvas_width", cfg.Canvas.Width, "canvas_height", cfg.Canvas.Height)
	return srv.Serve(cmd.InOrStdin(), cmd.OutOrStdout())
}
