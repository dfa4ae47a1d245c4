package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/lessonplan-backend/internal/app"
	"github.com/yungbote/lessonplan-backend/internal/llm"
	"github.com/yungbote/lessonplan-backend/internal/platform/shutdown"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web service",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if port, _ := cmd.Flags().GetInt("port"); port > 0 {
			cfg.HTTP.Port = port
		}
		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer log.Sync()

		ctx, stop := shutdown.NotifyContext(cmd.Context())
		defer stop()

		err = app.Serve(ctx, log, cfg)
		if errors.Is(err, llm.ErrUnreachable) {
			fmt.Fprintln(cmd.ErrOrStderr(), llm.Remediation(cfg.LLM.Host))
		}
		return err
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "Listen port (overrides WEB_PORT)")
}
