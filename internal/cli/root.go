package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yungbote/lessonplan-backend/internal/config"
	"github.com/yungbote/lessonplan-backend/internal/platform/logger"
)

var rootCmd = &cobra.Command{
	Use:           "lessonplan",
	Short:         "Generate lesson plans from a teaching schedule",
	Long:          "lessonplan turns a teaching schedule spreadsheet into one .docx lesson plan per lesson, using a local Ollama model.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config.yaml (overrides LESSONPLAN_CONFIG)")
	rootCmd.PersistentFlags().String("host", "", "Ollama host (overrides OLLAMA_HOST)")
	rootCmd.PersistentFlags().String("model", "", "Model name (overrides OLLAMA_MODEL)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(templateCmd)
}

// loadConfig resolves configuration, applying the persistent flags last.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		if err := os.Setenv("LESSONPLAN_CONFIG", p); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if h, _ := cmd.Flags().GetString("host"); h != "" {
		cfg.LLM.Host = h
	}
	if m, _ := cmd.Flags().GetString("model"); m != "" {
		cfg.LLM.Model = m
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*logger.Logger, error) {
	mode := cfg.Env
	if mode == "" {
		mode = "development"
	}
	return logger.New(mode)
}
