package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yungbote/lessonplan-backend/internal/llm"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that Ollama is running and the model is installed",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer log.Sync()

		o := llm.NewOllama(llm.OllamaConfig{
			Host:             cfg.LLM.Host,
			Model:            cfg.LLM.Model,
			PreflightTimeout: cfg.LLM.PreflightTimeout.Duration,
			GenerateTimeout:  cfg.LLM.GenerateTimeout.Duration,
		}, log)
		d := o.Diagnose(cmd.Context())
		return printDiagnosis(cmd, d, cfg.LLM.Model)
	},
}

func printDiagnosis(cmd *cobra.Command, d llm.Diagnosis, model string) error {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Ollama 地址: %s\n", d.Host)
	if errors.Is(d.Err, llm.ErrUnreachable) {
		fmt.Fprintln(w, "✗ 无法连接到 Ollama")
		fmt.Fprintln(cmd.ErrOrStderr(), llm.Remediation(d.Host))
		return d.Err
	}
	if d.Running {
		fmt.Fprintln(w, "✓ Ollama 正在运行")
	} else {
		fmt.Fprintf(w, "? 根路径返回: %s\n", d.Banner)
	}
	if d.Err != nil {
		fmt.Fprintf(w, "✗ 无法获取模型列表: %v\n", d.Err)
		return d.Err
	}
	if len(d.Models) == 0 {
		fmt.Fprintln(w, "本地没有任何模型")
	} else {
		fmt.Fprintf(w, "本地模型: %s\n", strings.Join(d.Models, ", "))
	}
	if !d.ModelInstalled {
		fmt.Fprintf(w, "✗ 模型 %s 未安装，请运行: ollama pull %s\n", model, model)
		return fmt.Errorf("model %s not installed", model)
	}
	fmt.Fprintf(w, "✓ 模型 %s 已安装\n", model)
	return nil
}
