package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yungbote/lessonplan-backend/internal/docgen"
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Write the built-in lesson plan template",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("output")
		if dir := filepath.Dir(out); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create %s: %w", out, err)
		}
		if err := docgen.WriteDefaultTemplate(f); err != nil {
			_ = f.Close()
			return fmt.Errorf("write template: %w", err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "模板已生成: %s\n", out)
		return nil
	},
}

func init() {
	templateCmd.Flags().StringP("output", "o", filepath.Join("templates", "lesson_plan_template.docx"), "Output path")
}
