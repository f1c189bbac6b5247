package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var submitCmd = &cobra.Command{
	Use:   "submit [files...]",
	Short: "Upload a batch of documents for classification",
	Long: `Upload one or more local files as a single classification batch.

The server answers immediately with a job id; classification happens in the
background. Use 'regdocctl status <job-id>' to follow progress.

Example:
  regdocctl submit report.txt policy.txt
  regdocctl submit contracts/*.txt`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		url := viper.GetString("url")

		client := NewBatchClient(url)
		result, err := client.UploadBatch(args)
		if err != nil {
			cmd.Printf("Upload failed: %v\n", err)
			return
		}

		cmd.Printf("%s✓%s Batch accepted\n", colorGreen, colorReset)
		cmd.Printf("%sJob ID:%s      %s\n", colorDim, colorReset, result.JobID)
		cmd.Printf("%sFiles:%s       %d\n", colorDim, colorReset, result.TotalFiles)
		cmd.Printf("%sStatus:%s      %s\n", colorDim, colorReset, colorizeStatus(result.Status))
		cmd.Println()
		cmd.Printf("Track progress with: regdocctl status %s --watch\n", result.JobID)
	},
}

func init() {
	rootCmd.AddCommand(submitCmd)
}
