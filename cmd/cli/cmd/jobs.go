package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List all tracked batches",
	Long:  `List every batch the server is tracking, oldest first, without per-document detail.`,
	Run: func(cmd *cobra.Command, args []string) {
		client := NewBatchClient(viper.GetString("url"))

		result, err := client.ListJobs()
		if err != nil {
			cmd.Printf("Failed to list jobs: %v\n", err)
			return
		}

		if result.Total == 0 {
			cmd.Println("No jobs found")
			return
		}

		cmd.Printf("%s%d job(s)%s\n", colorBold, result.Total, colorReset)
		cmd.Println("──────────────────────────────")
		for _, job := range result.Jobs {
			cmd.Printf("%s  %s  %3.0f%%  %d files (%d done, %d failed)  %s\n",
				job.JobID,
				colorizeStatus(job.Status),
				job.Progress,
				job.TotalFiles,
				job.Completed,
				job.Failed,
				formatTimeWithRelative(job.CreatedAt))
		}
	},
}

func init() {
	rootCmd.AddCommand(jobsCmd)
}
