package cmd

import (
	"fmt"
	"strings"
	"time"

	"regdoc/pkg/api"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var statusCmd = &cobra.Command{
	Use:   "status [job_id]",
	Short: "Get status of a classification batch",
	Long: `Retrieve the status of a batch, including aggregate progress and the
state of every document in it (pending, processing, completed, failed).

With --watch the command polls until the batch reaches a terminal state,
redrawing a progress bar on each poll.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		jobID := args[0]
		watch, _ := cmd.Flags().GetBool("watch")
		interval, _ := cmd.Flags().GetDuration("interval")

		client := NewBatchClient(viper.GetString("url"))

		if !watch {
			status, err := client.GetStatus(jobID)
			if err != nil {
				cmd.Printf("Failed to fetch status: %v\n", err)
				return
			}
			printStatus(cmd, status)
			return
		}

		for {
			status, err := client.GetStatus(jobID)
			if err != nil {
				cmd.Printf("Failed to fetch status: %v\n", err)
				return
			}

			cmd.Printf("\r%s %5.1f%%  %d/%d done  %s",
				progressBar(status.Progress),
				status.Progress,
				status.Completed+status.Failed,
				status.TotalFiles,
				colorizeStatus(status.Status))

			if status.Status == "completed" || status.Status == "failed" {
				cmd.Println()
				cmd.Println()
				printStatus(cmd, status)
				return
			}
			time.Sleep(interval)
		}
	},
}

func printStatus(cmd *cobra.Command, status *api.StatusResponse) {
	icon := statusIcon(status.Status)
	cmd.Printf("%s %sBatch Details%s\n", icon, colorBold, colorReset)
	cmd.Println("──────────────────────────────")

	cmd.Printf("%sJob ID:%s      %s\n", colorDim, colorReset, status.JobID)
	cmd.Printf("%sStatus:%s      %s\n", colorDim, colorReset, colorizeStatus(status.Status))
	cmd.Printf("%sProgress:%s    %s %.1f%%\n", colorDim, colorReset, progressBar(status.Progress), status.Progress)
	cmd.Printf("%sFiles:%s       %d total, %s%d completed%s, %s%d failed%s\n",
		colorDim, colorReset, status.TotalFiles,
		colorGreen, status.Completed, colorReset,
		colorRed, status.Failed, colorReset)

	if status.Error != "" {
		cmd.Printf("%sError:%s       %s%s%s\n", colorDim, colorReset, colorRed, status.Error, colorReset)
	}

	cmd.Printf("%sCreated:%s     %s\n", colorDim, colorReset, formatTimeWithRelative(status.CreatedAt))
	cmd.Printf("%sUpdated:%s     %s\n", colorDim, colorReset, formatTimeWithRelative(status.UpdatedAt))

	if len(status.Documents) == 0 {
		return
	}
	cmd.Println()
	cmd.Printf("%sDocuments:%s\n", colorBold, colorReset)
	for _, doc := range status.Documents {
		line := fmt.Sprintf("  %s %-30s %3d%%", statusIcon(doc.Status), doc.Filename, doc.Progress)
		if doc.Error != "" {
			line += fmt.Sprintf("  %s%s%s", colorRed, doc.Error, colorReset)
		}
		cmd.Println(line)
	}
}

// progressBar renders a fixed-width 40 character bar.
func progressBar(percent float64) string {
	const width = 40
	filled := int(percent / 100 * width)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

func statusIcon(status string) string {
	switch status {
	case "completed":
		return colorGreen + "✓" + colorReset
	case "failed":
		return colorRed + "✗" + colorReset
	case "processing":
		return colorYellow + "⏳" + colorReset
	case "pending":
		return colorCyan + "◯" + colorReset
	default:
		return "•"
	}
}

func colorizeStatus(status string) string {
	icon := statusIcon(status)
	switch status {
	case "completed":
		return icon + " " + colorGreen + status + colorReset
	case "failed":
		return icon + " " + colorRed + status + colorReset
	case "processing":
		return icon + " " + colorYellow + status + colorReset
	case "pending":
		return icon + " " + colorCyan + status + colorReset
	default:
		return status
	}
}

func formatTimeWithRelative(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	relative := relativeTime(t)
	return fmt.Sprintf("%s %s(%s ago)%s", t.Format("Mon, 02 Jan 2006 15:04:05 MST"), colorDim, relative, colorReset)
}

func relativeTime(t time.Time) string {
	duration := time.Since(t)

	if duration < time.Minute {
		return fmt.Sprintf("%ds", int(duration.Seconds()))
	} else if duration < time.Hour {
		return fmt.Sprintf("%dm", int(duration.Minutes()))
	} else if duration < 24*time.Hour {
		return fmt.Sprintf("%dh", int(duration.Hours()))
	} else {
		days := int(duration.Hours() / 24)
		if days == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", days)
	}
}

func init() {
	statusCmd.Flags().BoolP("watch", "w", false, "Poll until the batch reaches a terminal state")
	statusCmd.Flags().Duration("interval", 2*time.Second, "Polling interval used with --watch")
	rootCmd.AddCommand(statusCmd)
}
