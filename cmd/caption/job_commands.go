package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"caption/internal/api"
	"caption/internal/queue"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "submit <video>",
		Short: "Upload a video for captioning",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			job, err := client.Submit(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("submit video: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Submitted %s\n", job.InputFile)
			fmt.Fprintf(out, "Job ID: %s\n", job.ID)
			fmt.Fprintf(out, "Check progress with: caption status %s\n", job.ID)
			return nil
		},
	}
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status [job-id]",
		Short: "Show a job's progress, or the daemon summary without an id",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			if len(args) == 0 {
				return printDaemonStatus(cmd, client)
			}

			job, err := client.Describe(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("fetch job: %w", err)
			}
			if job == nil {
				return fmt.Errorf("job %s not found", args[0])
			}
			printJob(cmd, *job)
			return nil
		},
	}
}

func printDaemonStatus(cmd *cobra.Command, client *api.Client) error {
	status, err := client.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("fetch daemon status: %w", err)
	}
	out := cmd.OutOrStdout()
	state := "stopped"
	if status.Running {
		state = fmt.Sprintf("running (pid %d)", status.PID)
	}
	fmt.Fprintf(out, "Daemon: %s\n", state)

	rows := make([][]string, 0, len(queue.AllStatuses()))
	for _, s := range queue.AllStatuses() {
		rows = append(rows, []string{string(s), fmt.Sprintf("%d", status.Workflow.QueueStats[string(s)])})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Status", "Jobs"},
		rows,
		[]columnAlignment{alignLeft, alignRight},
	))

	for _, health := range status.Workflow.StageHealth {
		if health.Ready {
			continue
		}
		fmt.Fprintf(out, "Stage %s not ready: %s\n", health.Name, health.Detail)
	}
	if status.Workflow.LastError != "" {
		fmt.Fprintf(out, "Last error: %s\n", status.Workflow.LastError)
	}
	return nil
}

func printJob(cmd *cobra.Command, job api.Job) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Job:     %s\n", job.ID)
	fmt.Fprintf(out, "Input:   %s\n", job.InputFile)
	fmt.Fprintf(out, "Status:  %s\n", job.Status)
	if job.ProgressMessage != "" {
		fmt.Fprintf(out, "Detail:  %s\n", job.ProgressMessage)
	}
	if job.ErrorMessage != "" {
		fmt.Fprintf(out, "Error:   %s\n", job.ErrorMessage)
	}
	if job.OutputFile != "" {
		fmt.Fprintf(out, "Output:  %s\n", job.OutputFile)
		fmt.Fprintf(out, "Fetch it with: caption download %s\n", job.ID)
	}
}

func newJobsCommand(ctx *commandContext) *cobra.Command {
	var statusFilter string

	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List captioning jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}

			var statuses []queue.Status
			if trimmed := strings.TrimSpace(statusFilter); trimmed != "" {
				for _, value := range strings.Split(trimmed, ",") {
					status, ok := queue.ParseStatus(value)
					if !ok {
						return fmt.Errorf("unknown status %q", value)
					}
					statuses = append(statuses, status)
				}
			}

			jobs, err := client.List(cmd.Context(), statuses...)
			if err != nil {
				return fmt.Errorf("list jobs: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(jobs) == 0 {
				fmt.Fprintln(out, "No jobs")
				return nil
			}

			rows := make([][]string, 0, len(jobs))
			for _, job := range jobs {
				detail := job.ProgressMessage
				if job.ErrorMessage != "" {
					detail = job.ErrorMessage
				}
				rows = append(rows, []string{job.ID, job.InputFile, job.Status, detail})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Input", "Status", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&statusFilter, "status", "", "Comma-separated status filter")
	return cmd
}

func newDownloadCommand(ctx *commandContext) *cobra.Command {
	var destDir string

	cmd := &cobra.Command{
		Use:   "download <job-id>",
		Short: "Download a finished captioned video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			dest, err := client.Download(cmd.Context(), args[0], destDir)
			if err != nil {
				return fmt.Errorf("download job %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", dest)
			return nil
		},
	}

	cmd.Flags().StringVarP(&destDir, "dir", "d", ".", "Directory to save the video into")
	return cmd
}
