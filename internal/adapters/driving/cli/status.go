package cli

import (
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <project-id>",
	Short: "Show per-source extraction status for a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	status, err := app.extraction.Status(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	cmd.Printf("Project %s: %d active sources\n", status.ProjectID, status.TotalSources)
	for _, snap := range status.Sources {
		cmd.Printf("  %-30s %-18s %s", snap.SourceName, snap.Platform, snap.Status)
		if snap.LastExtraction != nil {
			cmd.Printf(" (last: %s, %d records)", snap.LastExtraction.Format("2006-01-02 15:04"), snap.LastRecords)
		}
		if snap.LastError != "" {
			cmd.Printf(" error: %s", snap.LastError)
		}
		cmd.Println()
	}
	return nil
}
