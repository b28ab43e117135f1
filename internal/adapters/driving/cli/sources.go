package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/metryx-io/metryx/internal/core/domain"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Manage data sources",
}

var sourcesAddCmd = &cobra.Command{
	Use:   "add <project-id>",
	Short: "Add a data source to a project",
	Long: `Add a data source binding a stored credential to a platform.

Examples:
  metryx sources add proj-1 --platform google_ads --name "Search campaigns" \
    --metrics impressions,clicks,cost --dimensions date,campaign_id

  metryx sources add proj-1 --platform facebook_ads --name "Meta daily" \
    --schedule daily --hour 6`,
	Args: cobra.ExactArgs(1),
	RunE: runSourcesAdd,
}

var sourcesListCmd = &cobra.Command{
	Use:   "list <project-id>",
	Short: "List a project's active data sources",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		sources, err := app.store.Sources().ListActiveByProject(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(sources) == 0 {
			cmd.Println("no active data sources")
			return nil
		}
		for _, s := range sources {
			schedule := "manual"
			if s.Schedule.Frequency != "" {
				schedule = string(s.Schedule.Frequency)
			}
			cmd.Printf("%s  %-14s %-30s %s\n", s.ID, s.Platform, s.Name, schedule)
		}
		return nil
	},
}

var sourcesDeleteCmd = &cobra.Command{
	Use:   "delete <data-source-id>",
	Short: "Delete a data source and its extracted data",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.store.Sources().Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		cmd.Printf("deleted data source %s\n", args[0])
		return nil
	},
}

func init() {
	sourcesAddCmd.Flags().String("platform", "", "platform identifier (required)")
	sourcesAddCmd.Flags().String("name", "", "source name (required)")
	sourcesAddCmd.Flags().String("credential", "", "credential ID (defaults to the project's credential for the platform)")
	sourcesAddCmd.Flags().String("metrics", "impressions,clicks,cost,conversions", "comma-separated metrics")
	sourcesAddCmd.Flags().String("dimensions", "date,campaign_id,campaign_name", "comma-separated dimensions")
	sourcesAddCmd.Flags().String("schedule", "", "extraction frequency: hourly, daily or weekly (empty = manual)")
	sourcesAddCmd.Flags().Int("hour", 2, "UTC hour for daily and weekly schedules")
	sourcesAddCmd.MarkFlagRequired("platform") //nolint:errcheck
	sourcesAddCmd.MarkFlagRequired("name")     //nolint:errcheck

	sourcesCmd.AddCommand(sourcesAddCmd, sourcesListCmd, sourcesDeleteCmd)
	rootCmd.AddCommand(sourcesCmd)
}

func runSourcesAdd(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := cmd.Context()
	projectID := args[0]
	platform, _ := cmd.Flags().GetString("platform")
	platform = strings.ToLower(platform)

	if _, err := app.store.Projects().Get(ctx, projectID); err != nil {
		return fmt.Errorf("loading project: %w", err)
	}

	credentialID, _ := cmd.Flags().GetString("credential")
	if credentialID == "" {
		credentialID, err = findProjectCredential(cmd, app, projectID, platform)
		if err != nil {
			return err
		}
	}

	name, _ := cmd.Flags().GetString("name")
	metrics, _ := cmd.Flags().GetString("metrics")
	dimensions, _ := cmd.Flags().GetString("dimensions")
	schedule, _ := cmd.Flags().GetString("schedule")
	hour, _ := cmd.Flags().GetInt("hour")

	now := time.Now().UTC()
	source := domain.DataSource{
		ID:           uuid.NewString(),
		ProjectID:    projectID,
		CredentialID: credentialID,
		Platform:     platform,
		Name:         name,
		Extraction: domain.ExtractionConfig{
			Metrics:    splitList(metrics),
			Dimensions: splitList(dimensions),
		},
		Active:    true,
		Status:    domain.SourcePending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if schedule != "" {
		source.Schedule = domain.ScheduleConfig{
			Frequency: domain.ScheduleFrequency(schedule),
			Hour:      hour,
		}
		if source.Schedule.Interval() == 0 {
			return fmt.Errorf("%w: unknown schedule frequency %q", domain.ErrInvalidInput, schedule)
		}
		next := now.Add(source.Schedule.Interval())
		source.NextExtractionAt = &next
	}

	if err := app.store.Sources().Save(ctx, source); err != nil {
		return err
	}
	cmd.Printf("created data source %s (%s)\n", source.Name, source.ID)
	return nil
}

// findProjectCredential resolves the project's stored credential for
// the platform when --credential is not given.
func findProjectCredential(cmd *cobra.Command, app *app, projectID, platform string) (string, error) {
	creds, err := app.store.Credentials().ListByProject(cmd.Context(), projectID)
	if err != nil {
		return "", err
	}
	for _, c := range creds {
		if c.Platform == platform {
			return c.ID, nil
		}
	}
	return "", fmt.Errorf("%w: no credential for %s in project %s (run 'metryx credentials set' first)",
		domain.ErrNotFound, platform, projectID)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
