package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/metryx-io/metryx/internal/core/domain"
)

var webhooksCmd = &cobra.Command{
	Use:   "webhooks",
	Short: "Manage data webhooks",
	Long: `Webhooks expose a project's extracted data through keyed URLs,
so external consumers can pull metrics without platform credentials.`,
}

var webhooksCreateCmd = &cobra.Command{
	Use:   "create <project-id> <name>",
	Short: "Create a webhook for a project",
	Args:  cobra.ExactArgs(2),
	RunE:  runWebhooksCreate,
}

var webhooksListCmd = &cobra.Command{
	Use:   "list <project-id>",
	Short: "List a project's webhooks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		hooks, err := app.store.Webhooks().ListByProject(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(hooks) == 0 {
			cmd.Println("no webhooks")
			return nil
		}
		for _, h := range hooks {
			state := "active"
			switch {
			case !h.Active:
				state = "inactive"
			case h.Expired(time.Now().UTC()):
				state = "expired"
			}
			cmd.Printf("%s  %-24s %-4s %-8s /webhook/v1/%s/data\n",
				h.ID, h.Name, h.Format, state, h.Key)
		}
		return nil
	},
}

var webhooksRegenerateCmd = &cobra.Command{
	Use:   "regenerate <project-id> <webhook-id>",
	Short: "Replace a webhook's URL key",
	Long:  `Generate a fresh key for a webhook, invalidating the old URL immediately.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		hooks, err := app.store.Webhooks().ListByProject(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		for _, h := range hooks {
			if h.ID != args[1] {
				continue
			}
			h.Key = domain.NewWebhookKey()
			h.UpdatedAt = time.Now().UTC()
			if err := app.store.Webhooks().Save(cmd.Context(), h); err != nil {
				return err
			}
			cmd.Printf("new URL: http://%s/webhook/v1/%s/data\n", app.cfg.Server.Addr, h.Key)
			return nil
		}
		return fmt.Errorf("%w: webhook %s in project %s", domain.ErrNotFound, args[1], args[0])
	},
}

var webhooksDeleteCmd = &cobra.Command{
	Use:   "delete <webhook-id>",
	Short: "Delete a webhook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.store.Webhooks().Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		cmd.Printf("deleted webhook %s\n", args[0])
		return nil
	},
}

func init() {
	webhooksCreateCmd.Flags().String("format", domain.WebhookFormatJSON, "response format: json or csv")
	webhooksCreateCmd.Flags().Int("rate-limit", 0, "max requests per hour (0 = uncapped)")
	webhooksCreateCmd.Flags().Duration("expires", 0, "lifetime before the key expires (0 = never)")
	webhooksCreateCmd.Flags().StringSlice("sources", nil, "restrict to these data source IDs (default: all in project)")

	webhooksCmd.AddCommand(webhooksCreateCmd, webhooksListCmd, webhooksRegenerateCmd, webhooksDeleteCmd)
	rootCmd.AddCommand(webhooksCmd)
}

func runWebhooksCreate(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := cmd.Context()
	projectID, name := args[0], args[1]

	if _, err := app.store.Projects().Get(ctx, projectID); err != nil {
		return fmt.Errorf("loading project: %w", err)
	}

	format, _ := cmd.Flags().GetString("format")
	if format != domain.WebhookFormatJSON && format != domain.WebhookFormatCSV {
		return fmt.Errorf("%w: unknown format %q", domain.ErrInvalidInput, format)
	}
	rateLimit, _ := cmd.Flags().GetInt("rate-limit")
	expires, _ := cmd.Flags().GetDuration("expires")
	sources, _ := cmd.Flags().GetStringSlice("sources")

	now := time.Now().UTC()
	hook := domain.WebhookConfig{
		ID:               uuid.NewString(),
		ProjectID:        projectID,
		Name:             name,
		Key:              domain.NewWebhookKey(),
		Active:           true,
		AllowedSources:   sources,
		Format:           format,
		RateLimitPerHour: rateLimit,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if expires > 0 {
		expiry := now.Add(expires)
		hook.ExpiresAt = &expiry
	}

	if err := app.store.Webhooks().Save(ctx, hook); err != nil {
		return err
	}
	cmd.Printf("created webhook %s (%s)\n", hook.Name, hook.ID)
	cmd.Printf("  URL: http://%s/webhook/v1/%s/data\n", app.cfg.Server.Addr, hook.Key)
	return nil
}
