package cli

import (
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/metryx-io/metryx/internal/core/domain"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Manage projects",
}

var projectsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		now := time.Now().UTC()
		project := domain.Project{
			ID:        uuid.NewString(),
			Name:      args[0],
			Active:    true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := app.store.Projects().Save(cmd.Context(), project); err != nil {
			return err
		}
		cmd.Printf("created project %s (%s)\n", project.Name, project.ID)
		return nil
	},
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		projects, err := app.store.Projects().List(cmd.Context())
		if err != nil {
			return err
		}
		if len(projects) == 0 {
			cmd.Println("no projects")
			return nil
		}
		for _, p := range projects {
			state := "active"
			if !p.Active {
				state = "inactive"
			}
			cmd.Printf("%s  %-30s %s\n", p.ID, p.Name, state)
		}
		return nil
	},
}

func init() {
	projectsCmd.AddCommand(projectsCreateCmd, projectsListCmd)
	rootCmd.AddCommand(projectsCmd)
}
