package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/metryx-io/metryx/internal/core/domain"
)

var credentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "Manage platform credentials",
}

var credentialsSetCmd = &cobra.Command{
	Use:   "set <project-id> <platform>",
	Short: "Store a platform credential for a project",
	Long: `Prompt for the platform's credential fields, validate them against
the platform API and store them encrypted. Secrets are read without
echo when run in a terminal.

Saving a second credential for the same project and platform replaces
the first.`,
	Args: cobra.ExactArgs(2),
	RunE: runCredentialsSet,
}

var credentialsListCmd = &cobra.Command{
	Use:   "list <project-id>",
	Short: "List a project's credentials",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		creds, err := app.store.Credentials().ListByProject(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(creds) == 0 {
			cmd.Println("no credentials")
			return nil
		}
		for _, c := range creds {
			validated := "never"
			if c.LastValidatedAt != nil {
				validated = c.LastValidatedAt.Format("2006-01-02 15:04")
			}
			cmd.Printf("%s  %-14s %-8s %-8s validated %s\n",
				c.ID, c.Platform, c.Kind, c.Validation, validated)
		}
		return nil
	},
}

var credentialsValidateCmd = &cobra.Command{
	Use:   "validate <credential-id>",
	Short: "Re-run validation for a stored credential",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		result, err := app.credentials.Revalidate(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printValidation(cmd, result)
		return nil
	},
}

func init() {
	credentialsCmd.AddCommand(credentialsSetCmd, credentialsListCmd, credentialsValidateCmd)
	rootCmd.AddCommand(credentialsCmd)
}

func runCredentialsSet(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := cmd.Context()
	projectID, platform := args[0], strings.ToLower(args[1])

	if _, err := app.store.Projects().Get(ctx, projectID); err != nil {
		return fmt.Errorf("loading project: %w", err)
	}

	supported := false
	for _, p := range app.registry.Supported() {
		if p == platform {
			supported = true
			break
		}
	}
	if !supported {
		return fmt.Errorf("%w: %s (supported: %s)", domain.ErrUnsupportedPlatform,
			platform, strings.Join(app.registry.Supported(), ", "))
	}

	req := app.registry.Requirements(platform)

	payload := domain.CredentialPayload{}
	reader := bufio.NewReader(os.Stdin)
	for _, field := range req.RequiredFields {
		cmd.Printf("%s: ", field)
		payload[field] = readSecret(reader)
		cmd.Println()
	}
	for _, field := range req.OptionalFields {
		cmd.Printf("%s (optional): ", field)
		if value := readLine(reader); value != "" {
			payload[field] = value
		}
	}

	cred, result, err := app.credentials.Save(ctx, projectID, platform, payload)
	if err != nil {
		return err
	}
	printValidation(cmd, result)
	cmd.Printf("credential stored: %s\n", cred.ID)
	return nil
}

func printValidation(cmd *cobra.Command, result domain.ValidationResult) {
	if result.Valid {
		cmd.Printf("validation passed for %s\n", result.Platform)
		if name, ok := result.AccountInfo["account_name"]; ok {
			cmd.Printf("  account: %v\n", name)
		}
		return
	}
	cmd.Printf("validation FAILED for %s: %s\n", result.Platform, result.Error)
}

// readSecret reads a value without echo when stdin is a terminal,
// falling back to a plain line read otherwise (pipes, tests).
//
//nolint:errcheck // CLI helper, error ignored for UX
func readSecret(reader *bufio.Reader) string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		if secret, err := term.ReadPassword(int(os.Stdin.Fd())); err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	return readLine(reader)
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}
