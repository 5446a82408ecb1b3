package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Install the database schema (requires admin credentials)",
	Long: `Install the Roam schema on the SurrealDB instance: the user and
session tables and the record access used for sign-up and sign-in.

Admin credentials come from SURREALDB_USER and SURREALDB_PASS. This is
a one-time setup step per database; normal commands authenticate as
record users and never need admin rights.

Examples:
  SURREALDB_USER=root SURREALDB_PASS=secret roam init`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if err := dbClient.SignInAdmin(ctx, cfg.SurrealDBAdminUser, cfg.SurrealDBAdminPass); err != nil {
		return fmt.Errorf("admin sign-in: %w", err)
	}
	if err := dbClient.InitSchema(ctx); err != nil {
		return fmt.Errorf("install schema: %w", err)
	}

	fmt.Printf("Schema installed on %s (%s/%s)\n",
		cfg.SurrealDBURL, cfg.SurrealDBNamespace, cfg.SurrealDBDatabase)
	return nil
}
