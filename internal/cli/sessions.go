package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roamchat/roam/internal/auth"
	"github.com/roamchat/roam/internal/models"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage saved chat sessions",
	Long: `List and manage the chat sessions saved to your account.

All subcommands require being signed in; local-only sessions from a
signed-out chat never reach the server and cannot be listed here.

Examples:
  roam sessions list
  roam sessions new "Trip to Lisbon"
  roam sessions rename session:abc123 "Lisbon in May"
  roam sessions delete session:abc123`,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved sessions, most recently updated first",
	Args:  cobra.NoArgs,
	RunE:  runSessionsList,
}

var sessionsNewCmd = &cobra.Command{
	Use:   "new [title]",
	Short: "Create a saved session",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSessionsNew,
}

var sessionsRenameCmd = &cobra.Command{
	Use:   "rename <id> <title>",
	Short: "Rename a saved session",
	Args:  cobra.ExactArgs(2),
	RunE:  runSessionsRename,
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsDelete,
}

func init() {
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsNewCmd)
	sessionsCmd.AddCommand(sessionsRenameCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
}

func requireAuth() error {
	if _, ok := authSession.User(); !ok {
		return fmt.Errorf("%w; use 'roam login' first", auth.ErrNotSignedIn)
	}
	return nil
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	if err := requireAuth(); err != nil {
		return err
	}

	sessions, err := dbClient.ListSessions(cmd.Context())
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}

	if len(sessions) == 0 {
		fmt.Println("No saved sessions yet. Start one with 'roam chat'.")
		return nil
	}

	for _, sess := range sessions {
		fmt.Printf("%-24s  %-30s  %d messages  %s\n",
			models.MustRecordIDString(sess.ID),
			sess.Title,
			len(sess.Messages),
			sess.UpdatedAt.Format("2006-01-02 15:04"),
		)
	}
	return nil
}

func runSessionsNew(cmd *cobra.Command, args []string) error {
	if err := requireAuth(); err != nil {
		return err
	}

	title := "New chat"
	if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
		title = strings.TrimSpace(args[0])
	}

	created, err := dbClient.CreateSession(cmd.Context(), title)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	fmt.Printf("Created %s (%s)\n", models.MustRecordIDString(created.ID), created.Title)
	return nil
}

func runSessionsRename(cmd *cobra.Command, args []string) error {
	if err := requireAuth(); err != nil {
		return err
	}

	id, title := stripIDPrefix(args[0]), strings.TrimSpace(args[1])
	if title == "" {
		return fmt.Errorf("title must not be empty")
	}

	updated, err := dbClient.UpdateTitle(cmd.Context(), id, title)
	if err != nil {
		return fmt.Errorf("rename session: %w", err)
	}

	fmt.Printf("Renamed %s to %q\n", models.MustRecordIDString(updated.ID), updated.Title)
	return nil
}

func runSessionsDelete(cmd *cobra.Command, args []string) error {
	if err := requireAuth(); err != nil {
		return err
	}

	id := stripIDPrefix(args[0])
	if err := dbClient.DeleteSession(cmd.Context(), id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	fmt.Printf("Deleted %s\n", id)
	return nil
}

// stripIDPrefix accepts both "session:abc" and bare "abc" record IDs.
func stripIDPrefix(id string) string {
	return strings.TrimPrefix(id, "session:")
}
