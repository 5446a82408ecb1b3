package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roamchat/roam/internal/models"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show saved session statistics for the signed-in account",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	if err := requireAuth(); err != nil {
		return err
	}

	sessions, err := dbClient.ListSessions(cmd.Context())
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}

	var messages, fromUser int
	for _, sess := range sessions {
		messages += len(sess.Messages)
		for _, msg := range sess.Messages {
			if msg.Sender == models.SenderUser {
				fromUser++
			}
		}
	}

	fmt.Printf("Sessions:       %d\n", len(sessions))
	fmt.Printf("Messages:       %d\n", messages)
	fmt.Printf("  from you:     %d\n", fromUser)
	fmt.Printf("  from Roam:    %d\n", messages-fromUser)
	if len(sessions) > 0 {
		fmt.Printf("Last activity:  %s\n", sessions[0].UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}
