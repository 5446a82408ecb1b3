package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roamchat/roam/internal/llm"
	"github.com/roamchat/roam/internal/service"
	"github.com/roamchat/roam/internal/session"
	remotesync "github.com/roamchat/roam/internal/sync"
)

var askSave bool

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the travel assistant a single question",
	Long: `Ask one question and print the answer, without the interactive UI.

By default the exchange is throwaway. With --save and a signed-in
account the question and answer are stored as a new session, so the
conversation can be picked up later in 'roam chat'.

Examples:
  roam ask "What's the best month to visit Patagonia?"
  roam ask --save "Plan a week in Rome on a budget"`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askSave, "save", false, "save the exchange as a new session")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	completer, err := llm.NewClient(ctx, cfg, logger, collector)
	if err != nil {
		return fmt.Errorf("init completion client: %w", err)
	}

	if askSave {
		if err := requireAuth(); err != nil {
			return err
		}
	}

	store := session.NewStore()
	syncer := remotesync.New(dbClient, authSession, logger, collector)
	chat := service.NewChat(store, completer, syncer, logger)

	var id string
	if askSave {
		id = chat.NewChat(ctx)
	} else {
		id = "ask"
		store.Add(id)
	}

	messages, err := chat.Send(ctx, id, args[0])
	if err != nil {
		// The reply exists locally; only persistence failed.
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
	}

	if len(messages) == 0 {
		return fmt.Errorf("no response")
	}
	fmt.Println(messages[len(messages)-1].Text)

	if askSave && err == nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved as %s\n", id)
	}
	return nil
}
