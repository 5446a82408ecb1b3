package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roamchat/roam/internal/llm"
	"github.com/roamchat/roam/internal/service"
	"github.com/roamchat/roam/internal/session"
	remotesync "github.com/roamchat/roam/internal/sync"
	"github.com/roamchat/roam/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the interactive chat UI",
	Long: `Start the interactive travel-assistant chat.

Sessions live in a drawer on the left; the assistant greets every new
conversation. When you are signed in, sessions and messages are synced
to your account. Signed out, everything stays local to the process.

Examples:
  roam chat`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	completer, err := llm.NewClient(ctx, cfg, logger, collector)
	if err != nil {
		return fmt.Errorf("init completion client: %w", err)
	}

	store := session.NewStore()
	syncer := remotesync.New(dbClient, authSession, logger, collector)
	chat := service.NewChat(store, completer, syncer, logger)

	var account string
	if user, ok := authSession.User(); ok {
		account = user.Email
	}

	if err := tui.Run(ctx, chat, store, account); err != nil {
		return err
	}

	logUsage()
	return nil
}

// logUsage writes the process metrics to the log on exit, so completion
// latency and token counts are inspectable after the fact.
func logUsage() {
	snap := collector.Snapshot()
	if snap.Completion == nil {
		return
	}
	attrs := []any{
		"completions", snap.Completion.Count,
		"avg_time_ms", snap.Completion.AvgTimeMs,
	}
	if snap.Completion.TotalInputTokens != nil {
		attrs = append(attrs,
			"input_tokens", *snap.Completion.TotalInputTokens,
			"output_tokens", *snap.Completion.TotalOutputTokens,
		)
	}
	logger.Info("session usage", attrs...)
}
