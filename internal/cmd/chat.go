package cmd

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/autosdlc/autosdlc/internal/dashboard"
	"github.com/autosdlc/autosdlc/internal/errors"
	"github.com/autosdlc/autosdlc/internal/tui"
)

// Replaced in tests.
var promptLine = func() (string, error) {
	return tui.PromptForString(tui.Prompt{Message: "You", Placeholder: "exit to quit"})
}

func newChatCmd() *cobra.Command {
	var project string
	c := &cobra.Command{
		Use:   "chat [message]",
		Short: "Ask the assistant about a project",
		Long: `Send a message to the AutoSDLC assistant and print its reply.

With --project the question is about that project's plan, architecture or
costs. Without a message a conversation starts; type exit or quit, or send
EOF, to leave it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cc.Close()

			ctx := cmd.Context()
			store := dashboard.NewStore()
			if project != "" {
				state, err := cc.Client.GetProject(ctx, project)
				if err != nil {
					return err
				}
				store.Restore(state)
			}
			ctrl := cc.NewController(store)

			if len(args) == 1 {
				return sendChat(ctx, cc, ctrl, args[0])
			}
			return chatLoop(ctx, cc, ctrl)
		},
	}
	c.Flags().StringVarP(&project, "project", "p", "", "project the conversation is about")
	return c
}

// sendChat asks one question and prints the reply, which is the fixed
// connection error line when the backend call fails.
func sendChat(ctx context.Context, cc *CommandContext, ctrl *dashboard.Controller, message string) error {
	sendErr := ctrl.SendChat(ctx, message)
	if errors.Code(sendErr) == errors.ErrCodeEmptyMessage {
		return sendErr
	}

	snap := ctrl.Store().Snapshot()
	reply := chatReply{
		ProjectID: snap.ProjectID(),
		Message:   strings.TrimSpace(message),
		Reply:     snap.Transcript[len(snap.Transcript)-1].Content,
	}
	if err := cc.Print(reply); err != nil {
		return err
	}
	return sendErr
}

func chatLoop(ctx context.Context, cc *CommandContext, ctrl *dashboard.Controller) error {
	interactive := shouldPrompt()
	scanner := bufio.NewScanner(cc.In)
	if interactive {
		fmt.Fprintln(cc.Err, "Ask about the plan, architecture or costs. Type exit to quit.")
	}

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		var line string
		if interactive {
			var err error
			line, err = promptLine()
			if stderrors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			if err != nil {
				return err
			}
		} else {
			if !scanner.Scan() {
				return scanner.Err()
			}
			line = scanner.Text()
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		// A failed call already printed the connection error line; keep
		// the conversation going.
		if err := sendChat(ctx, cc, ctrl, line); err != nil {
			cc.Logger.WithError(err).Debug("chat message failed")
		}
	}
}
