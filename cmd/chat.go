package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat rooms and messages",
}

var chatRoomsCmd = &cobra.Command{
	Use:   "rooms",
	Short: "List your chat rooms",
	Run: func(_ *cobra.Command, _ []string) {
		ctx := context.Background()
		e := setup(ctx, true)
		defer e.close()

		rooms, err := e.client.GetRooms(ctx, e.session.UserID)
		if err != nil {
			e.logger.Fatal("getting chat rooms", zap.Error(err))
		}

		err = e.out.print(rooms, func(w io.Writer) {
			for _, r := range rooms {
				fmt.Fprintf(w, "%s %s: %s\n", r.Peer(e.session.UserID), r.User.Name, r.LastMessage)
			}
		})
		if err != nil {
			e.logger.Fatal("printing chat rooms", zap.Error(err))
		}
	},
}

var chatHistoryCmd = &cobra.Command{
	Use:   "history <user-id>",
	Short: "Show messages exchanged with a user",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		ctx := context.Background()
		e := setup(ctx, true)
		defer e.close()

		messages, err := e.client.GetHistory(ctx, args[0])
		if err != nil {
			e.logger.Fatal("getting chat history", zap.Error(err), zap.String("recipient_id", args[0]))
		}

		err = e.out.print(messages, func(w io.Writer) {
			for _, m := range messages {
				sender := m.Sender.Name
				if m.Sender.ID == e.session.UserID {
					sender = "me"
				}
				fmt.Fprintf(w, "%s %s: %s\n", m.Timestamp, sender, m.Message)
			}
		})
		if err != nil {
			e.logger.Fatal("printing chat history", zap.Error(err))
		}
	},
}

var chatSendCmd = &cobra.Command{
	Use:   "send <user-id> <message...>",
	Short: "Send a message",
	Args:  cobra.MinimumNArgs(2),
	Run: func(_ *cobra.Command, args []string) {
		ctx := context.Background()
		e := setup(ctx, true)
		defer e.close()

		if err := e.client.SendMessage(ctx, args[0], strings.Join(args[1:], " ")); err != nil {
			e.logger.Fatal("sending message", zap.Error(err), zap.String("recipient_id", args[0]))
		}
		e.logger.Info("message sent", zap.String("recipient_id", args[0]))
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.AddCommand(chatRoomsCmd, chatHistoryCmd, chatSendCmd)
}
