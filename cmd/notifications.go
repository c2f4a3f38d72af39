package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/shiftmatch/internal/backend"
	"github.com/spigell/shiftmatch/internal/watch"
)

var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "List and acknowledge notifications",
	Run: func(_ *cobra.Command, _ []string) {
		ctx := context.Background()
		e := setup(ctx, true)
		defer e.close()

		notifications, err := e.client.GetNotifications(ctx)
		if err != nil {
			e.logger.Fatal("getting notifications", zap.Error(err))
		}

		err = e.out.print(notifications.Items, func(w io.Writer) {
			for _, n := range notifications.Items {
				printNotification(w, n)
			}
			fmt.Fprintf(w, "%d unread of %d\n", notifications.Unread(), notifications.Len())
		})
		if err != nil {
			e.logger.Fatal("printing notifications", zap.Error(err))
		}
	},
}

var notificationsReadCmd = &cobra.Command{
	Use:   "read <id>",
	Short: "Mark one notification as read",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		ctx := context.Background()
		e := setup(ctx, true)
		defer e.close()

		if err := e.client.MarkNotificationRead(ctx, args[0]); err != nil {
			e.logger.Fatal("marking notification as read", zap.Error(err), zap.String("id", args[0]))
		}
		e.logger.Info("notification marked as read", zap.String("id", args[0]))
	},
}

var notificationsReadAllCmd = &cobra.Command{
	Use:   "read-all",
	Short: "Mark every notification as read",
	Run: func(_ *cobra.Command, _ []string) {
		ctx := context.Background()
		e := setup(ctx, true)
		defer e.close()

		if err := e.client.MarkAllNotificationsRead(ctx); err != nil {
			e.logger.Fatal("marking notifications as read", zap.Error(err))
		}
		e.logger.Info("all notifications marked as read")
	},
}

var notificationsWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll for new notifications until interrupted",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		e := setup(ctx, true)
		defer e.close()

		schedule, _ := cmd.Flags().GetString("schedule")
		if schedule == "" {
			schedule = e.config.Notifications.Schedule
		}

		w := watch.New(e.client, schedule, func(n *backend.Notification) {
			printNotification(os.Stdout, n)
		}, e.logger)

		if err := w.Start(ctx); err != nil {
			e.logger.Fatal("starting notifications watch", zap.Error(err), zap.String("schedule", schedule))
		}

		<-ctx.Done()
		w.Stop()
	},
}

func init() {
	rootCmd.AddCommand(notificationsCmd)
	notificationsCmd.AddCommand(notificationsReadCmd, notificationsReadAllCmd, notificationsWatchCmd)

	notificationsWatchCmd.Flags().String("schedule", "", "cron schedule, overrides notifications.schedule (default \"@every 1m\")")
}

func printNotification(w io.Writer, n *backend.Notification) {
	mark := " "
	if !n.Read {
		mark = "*"
	}
	fmt.Fprintf(w, "%s %s %s %s\n", mark, n.ID, n.CreatedAt, n.Message)
}
