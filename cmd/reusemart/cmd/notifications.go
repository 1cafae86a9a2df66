package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/reusemart/reusemart-mobile/internal/domain/market"
	"github.com/reusemart/reusemart-mobile/internal/service"
)

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"notif"},
	Short:   "List and read notifications",
	Args:    cobra.NoArgs,
	RunE:    runApp(runNotificationsList),
}

var notificationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notifications, newest first",
	Args:  cobra.NoArgs,
	RunE:  runApp(runNotificationsList),
}

var notificationsUnreadCmd = &cobra.Command{
	Use:   "unread",
	Short: "Show the number of unread notifications",
	Args:  cobra.NoArgs,
	RunE:  runApp(runNotificationsUnread),
}

var notificationsReadCmd = &cobra.Command{
	Use:   "read <id>",
	Short: "Mark a notification as read",
	Args:  cobra.ExactArgs(1),
	RunE:  runApp(runNotificationsRead),
}

func init() {
	notificationsCmd.AddCommand(notificationsListCmd, notificationsUnreadCmd, notificationsReadCmd)
	rootCmd.AddCommand(notificationsCmd)
}

func runNotificationsList(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
	if err := requireSession(ctx, a); err != nil {
		return err
	}
	screen := traced(a.logger, "notifications", service.NewListScreen[market.Notification]())
	screen.Load(ctx, a.clients.Notifications.List, "notifications")
	return show(cmd, screen, "No notifications.", func(w io.Writer, ns []market.Notification) {
		fmt.Fprintln(w, "ID\tDATE\t\tTITLE\tMESSAGE")
		for _, n := range ns {
			mark := "*"
			if n.Read {
				mark = ""
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", n.ID, date(n.CreatedAt), mark, n.Title, n.Message)
		}
	})
}

func runNotificationsUnread(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
	if err := requireSession(ctx, a); err != nil {
		return err
	}
	n, err := a.clients.Notifications.UnreadCount(ctx)
	if err != nil {
		return err
	}
	return message(cmd, map[string]int{"unread": n}, "%d unread.", n)
}

func runNotificationsRead(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
	id, err := parseID("notification id", args[0])
	if err != nil {
		return err
	}
	if err := requireSession(ctx, a); err != nil {
		return err
	}
	if err := a.clients.Notifications.MarkRead(ctx, id); err != nil {
		return err
	}
	return message(cmd, map[string]any{"id": id, "read": true}, "Notification %d marked as read.", id)
}
