package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/lexflow/statrev/internal/output"
)

var inboxAll bool

var inboxCmd = &cobra.Command{
	Use:   "inbox <user-id>",
	Short: "Show a user's review notifications",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return inboxRun(args[0])
	},
}

var inboxReadCmd = &cobra.Command{
	Use:   "read <user-id> <notification-id>",
	Short: "Mark a notification as read",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return inboxReadRun(args[0], args[1])
	},
}

func init() {
	inboxCmd.Flags().BoolVar(&inboxAll, "all", false, "Include notifications already read")
	inboxCmd.AddCommand(inboxReadCmd)
	rootCmd.AddCommand(inboxCmd)
}

func inboxRun(userID string) error {
	s, err := getStore()
	if err != nil {
		return err
	}

	notifs, err := s.ListNotifications(context.Background(), userID, !inboxAll)
	if err != nil {
		return err
	}

	if len(notifs) == 0 {
		ui.Info("No notifications for %s", userID)
		return nil
	}

	table := ui.Table([]string{"ID", "TYPE", "SESSION", "MESSAGE", "READ"})
	for _, n := range notifs {
		read := ""
		if n.Read {
			read = "✓"
		}
		table.Append([]string{n.ID, string(n.Type), n.SessionID, n.Message, read})
	}
	return table.Render()
}

func inboxReadRun(userID, notificationID string) error {
	s, err := getStore()
	if err != nil {
		return err
	}

	if err := s.MarkNotificationRead(context.Background(), userID, notificationID); err != nil {
		return err
	}

	ui.Success("Marked %s read for %s", output.Cyan(notificationID), userID)
	return nil
}
