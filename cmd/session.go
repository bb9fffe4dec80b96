package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lexflow/statrev/internal/output"
	"github.com/lexflow/statrev/internal/review"
	"github.com/lexflow/statrev/internal/store"
)

var (
	sessionAuthor      string
	sessionAuthorName  string
	sessionRole        string
	sessionDisplayName string
	sessionTarget      string
	sessionAnnType     string
	sessionStatuteID   string
	sessionState       string
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage review sessions",
	Long:  "Create and work through stakeholder review sessions around statute diffs.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return sessionListRun()
	},
}

var sessionCreateCmd = &cobra.Command{
	Use:   "create <old.yaml> <new.yaml>",
	Short: "Submit a statute diff for review",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sessionCreateRun(args[0], args[1])
	},
}

var sessionListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List review sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return sessionListRun()
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show a review session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sessionShowRun(args[0])
	},
}

var sessionParticipantAddCmd = &cobra.Command{
	Use:   "participant-add <session-id> <user-id>",
	Short: "Add a participant to a session",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sessionMutateRun(args[0], func(s *review.Session) error {
			role, ok := review.ParseRole(sessionRole)
			if !ok {
				return fmt.Errorf("unknown role: %s", sessionRole)
			}
			name := sessionDisplayName
			if name == "" {
				name = args[1]
			}
			s.AddParticipant(args[1], name, role)
			return nil
		})
	},
}

var sessionCommentCmd = &cobra.Command{
	Use:   "comment <session-id> <user-id> <text>",
	Short: "Comment on a session",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sessionMutateRun(args[0], func(s *review.Session) error {
			s.AddComment(args[1], args[2], sessionTarget)
			return nil
		})
	},
}

var sessionAnnotateCmd = &cobra.Command{
	Use:   "annotate <session-id> <user-id> <target> <text>",
	Short: "Annotate a change location",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sessionMutateRun(args[0], func(s *review.Session) error {
			s.AddAnnotation(args[1], args[2], args[3], review.AnnotationType(sessionAnnType))
			return nil
		})
	},
}

var sessionResolveCmd = &cobra.Command{
	Use:   "resolve <session-id> <comment-id>",
	Short: "Resolve a comment",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sessionMutateRun(args[0], func(s *review.Session) error {
			s.ResolveComment(args[1])
			return nil
		})
	},
}

var sessionApproveCmd = &cobra.Command{
	Use:   "approve <session-id> <user-id>",
	Short: "Approve a session",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sessionMutateRun(args[0], func(s *review.Session) error {
			return s.Approve(args[1])
		})
	},
}

var sessionRequestChangesCmd = &cobra.Command{
	Use:   "request-changes <session-id> <user-id> <reason>",
	Short: "Request changes on a session",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sessionMutateRun(args[0], func(s *review.Session) error {
			s.RequestChanges(args[1], args[2])
			return nil
		})
	},
}

var sessionRejectCmd = &cobra.Command{
	Use:   "reject <session-id> <user-id> <reason>",
	Short: "Reject a session",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sessionMutateRun(args[0], func(s *review.Session) error {
			s.Reject(args[1], args[2])
			return nil
		})
	},
}

var sessionCancelCmd = &cobra.Command{
	Use:   "cancel <session-id> <user-id>",
	Short: "Cancel a session",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sessionMutateRun(args[0], func(s *review.Session) error {
			s.Cancel(args[1])
			return nil
		})
	},
}

func init() {
	sessionCreateCmd.Flags().StringVar(&sessionAuthor, "author", "", "User id of the submitting author (required)")
	sessionCreateCmd.Flags().StringVar(&sessionAuthorName, "author-name", "", "Display name of the author")
	_ = sessionCreateCmd.MarkFlagRequired("author")

	sessionListCmd.Flags().StringVar(&sessionStatuteID, "statute", "", "Filter by statute id")
	sessionListCmd.Flags().StringVar(&sessionState, "state", "", "Filter by state: in_progress, approved, changes_requested, rejected, cancelled")

	sessionParticipantAddCmd.Flags().StringVar(&sessionRole, "role", string(review.RoleReviewer), "Role: reviewer, approver, author, moderator")
	sessionParticipantAddCmd.Flags().StringVar(&sessionDisplayName, "name", "", "Display name (defaults to user id)")

	sessionCommentCmd.Flags().StringVar(&sessionTarget, "target", "", "Change location to anchor the comment to, e.g. precondition[1]")

	sessionAnnotateCmd.Flags().StringVar(&sessionAnnType, "type", string(review.AnnotationNote), "Annotation type: suggestion, note, question, issue")

	sessionCmd.AddCommand(sessionCreateCmd)
	sessionCmd.AddCommand(sessionListCmd)
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionParticipantAddCmd)
	sessionCmd.AddCommand(sessionCommentCmd)
	sessionCmd.AddCommand(sessionAnnotateCmd)
	sessionCmd.AddCommand(sessionResolveCmd)
	sessionCmd.AddCommand(sessionApproveCmd)
	sessionCmd.AddCommand(sessionRequestChangesCmd)
	sessionCmd.AddCommand(sessionRejectCmd)
	sessionCmd.AddCommand(sessionCancelCmd)
	rootCmd.AddCommand(sessionCmd)
}

func sessionCreateRun(oldPath, newPath string) error {
	d, err := computeDiff(oldPath, newPath)
	if err != nil {
		return err
	}

	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	// Record the diff so later revisions see it as history.
	if err := s.SaveDiff(ctx, d); err != nil {
		return fmt.Errorf("save diff: %w", err)
	}

	name := sessionAuthorName
	if name == "" {
		name = sessionAuthor
	}
	sess := review.NewSession(d, sessionAuthor, name)
	if err := s.CreateReviewSession(ctx, sess); err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	ui.Success("Created review session %s for statute %s", output.Cyan(sess.ID), d.StatuteID)
	printDiff(d)
	return nil
}

func sessionListRun() error {
	s, err := getStore()
	if err != nil {
		return err
	}

	sessions, err := s.ListReviewSessions(context.Background(), store.SessionListFilter{
		StatuteID: sessionStatuteID,
		State:     review.State(sessionState),
	})
	if err != nil {
		return err
	}

	if len(sessions) == 0 {
		ui.Info("No review sessions")
		return nil
	}

	table := ui.Table([]string{"ID", "STATUTE", "STATE", "SEVERITY", "PARTICIPANTS", "UPDATED"})
	for _, sess := range sessions {
		table.Append([]string{
			sess.ID,
			sess.Diff.StatuteID,
			output.StateColor(sess.State),
			output.SeverityColor(sess.Diff.Impact.Severity),
			fmt.Sprintf("%d", len(sess.Participants)),
			sess.UpdatedAt.Format("2006-01-02 15:04"),
		})
	}
	return table.Render()
}

func sessionShowRun(id string) error {
	s, err := getStore()
	if err != nil {
		return err
	}

	sess, err := s.GetReviewSession(context.Background(), id)
	if err != nil {
		return err
	}

	ui.Info("Session %s — statute %s — %s", output.Cyan(sess.ID), sess.Diff.StatuteID, output.StateColor(sess.State))
	printDiff(sess.Diff)

	fmt.Fprintln(ui.Out)
	ui.Info("Participants:")
	pt := ui.Table([]string{"USER", "NAME", "ROLE", "ACTIVE"})
	for _, p := range sess.Participants {
		active := "yes"
		if !p.IsActive {
			active = "no"
		}
		pt.Append([]string{p.UserID, p.DisplayName, string(p.Role), active})
	}
	_ = pt.Render()

	if len(sess.Comments) > 0 {
		fmt.Fprintln(ui.Out)
		ui.Info("Comments:")
		ct := ui.Table([]string{"ID", "USER", "TARGET", "RESOLVED", "CONTENT"})
		for _, c := range sess.Comments {
			resolved := ""
			if c.Resolved {
				resolved = "✓"
			}
			ct.Append([]string{c.ID, c.UserID, c.Target, resolved, c.Content})
		}
		_ = ct.Render()
	}

	if len(sess.Annotations) > 0 {
		fmt.Fprintln(ui.Out)
		ui.Info("Annotations:")
		at := ui.Table([]string{"USER", "TARGET", "TYPE", "TEXT"})
		for _, a := range sess.Annotations {
			at.Append([]string{a.UserID, a.Target, string(a.Type), a.Text})
		}
		_ = at.Render()
	}

	return nil
}

// sessionMutateRun loads a session, applies op with a fresh notification
// sink attached, then persists both the session and any notifications the
// operation produced.
func sessionMutateRun(id string, op func(*review.Session) error) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	sess, err := s.GetReviewSession(ctx, id)
	if err != nil {
		return err
	}

	notifier := review.NewNotificationSystem()
	sess.SetNotifier(notifier)

	if err := op(sess); err != nil {
		return err
	}

	if err := s.UpdateReviewSession(ctx, sess); err != nil {
		return fmt.Errorf("update session: %w", err)
	}

	// Persist the notifications the operation fanned out.
	seen := make(map[string]bool)
	for _, p := range sess.Snapshot().Participants {
		if seen[p.UserID] {
			continue
		}
		seen[p.UserID] = true
		for _, n := range notifier.Notifications(p.UserID) {
			if err := s.SaveNotification(ctx, n); err != nil {
				return fmt.Errorf("save notification: %w", err)
			}
		}
	}

	ui.Success("Session %s updated (state: %s)", sess.ID, output.StateColor(sess.State))
	return nil
}
