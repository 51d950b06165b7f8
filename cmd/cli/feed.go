package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/and161185/classroom/internal/errs"
	"github.com/and161185/classroom/internal/model"
	"github.com/and161185/classroom/internal/ownership"
	"github.com/and161185/classroom/internal/render"
	"github.com/and161185/classroom/internal/service"
)

func findStatus(list []*model.Status, id string) *model.Status {
	for _, st := range list {
		if st.ID == id {
			return st
		}
	}
	return nil
}

// loadFeed fetches the page so later mutations have a snapshot to act on.
func (a *app) loadFeed(ctx context.Context) ([]*model.Status, error) {
	return a.feed.List(ctx)
}

func (a *app) logEvent(ev service.Event) {
	a.log.Debug("feed event",
		zap.String("op", ev.Op),
		zap.String("id", ev.EntityID),
		zap.Stringer("state", ev.State),
		zap.Int("statuses", len(ev.Statuses)),
		zap.Error(ev.Err))
}

func (a *app) showStatus(ctx context.Context, st *model.Status) error {
	if a.flags.json {
		return a.printJSON(render.NewStatusView(st, a.viewer()))
	}
	a.renderer(ctx).Status(st, a.viewer())
	return nil
}

func joinContent(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	return strings.Join(args, " "), nil
}

func newFeedCmd(a *app) *cobra.Command {
	var atom bool
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "List the latest statuses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			list, err := a.loadFeed(ctx)
			if err != nil {
				return err
			}
			switch {
			case atom:
				doc, err := render.Atom(list, "Classroom feed", a.cfg.API.URL, time.Now())
				if err != nil {
					return err
				}
				fmt.Fprintln(a.out, doc)
			case a.flags.json:
				return a.printJSON(render.StatusViews(list, a.viewer()))
			default:
				a.renderer(ctx).Feed(list, a.viewer())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&atom, "atom", false, "print the feed as an Atom document")
	return cmd
}

func newPostCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "post <text...|->",
		Short: "Publish a status",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := joinContent(cmd, args)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := a.feed.Create(ctx, content); err != nil {
				return err
			}
			if a.flags.json {
				return a.printJSON(render.StatusViews(a.feed.Statuses(), a.viewer()))
			}
			fmt.Fprintln(a.out, "Posted.")
			return nil
		},
	}
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <status-id>",
		Short: "Show one status with its comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.feed.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.showStatus(cmd.Context(), st)
		},
	}
}

func newRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <status-id>",
		Short: "Delete one of your statuses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			list, err := a.loadFeed(ctx)
			if err != nil {
				return err
			}
			st := findStatus(list, args[0])
			if st == nil {
				return errs.ErrNotFound
			}
			if !ownership.IsOwnedByViewer(st.Author, a.viewer()) {
				return errs.Invalid("status", "only your own posts can be deleted")
			}
			if err := a.feed.Delete(ctx, st.ID); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Deleted.")
			return nil
		},
	}
}

func newLikeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "like <status-id>",
		Short: "Like a status, or unlike it if you already do",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := a.loadFeed(ctx); err != nil {
				return err
			}
			if err := a.feed.ToggleLike(ctx, args[0]); err != nil {
				return err
			}
			st := findStatus(a.feed.Statuses(), args[0])
			if st == nil {
				return nil
			}
			if a.flags.json {
				return a.printJSON(render.NewStatusView(st, a.viewer()))
			}
			verb := "Unliked"
			if ownership.HasViewerLiked(st, a.viewer()) {
				verb = "Liked"
			}
			fmt.Fprintf(a.out, "%s (%d).\n", verb, st.EffectiveLikeCount())
			return nil
		},
	}
}

func newCommentCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "comment <status-id> <text...|->",
		Short: "Comment on a status",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			content, err := joinContent(cmd, args[1:])
			if err != nil {
				return err
			}
			if _, err := a.loadFeed(ctx); err != nil {
				return err
			}
			if err := a.feed.AddComment(ctx, args[0], content); err != nil {
				return err
			}
			if st := findStatus(a.feed.Statuses(), args[0]); st != nil {
				return a.showStatus(ctx, st)
			}
			fmt.Fprintln(a.out, "Commented.")
			return nil
		},
	}
}

func newRmCommentCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm-comment <status-id> <comment-id>",
		Short: "Delete one of your comments",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.feed.Capabilities().CommentDelete {
				return errs.ErrUnsupported
			}
			ctx := cmd.Context()
			list, err := a.loadFeed(ctx)
			if err != nil {
				return err
			}
			st := findStatus(list, args[0])
			if st == nil {
				return errs.ErrNotFound
			}
			var c *model.Comment
			for i := range st.Comments {
				if st.Comments[i].ID == args[1] {
					c = &st.Comments[i]
				}
			}
			if c == nil {
				return errs.ErrNotFound
			}
			if !ownership.IsOwnedByViewer(c.Author, a.viewer()) {
				return errs.Invalid("comment", "only your own comments can be deleted")
			}
			if err := a.feed.DeleteComment(ctx, c.ID, st.ID); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Comment deleted.")
			return nil
		},
	}
}

func newClassCmd(a *app) *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "class <year>",
		Short: "List classmates by enrollment year",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			members, err := a.class.MembersByYear(ctx, args[0])
			if err != nil {
				return err
			}
			members = service.FilterMembers(members, query)
			if a.flags.json {
				return a.printJSON(members)
			}
			a.renderer(ctx).Members(strings.TrimSpace(args[0]), members)
			return nil
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "filter by name, email or student id")
	return cmd
}
