package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"noticeboard/internal/adapters/storage"
	recipientStore "noticeboard/internal/adapters/storage/recipient"
	"noticeboard/internal/application/orchestrators"
	"noticeboard/internal/application/projections"
	"noticeboard/internal/domain/recipient"
)

func newRecipientsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "recipients",
		Aliases: []string{"emails"},
		Short:   "Manage the notification recipient directory",
	}
	cmd.AddCommand(newRecipientsListCommand(ctx))
	cmd.AddCommand(newRecipientsAddCommand(ctx))
	cmd.AddCommand(newRecipientsRemoveCommand(ctx))
	cmd.AddCommand(newRecipientsCheckCommand(ctx))
	return cmd
}

func newRecipientsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered recipients",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDB(cmd.Context(), func(db storage.SQLDB) error {
				views, err := projections.QueryListRecipients(cmd.Context(),
					projections.RecipientsDeps{RecipientStore: recipientStore.NewSQLiteStore(db)})
				if err != nil {
					return err
				}
				if ctx.wantJSON() {
					return writeJSON(cmd, views)
				}
				if len(views) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No recipients")
					return nil
				}
				rows := make([][]string, 0, len(views))
				for _, v := range views {
					rows = append(rows, []string{v.ID, v.Email, formatTime(v.CreatedAt)})
				}
				printTable(cmd.OutOrStdout(), []string{"ID", "Email", "Added"}, rows, nil)
				return nil
			})
		},
	}
}

func newRecipientsAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <email>",
		Short: "Register an address for announcement notifications",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDB(cmd.Context(), func(db storage.SQLDB) error {
				r, err := orchestrators.ExecuteAddRecipient(cmd.Context(), orchestrators.AddRecipientInput{Email: args[0]},
					orchestrators.AddRecipientDeps{
						RecipientStore: recipientStore.NewSQLiteStore(db),
						GenerateID:     newID,
						Now:            time.Now,
					})
				if errors.Is(err, recipient.ErrDuplicate) {
					return fmt.Errorf("%s is already registered", recipient.NormalizeEmail(args[0]))
				}
				if err != nil {
					return err
				}
				if ctx.wantJSON() {
					return writeJSON(cmd, projections.RecipientView{ID: r.ID, Email: r.Email, CreatedAt: r.CreatedAt})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", r.Email, r.ID)
				return nil
			})
		},
	}
}

func newRecipientsRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Unregister a recipient by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDB(cmd.Context(), func(db storage.SQLDB) error {
				err := orchestrators.ExecuteRemoveRecipient(cmd.Context(), args[0],
					orchestrators.RemoveRecipientDeps{RecipientStore: recipientStore.NewSQLiteStore(db)})
				if errors.Is(err, recipient.ErrNotFound) {
					return fmt.Errorf("no recipient with id %s", args[0])
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
				return nil
			})
		},
	}
}

func newRecipientsCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check <email>",
		Short: "Report whether an address is registered",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDB(cmd.Context(), func(db storage.SQLDB) error {
				exists, err := projections.QueryRecipientExists(cmd.Context(), args[0],
					projections.RecipientsDeps{RecipientStore: recipientStore.NewSQLiteStore(db)})
				if err != nil {
					return err
				}
				if ctx.wantJSON() {
					return writeJSON(cmd, map[string]bool{"exists": exists})
				}
				if exists {
					fmt.Fprintf(cmd.OutOrStdout(), "%s is registered\n", recipient.NormalizeEmail(args[0]))
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%s is not registered\n", recipient.NormalizeEmail(args[0]))
				}
				return nil
			})
		},
	}
}

// newID returns a time-ordered UUIDv7 so ids sort by creation.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
