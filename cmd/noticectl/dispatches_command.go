package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"noticeboard/internal/adapters/storage"
	dispatchLogStore "noticeboard/internal/adapters/storage/dispatchlog"
	"noticeboard/internal/application/projections"
)

func newDispatchesCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dispatches",
		Short: "Inspect notification attempts",
	}
	cmd.AddCommand(newDispatchesListCommand(ctx))
	return cmd
}

func newDispatchesListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var announcementID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent notification attempts, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDB(cmd.Context(), func(db storage.SQLDB) error {
				views, err := projections.QueryListDispatches(cmd.Context(), projections.ListDispatchesQuery{
					AnnouncementID: announcementID,
					Limit:          limit,
				}, projections.ListDispatchesDeps{DispatchLog: dispatchLogStore.NewSQLiteStore(db)})
				if err != nil {
					return err
				}
				if ctx.wantJSON() {
					return writeJSON(cmd, views)
				}
				if len(views) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No dispatches")
					return nil
				}

				rows := make([][]string, 0, len(views))
				for _, v := range views {
					detail := v.MessageID
					if v.Error != "" {
						detail = truncate(v.Error, 50)
					}
					rows = append(rows, []string{
						formatTime(v.AttemptedAt),
						v.AnnouncementID,
						v.Operation,
						v.Status,
						strconv.Itoa(v.RecipientCount),
						strconv.FormatInt(v.DurationMs, 10),
						detail,
					})
				}
				printTable(cmd.OutOrStdout(),
					[]string{"Attempted", "Announcement", "Operation", "Status", "Recipients", "ms", "Detail"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft})
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", projections.DefaultDispatchLimit, "Maximum attempts to show")
	cmd.Flags().StringVar(&announcementID, "announcement", "", "Only attempts for this announcement id")
	return cmd
}
