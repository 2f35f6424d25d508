package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"noticeboard/internal/adapters/storage"
	announcementStore "noticeboard/internal/adapters/storage/announcement"
	"noticeboard/internal/application/projections"
)

func newAnnouncementsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "announcements",
		Aliases: []string{"ann"},
		Short:   "Inspect published announcements",
	}
	cmd.AddCommand(newAnnouncementsListCommand(ctx))
	return cmd
}

func newAnnouncementsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List announcements, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDB(cmd.Context(), func(db storage.SQLDB) error {
				views, err := projections.QueryListAnnouncements(cmd.Context(), projections.ListAnnouncementsQuery{},
					projections.ListAnnouncementsDeps{AnnouncementStore: announcementStore.NewSQLiteStore(db)})
				if err != nil {
					return err
				}
				if ctx.wantJSON() {
					return writeJSON(cmd, views)
				}
				if len(views) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No announcements")
					return nil
				}

				rows := make([][]string, 0, len(views))
				for _, v := range views {
					image := ""
					if v.ImageURL != nil {
						image = *v.ImageURL
					}
					rows = append(rows, []string{v.ID, truncate(v.Title, 40), image, formatTime(v.CreatedAt)})
				}
				printTable(cmd.OutOrStdout(), []string{"ID", "Title", "Image", "Created"}, rows, nil)
				return nil
			})
		},
	}
}
