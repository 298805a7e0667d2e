package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var retryCmd = &cobra.Command{
	Use:   "retry",
	Short: "Inspect and replay rejected reviews",
	Long:  `Reviews the backend rejected are kept in the fallback store. These commands list, replay or drop them.`,
}

var retryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List kept reviews, oldest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer closeApp(app)

		pending, err := app.Client.PendingComments(cmd.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tPRODUCT\tCREATED\tREASON")
		for _, a := range pending {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", a.ID, a.TargetID, a.CreatedAt.Format(time.RFC3339), a.Reason)
		}
		return w.Flush()
	},
}

var retryReplayCmd = &cobra.Command{
	Use:   "replay <id>",
	Short: "Post a kept review again",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer closeApp(app)

		ticket, err := app.Client.RetryComment(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		werr := ticket.Wait(cmd.Context())
		if n, ok := app.Client.Notices().Get(ticket.ID()); ok {
			fmt.Fprintln(cmd.OutOrStdout(), n.Message)
		}
		return werr
	},
}

var retryDropCmd = &cobra.Command{
	Use:   "drop <id>",
	Short: "Discard a kept review",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer closeApp(app)

		if err := app.Client.DropAttempt(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "dropped %s\n", args[0])
		return nil
	},
}

func init() {
	retryCmd.AddCommand(retryListCmd, retryReplayCmd, retryDropCmd)
	rootCmd.AddCommand(retryCmd)
}
