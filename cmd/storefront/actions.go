package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "List the registered modal actions",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer closeApp(app)

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ACTION\tSUBMITS")
		reg := app.Client.Registry()
		for _, id := range reg.IDs() {
			_, submits := reg.LookupHandler(id)
			fmt.Fprintf(w, "%s\t%t\n", id, submits)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(actionsCmd)
}
