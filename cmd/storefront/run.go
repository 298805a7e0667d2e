package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/storefront/internal/cli"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [action]",
	Short: "Open one modal action interactively",
	Long: `Opens the modal for an action and reads edits from standard input:

  <field>=<value>   set a field by name or number
  submit            press the primary button
  close             dismiss the modal`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts cli.OpenOptions
		opts.Action, _ = cmd.Flags().GetString("action")
		if len(args) > 0 {
			opts.Action = args[0]
		}
		opts.Title, _ = cmd.Flags().GetString("title")
		opts.ProductID, _ = cmd.Flags().GetString("product")
		opts.StreamID, _ = cmd.Flags().GetString("stream")
		opts.RemoteID, _ = cmd.Flags().GetString("remote-id")
		headless, _ := cmd.Flags().GetBool("headless")

		req, err := cli.OpenRequest(opts)
		if err != nil {
			return err
		}

		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer closeApp(app)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return cli.RunSession(ctx, app, req, cli.SessionOptions{
			In:       os.Stdin,
			Out:      cmd.OutOrStdout(),
			Headless: headless,
			Terminal: !headless && term.IsTerminal(int(os.Stdout.Fd())),
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("action", "", "Action to open (see 'storefront actions')")
	runCmd.Flags().String("title", "", "Modal title")
	runCmd.Flags().String("product", "", "Product id passed as context")
	runCmd.Flags().String("stream", "", "Local stream id passed as context")
	runCmd.Flags().String("remote-id", "", "Server-side stream id passed as context")
	runCmd.Flags().Bool("headless", false, "Run in headless mode (no prompts, no colors)")
}
