package main

import (
	"os"

	"github.com/aretw0/triage/internal/cli"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Run one intake in the terminal",
	Long:  `Asks the questionnaire on stdin, runs the pipeline in-process and prints the triage result.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		app, err := buildApp(ctx, cmd, nil)
		if err != nil {
			return err
		}
		defer closeApp(app)

		plain, _ := cmd.Flags().GetBool("plain")
		tty := term.IsTerminal(int(os.Stdout.Fd()))
		width := 80
		if tty {
			if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
				width = w
			}
		}

		return cli.Chat(ctx, app, cli.ChatOptions{
			Input:    os.Stdin,
			Output:   os.Stdout,
			Rich:     tty && !plain,
			WordWrap: width,
			Banner:   tty,
		})
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().Bool("plain", false, "Print the result as raw markdown")
}
