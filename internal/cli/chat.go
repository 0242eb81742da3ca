package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/triage"
	"github.com/aretw0/triage/internal/presentation/tui"
)

// ChatOptions configures an interactive intake.
type ChatOptions struct {
	Input  io.Reader
	Output io.Writer
	// Rich renders the result as styled markdown.
	Rich     bool
	WordWrap int
	// Banner prints the ascii banner first.
	Banner bool
}

// Chat runs one intake on the terminal and waits for its result. Leaving
// the chat with exit, EOF or Ctrl+C is not an error.
func Chat(ctx context.Context, app *App, opts ChatOptions) error {
	if opts.Banner {
		tui.PrintBanner(opts.Output, triage.Version)
	}

	r := triage.NewRunner(NewInterruptibleReader(opts.Input, ctx.Done()), opts.Output)
	if opts.Rich {
		render, err := tui.NewRenderer(opts.WordWrap)
		if err != nil {
			return fmt.Errorf("failed to create renderer: %w", err)
		}
		r.Renderer = render
	}

	job, err := r.Run(ctx, app.Service)
	switch {
	case errors.Is(err, triage.ErrAborted) || isInterrupted(err):
		fmt.Fprintln(opts.Output, ">>> Chat interrupted.")
		return nil
	case err != nil:
		return err
	}
	app.Logger.Debug("Chat finished", "job_id", job.ID, "status", job.Status)
	return nil
}
