package triage

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aretw0/triage/internal/presentation/tui"
	"github.com/aretw0/triage/pkg/catalog"
	"github.com/aretw0/triage/pkg/domain"
)

// ErrAborted is returned by Runner.Run when the patient leaves the chat.
var ErrAborted = errors.New("intake aborted")

// Runner drives one intake and its pipeline over line-oriented IO.
// This allows for easy testing and integration with different frontends.
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Renderer ContentRenderer
	// PollInterval is how often the job is polled once the intake is complete.
	PollInterval time.Duration
}

// ContentRenderer transforms markdown before it is written, for example into
// ANSI for a terminal.
type ContentRenderer func(string) (string, error)

// NewRunner creates a Runner reading from in and writing to out.
func NewRunner(in io.Reader, out io.Writer) *Runner {
	return &Runner{
		Input:        in,
		Output:       out,
		PollInterval: 250 * time.Millisecond,
	}
}

// Run executes the intake loop until the questionnaire is complete, then
// starts the pipeline and waits for the job to finish. Typing "exit" or
// "quit", or closing the input, returns ErrAborted.
func (r *Runner) Run(ctx context.Context, svc *Service) (*domain.Job, error) {
	if r.Input == nil || r.Output == nil {
		return nil, fmt.Errorf("input and output must be set")
	}
	lines := bufio.NewScanner(r.Input)
	w := r.Output

	info, err := svc.CreateSession(ctx)
	if err != nil {
		return nil, err
	}
	fmt.Fprintln(w, info.Welcome)
	fmt.Fprintln(w)
	fmt.Fprintln(w, info.LanguagePrompt)
	for i, l := range info.Languages {
		fmt.Fprintf(w, "  %d. %s (%s)\n", i+1, l.Name, l.Code)
	}

	for {
		fmt.Fprint(w, "> ")
		if !lines.Scan() {
			if err := lines.Err(); err != nil {
				return nil, fmt.Errorf("input error: %w", err)
			}
			return nil, ErrAborted
		}
		input := strings.TrimSpace(lines.Text())
		if input == "exit" || input == "quit" {
			fmt.Fprintln(w, "Bye!")
			return nil, ErrAborted
		}

		step, err := svc.SubmitAnswer(ctx, info.SessionID, input)
		switch {
		case errors.Is(err, domain.ErrInvalidLanguage):
			fmt.Fprintln(w, "Please choose one of the listed languages.")
			continue
		case errors.Is(err, domain.ErrInvalidInput):
			fmt.Fprintf(w, "That answer could not be accepted (%v). Please try again.\n", err)
			continue
		case err != nil:
			return nil, err
		}

		if step.Complete {
			break
		}
		fmt.Fprintf(w, "\n[%d/%d] %s\n", step.QuestionNumber, catalog.Total(), step.NextQuestion)
	}

	jobID, err := svc.StartPipeline(ctx, info.SessionID)
	if err != nil {
		return nil, err
	}
	fmt.Fprintln(w, "\nThank you. Your answers are being reviewed...")

	job, err := r.wait(ctx, svc, jobID)
	if err != nil {
		return nil, err
	}

	if job.Status == domain.JobCompleted {
		r.print(tui.ResultMarkdown(job.Result))
	} else {
		fmt.Fprintf(w, "Triage could not be completed: %s (%s).\n", job.Failure.Message, job.Failure.Hint)
	}
	return job, nil
}

func (r *Runner) wait(ctx context.Context, svc *Service, jobID string) (*domain.Job, error) {
	interval := r.PollInterval
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := domain.StagePending
	for {
		job, err := svc.GetResult(ctx, jobID)
		if err != nil {
			return nil, err
		}
		if job.Final() {
			return job, nil
		}
		if job.Stage != last {
			last = job.Stage
			fmt.Fprintf(r.Output, "  ... %s\n", last.Label())
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (r *Runner) print(markdown string) {
	out := markdown
	if r.Renderer != nil {
		if rendered, err := r.Renderer(markdown); err == nil {
			out = rendered
		}
	}
	fmt.Fprintln(r.Output, strings.TrimSpace(out))
}
