package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/fatih/color"

	"github.com/at-ishikawa/quizdrill/internal/grader"
	"github.com/at-ishikawa/quizdrill/internal/question"
	"github.com/at-ishikawa/quizdrill/internal/selector"
	"github.com/at-ishikawa/quizdrill/internal/statistics"
)

// errEnd stops a round without recording it.
var errEnd = errors.New("end")

// Drill is the part of the drill service the terminal uses.
type Drill interface {
	Catalog(ctx context.Context) (*question.Bank, error)
	Stats(ctx context.Context) (statistics.Progress, error)
	Pick(ctx context.Context, n int, filter selector.Filter) (selector.Result, error)
	Submit(ctx context.Context, questionIDs []string, answers map[string]string) (grader.Result, error)
}

// DrillCLI asks a quiz on the terminal and prints the grade.
type DrillCLI struct {
	drill        Drill
	stdinReader  *bufio.Reader
	stdoutWriter io.Writer
	bold         *color.Color
	italic       *color.Color
	correct      *color.Color
	wrong        *color.Color
	// saving is set once a round has committed to submitting its answers
	saving atomic.Bool
}

// NewDrillCLI creates a DrillCLI reading answers from stdin.
func NewDrillCLI(drill Drill, stdin io.Reader, stdout io.Writer) *DrillCLI {
	return &DrillCLI{
		drill:        drill,
		stdinReader:  bufio.NewReader(stdin),
		stdoutWriter: &syncWriter{w: stdout},
		bold:         color.New(color.Bold),
		italic:       color.New(color.Italic),
		correct:      color.New(color.FgGreen),
		wrong:        color.New(color.FgRed),
	}
}

// Run asks one round of n questions. An interrupt or "q" while answering ends
// the round without recording any answer. An interrupt during the save waits
// for it to finish.
func (cli *DrillCLI) Run(ctx context.Context, n int, filter selector.Filter) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	cli.saving.Store(false)
	errCh := make(chan error, 1)
	go func() {
		errCh <- cli.round(ctx, n, filter)
	}()

	select {
	case <-ctx.Done():
		if !cli.saving.Load() {
			fmt.Fprintln(cli.stdoutWriter, "\nReceived interrupt signal, exiting without saving.")
			return nil
		}
		fmt.Fprintln(cli.stdoutWriter, "\nReceived interrupt signal, waiting for the answers to be saved...")
		return cli.finish(<-errCh)
	case err := <-errCh:
		return cli.finish(err)
	}
}

func (cli *DrillCLI) finish(err error) error {
	if errors.Is(err, errEnd) {
		fmt.Fprintln(cli.stdoutWriter, "Quit without saving.")
		return nil
	}
	return err
}

func (cli *DrillCLI) round(ctx context.Context, n int, filter selector.Filter) error {
	bank, err := cli.drill.Catalog(ctx)
	if err != nil {
		return fmt.Errorf("drill.Catalog() > %w", err)
	}
	for _, w := range bank.Warnings {
		fmt.Fprintf(cli.stdoutWriter, "warning: %s\n", w)
	}

	progress, err := cli.drill.Stats(ctx)
	if err != nil {
		return fmt.Errorf("drill.Stats() > %w", err)
	}
	PrintProgress(cli.stdoutWriter, progress)

	picked, err := cli.drill.Pick(ctx, n, filter)
	if err != nil {
		return fmt.Errorf("drill.Pick() > %w", err)
	}
	if len(picked.Questions) == 0 {
		if msg := picked.Status.Message(); msg != "" {
			fmt.Fprintln(cli.stdoutWriter, msg)
		}
		return nil
	}

	ids := make([]string, 0, len(picked.Questions))
	answers := make(map[string]string, len(picked.Questions))
	for i, q := range picked.Questions {
		ids = append(ids, q.ID)
		answer, answered, err := cli.ask(i+1, len(picked.Questions), q)
		if err != nil {
			return err
		}
		if answered {
			answers[q.ID] = answer
		}
	}

	// Run reads saving after an interrupt. Storing it before checking ctx means
	// either Run waits for this save or the save never starts.
	cli.saving.Store(true)
	if ctx.Err() != nil {
		return errEnd
	}
	result, err := cli.drill.Submit(context.WithoutCancel(ctx), ids, answers)
	if err != nil {
		return fmt.Errorf("drill.Submit() > %w", err)
	}
	cli.printResult(result)
	return nil
}

// ask prompts until the user enters a choice number, an empty line to skip,
// or "q" to quit.
func (cli *DrillCLI) ask(position, total int, q question.Question) (string, bool, error) {
	fmt.Fprintln(cli.stdoutWriter)
	cli.bold.Fprintf(cli.stdoutWriter, "[%d/%d] %s\n", position, total, q.ID)
	fmt.Fprintln(cli.stdoutWriter, q.Text)
	for i, choice := range q.Choices {
		fmt.Fprintf(cli.stdoutWriter, "  %d) %s\n", i+1, choice)
	}

	for {
		fmt.Fprintf(cli.stdoutWriter, "Answer (1-%d, Enter to skip, q to quit): ", len(q.Choices))
		line, err := cli.stdinReader.ReadString('\n')
		eof := errors.Is(err, io.EOF)
		if err != nil && !eof {
			return "", false, fmt.Errorf("read answer: %w", err)
		}

		input := strings.TrimSpace(line)
		switch {
		case eof && input == "":
			return "", false, errEnd
		case input == "":
			return "", false, nil
		case strings.EqualFold(input, "q"):
			return "", false, errEnd
		}

		choice, err := strconv.Atoi(input)
		if err == nil && choice >= 1 && choice <= len(q.Choices) {
			return q.Choices[choice-1], true, nil
		}
		fmt.Fprintf(cli.stdoutWriter, "Enter a number between 1 and %d.\n", len(q.Choices))
		if eof {
			return "", false, errEnd
		}
	}
}

func (cli *DrillCLI) printResult(result grader.Result) {
	fmt.Fprintln(cli.stdoutWriter)
	cli.bold.Fprintf(cli.stdoutWriter, "Score: %d/%d (%d%%)\n", result.Score, result.Total, result.Percent())

	if len(result.Wrong) == 0 {
		cli.correct.Fprintln(cli.stdoutWriter, "All correct!")
		return
	}

	fmt.Fprintln(cli.stdoutWriter, "Review:")
	for _, review := range result.Wrong {
		fmt.Fprintln(cli.stdoutWriter)
		cli.bold.Fprintf(cli.stdoutWriter, "%s %s\n", review.Question.ID, review.Question.Text)
		if review.UserAnswer == nil {
			cli.wrong.Fprintln(cli.stdoutWriter, "  Your answer: (unanswered)")
		} else {
			cli.wrong.Fprintf(cli.stdoutWriter, "  Your answer: %s\n", *review.UserAnswer)
		}
		cli.correct.Fprintf(cli.stdoutWriter, "  Correct answer: %s\n", review.Question.Answer)
		if review.Question.Explanation != "" {
			cli.italic.Fprintf(cli.stdoutWriter, "  %s\n", review.Question.Explanation)
		}
	}
}

// syncWriter lets Run report an interrupt while the round is still printing.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (sw *syncWriter) Write(p []byte) (int, error) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.w.Write(p)
}

// PrintProgress writes the progress summary.
func PrintProgress(w io.Writer, p statistics.Progress) {
	fmt.Fprintf(w, "Questions: %d, attempted: %d, accuracy: %.1f%%\n", p.Total, p.Attempted, p.Accuracy())
}
