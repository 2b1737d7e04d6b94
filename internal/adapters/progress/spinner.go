package progress

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"

	"github.com/trebuchet-org/kyc-deploy/internal/usecase"
)

// SpinnerSink reports deployment progress on stderr. Long-running stages get
// a spinner when stderr is a terminal and a plain line otherwise.
type SpinnerSink struct {
	out     io.Writer
	spinner *spinner.Spinner
	stages  []stageInfo
	mu      sync.Mutex
}

type stageInfo struct {
	Stage     usecase.ExecutionStage
	StartTime time.Time
	EndTime   time.Time
	Status    string
}

// NewSpinnerSink creates a sink writing to stderr
func NewSpinnerSink() *SpinnerSink {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriterFile(os.Stderr))
	s.HideCursor = false
	return &SpinnerSink{out: os.Stderr, spinner: s}
}

// OnProgress handles progress events
func (r *SpinnerSink) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.advance(event.Stage)

	switch event.Stage {
	case usecase.StageFailed:
		r.stopSpinner()
		fmt.Fprintf(r.out, "%s %s\n", color.New(color.FgRed).Sprint("✗"), r.chain())
		return
	case usecase.StageCompleted:
		r.stopSpinner()
		fmt.Fprintf(r.out, "%s  %s\n", r.chain(), event.Message)
		return
	}

	if event.Spinner {
		suffix := " " + r.chain() + "  " + event.Message
		r.spinner.Lock()
		r.spinner.Suffix = suffix
		r.spinner.Unlock()
		if !r.spinner.Active() {
			r.spinner.Start()
		}
		if r.spinner.Active() {
			return
		}
		// Not a terminal, fall through to a plain line
	} else {
		r.stopSpinner()
	}

	fmt.Fprintln(r.out, event.Message)
}

// Info prints an info message
func (r *SpinnerSink) Info(message string) {
	r.printAround(color.New(color.FgCyan), message)
}

func (r *SpinnerSink) printAround(c *color.Color, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wasActive := r.spinner.Active()
	if wasActive {
		r.spinner.Stop()
	}

	_, _ = c.Fprintln(r.out, message)

	if wasActive {
		r.spinner.Start()
	}
}

func (r *SpinnerSink) stopSpinner() {
	if r.spinner.Active() {
		r.spinner.Stop()
	}
}

// advance closes the running stage when a different one begins
func (r *SpinnerSink) advance(stage usecase.ExecutionStage) {
	if n := len(r.stages); n > 0 && r.stages[n-1].Stage == stage {
		return
	}

	now := time.Now()
	if n := len(r.stages); n > 0 && r.stages[n-1].Status == "running" {
		r.stages[n-1].EndTime = now
		if stage == usecase.StageFailed {
			r.stages[n-1].Status = "failed"
		} else {
			r.stages[n-1].Status = "completed"
		}
	}

	switch stage {
	case usecase.StageResolving, usecase.StageSubmitting, usecase.StageConfirming:
		r.stages = append(r.stages, stageInfo{Stage: stage, StartTime: now, Status: "running"})
	}
}

// chain renders the stage history, e.g. "✓ Resolving (3ms) → ● Submitting (1s)"
func (r *SpinnerSink) chain() string {
	parts := make([]string, 0, len(r.stages))
	for _, stage := range r.stages {
		var icon string
		var stageColor *color.Color

		switch stage.Status {
		case "completed":
			icon = "✓"
			stageColor = color.New(color.FgGreen)
		case "running":
			icon = "●"
			stageColor = color.New(color.FgYellow)
		case "failed":
			icon = "✗"
			stageColor = color.New(color.FgRed)
		default:
			icon = "○"
			stageColor = color.New(color.FgWhite)
		}

		duration := ""
		if !stage.EndTime.IsZero() {
			duration = fmt.Sprintf(" (%s)", stage.EndTime.Sub(stage.StartTime).Round(time.Millisecond))
		} else if stage.Status == "running" {
			duration = fmt.Sprintf(" (%s)", time.Since(stage.StartTime).Round(time.Second))
		}

		parts = append(parts, fmt.Sprintf("%s %s%s", icon, stageColor.Sprint(stage.Stage), duration))
	}
	return strings.Join(parts, " → ")
}

// Ensure SpinnerSink implements ProgressSink
var _ usecase.ProgressSink = (*SpinnerSink)(nil)
