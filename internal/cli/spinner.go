package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// spinner animates a status line on w until stopped or until its context
// is cancelled.
type spinner struct {
	w       io.Writer
	message string
	parent  context.Context
	cancel  context.CancelFunc
	stopped chan struct{}
}

func startSpinner(ctx context.Context, w io.Writer, message string) *spinner {
	sctx, cancel := context.WithCancel(ctx)
	s := &spinner{w: w, message: message, parent: ctx, cancel: cancel, stopped: make(chan struct{})}
	go s.run(sctx)
	return s
}

func (s *spinner) run(ctx context.Context) {
	defer close(s.stopped)
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
			return
		case <-ticker.C:
			frame := spinnerFrames[i%len(spinnerFrames)]
			fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.message))
		}
	}
}

// stop clears the line and reports whether the caller's context was
// cancelled while the spinner ran. It may be called more than once.
func (s *spinner) stop() (cancelled bool) {
	cancelled = s.parent.Err() != nil
	s.cancel()
	<-s.stopped
	return cancelled
}
