package archive

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jpfielding/img2pacs/pkg/logging"
)

// Storer transmits a persisted object file to the archive
type Storer interface {
	Store(ctx context.Context, path string) *Task[TransmissionOutcome]
}

// ProcessStorer sends files by running a store tool:
//
//	storescu -c AET@host:port <path>
type ProcessStorer struct {
	Runner  Runner
	Path    string
	Address Address
	Timeout time.Duration // 0 = no timeout
	Log     *slog.Logger
}

// Args returns the store tool arguments for a file
func (s *ProcessStorer) Args(path string) []string {
	return []string{"-c", s.Address.String(), path}
}

// Store starts a transmission. The task fails only when the tool could not
// be run; a rejected store is a Failed outcome.
func (s *ProcessStorer) Store(ctx context.Context, path string) *Task[TransmissionOutcome] {
	return Start(ctx, func(ctx context.Context) (TransmissionOutcome, error) {
		ctx = logging.AppendCtx(ctx, slog.String("file", path))
		if s.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.Timeout)
			defer cancel()
		}

		res, err := s.Runner.Run(ctx, s.Path, s.Args(path)...)
		if err != nil {
			s.logger().ErrorContext(ctx, "store tool failed to run", "path", s.Path, "error", err)
			return TransmissionOutcome{}, fmt.Errorf("store %s: %w", path, err)
		}
		s.logger().DebugContext(ctx, "store output", "stdout", res.Stdout)

		outcome := InterpretStore(res.ExitStatus, res.Stderr)
		if outcome.Sent {
			s.logger().InfoContext(ctx, SentMessage)
		} else {
			s.logger().ErrorContext(ctx, "failed to send to PACS", "exit_status", res.ExitStatus, "stderr", res.Stderr)
		}
		return outcome, nil
	})
}

func (s *ProcessStorer) logger() *slog.Logger {
	return orDiscard(s.Log)
}
