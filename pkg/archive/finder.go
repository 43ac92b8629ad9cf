package archive

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jpfielding/img2pacs/pkg/logging"
)

// PatientFinder resolves a patient identifier to a name
type PatientFinder interface {
	FindPatient(ctx context.Context, patientID string) *Task[LookupOutcome]
}

// ProcessFinder queries the archive by running a find tool:
//
//	findscu -c AET@host:port -m PatientID=<id> -r PatientName
type ProcessFinder struct {
	Runner  Runner
	Path    string
	Address Address
	Timeout time.Duration // 0 = no timeout
	Log     *slog.Logger
}

// Args returns the find tool arguments for a patient identifier
func (f *ProcessFinder) Args(patientID string) []string {
	return []string{
		"-c", f.Address.String(),
		"-m", "PatientID=" + patientID,
		"-r", PatientNameKeyword,
	}
}

// FindPatient starts a lookup. An empty identifier completes immediately
// with an Empty outcome and runs nothing.
func (f *ProcessFinder) FindPatient(ctx context.Context, patientID string) *Task[LookupOutcome] {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return Completed(LookupOutcome{Status: Empty}, nil)
	}
	return Start(ctx, func(ctx context.Context) (LookupOutcome, error) {
		return f.find(ctx, patientID), nil
	})
}

func (f *ProcessFinder) find(ctx context.Context, patientID string) LookupOutcome {
	ctx = logging.AppendCtx(ctx, slog.String("patient_id", patientID))
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	res, err := f.Runner.Run(ctx, f.Path, f.Args(patientID)...)
	if err != nil {
		f.logger().ErrorContext(ctx, "find tool failed to run", "path", f.Path, "error", err)
		return LookupOutcome{Status: QueryFailed, Detail: err.Error(), Err: err}
	}

	f.logger().InfoContext(ctx, "find output", "stdout", res.Stdout)
	if res.Stderr != "" {
		f.logger().WarnContext(ctx, "find warning", "stderr", res.Stderr)
	}

	outcome := ParseFindOutput(res.Stdout, res.Stderr, res.ExitStatus)
	switch outcome.Status {
	case Resolved:
		f.logger().InfoContext(ctx, "fetched patient name", "patient_name", outcome.Name)
	case NotFound:
		f.logger().WarnContext(ctx, "patient name not found in find response")
	case QueryFailed:
		f.logger().ErrorContext(ctx, "find error", "exit_status", res.ExitStatus, "stderr", res.Stderr)
	}
	return outcome
}

func (f *ProcessFinder) logger() *slog.Logger {
	return orDiscard(f.Log)
}
