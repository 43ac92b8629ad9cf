package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jpfielding/img2pacs/pkg/archive"
	"github.com/jpfielding/img2pacs/pkg/dicom"
	"github.com/jpfielding/img2pacs/pkg/logging"
	"github.com/jpfielding/img2pacs/pkg/metrics"
	"github.com/jpfielding/img2pacs/pkg/raster"
	"golang.org/x/sync/semaphore"
)

// Orchestrator runs one conversion at a time through
// Idle, Validating, BuildingObject, Persisting, Transmitting, Reporting.
type Orchestrator struct {
	Builder Builder
	Load    func(path string) (*raster.Gray, error) // raster.Load when nil
	Storer  archive.Storer
	Metrics *metrics.Metrics
	Log     *slog.Logger

	// OnTransition observes every state change
	OnTransition func(from, to State)

	once sync.Once
	sem  *semaphore.Weighted
}

// NewOrchestrator creates an orchestrator sending through storer
func NewOrchestrator(storer archive.Storer, log *slog.Logger) *Orchestrator {
	return &Orchestrator{Storer: storer, Log: log}
}

type run struct {
	o     *Orchestrator
	ctx   context.Context
	state State
	stage State
}

func (r *run) to(next State) {
	prev := r.state
	r.state = next
	if next != Reporting && next != Idle {
		r.stage = next
	}
	r.o.logger().DebugContext(r.ctx, "conversion state", "from", prev.String(), "to", next.String())
	if r.o.OnTransition != nil {
		r.o.OnTransition(prev, next)
	}
}

// Convert validates the request, builds and persists the object next to the
// image, then sends it. A second call while one is running is refused with
// ErrBusy. Every outcome, success or failure, is a Report; nothing panics or
// exits.
func (o *Orchestrator) Convert(ctx context.Context, req Request) Report {
	o.once.Do(func() { o.sem = semaphore.NewWeighted(1) })
	if !o.sem.TryAcquire(1) {
		o.logger().WarnContext(ctx, "conversion refused, another is in progress")
		o.Metrics.Conversion("busy")
		return Report{State: Idle, Message: BusyMessage, Err: ErrBusy}
	}
	defer o.sem.Release(1)

	ctx = logging.AppendCtx(ctx,
		slog.String("image", req.ImagePath),
		slog.String("patient_id", req.PatientID),
	)
	r := &run{o: o, ctx: ctx, state: Idle}
	report := o.convert(r, req)

	r.to(Reporting)
	report.State = Reporting
	report.Stage = r.stage
	if report.OK {
		o.Metrics.Conversion("ok")
		o.logger().InfoContext(ctx, report.Message, "object", report.ObjectPath)
	} else {
		o.Metrics.Conversion(resultLabel(report.Err))
		o.logger().ErrorContext(ctx, report.Message, "stage", r.stage.String(), "error", report.Err)
	}
	r.to(Idle)
	return report
}

func (o *Orchestrator) convert(r *run, req Request) Report {
	ctx := r.ctx

	r.to(Validating)
	if missing := req.MissingFields(); len(missing) > 0 {
		return Report{
			Message: MissingFieldsMessage,
			Err:     fmt.Errorf("%w: missing %v", ErrValidation, missing),
		}
	}
	if archive.IsPlaceholderName(req.PatientName) {
		return Report{
			Message: UnresolvedNameMessage,
			Err:     fmt.Errorf("%w: patient name %q is a lookup placeholder", ErrValidation, req.PatientName),
		}
	}

	r.to(BuildingObject)
	start := time.Now()
	sc, err := o.build(req)
	o.Metrics.Stage("build", start)
	if err != nil {
		return failure(ErrBuild, err)
	}

	r.to(Persisting)
	path := ObjectPath(req.ImagePath)
	start = time.Now()
	_, err = sc.Write(path)
	o.Metrics.Stage("persist", start)
	if err != nil {
		return failure(ErrPersist, err)
	}
	o.logger().InfoContext(ctx, "DICOM file created", "path", path, "sop_instance_uid", sc.SOPCommon.SOPInstanceUID)

	r.to(Transmitting)
	start = time.Now()
	outcome, err := o.Storer.Store(ctx, path).Wait(ctx)
	o.Metrics.Stage("transmit", start)
	if err != nil {
		report := failure(ErrTransmission, err)
		report.ObjectPath = path
		return report
	}
	o.Metrics.Transmission(outcome.Sent)
	report := Report{OK: outcome.Sent, Message: outcome.Message(), ObjectPath: path}
	if !outcome.Sent {
		report.Err = fmt.Errorf("%w: %s", ErrTransmission, outcome.Detail)
	}
	return report
}

func (o *Orchestrator) build(req Request) (*dicom.SecondaryCapture, error) {
	load := o.Load
	if load == nil {
		load = raster.Load
	}
	img, err := load(req.ImagePath)
	if err != nil {
		return nil, err
	}
	return o.Builder.Build(img, req.PatientIdentity, req.StudyContext)
}

func failure(class, err error) Report {
	return Report{
		Message: ErrorMessagePrefix + err.Error(),
		Err:     fmt.Errorf("%w: %w", class, err),
	}
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrBuild):
		return "build"
	case errors.Is(err, ErrPersist):
		return "persist"
	case errors.Is(err, ErrTransmission):
		return "transmission"
	default:
		return "error"
	}
}

func (o *Orchestrator) logger() *slog.Logger {
	if o.Log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Log
}
