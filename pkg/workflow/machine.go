// Package workflow implements the flash job finite state machine: load the
// image into the buffer, run the concurrent device writes under the polling
// monitor, then record the outcomes, using the superfly/fsm library.
package workflow

import (
	"context"
	"time"

	"github.com/driveforge/multiflash/pkg/db"
	"github.com/driveforge/multiflash/pkg/errors"
	"github.com/driveforge/multiflash/pkg/flash"
	"github.com/driveforge/multiflash/pkg/imagebuffer"
	"github.com/superfly/fsm"
)

// RenderFunc receives every Monitor report so the presentation layer can
// draw progress. It runs on the FSM handler goroutine.
type RenderFunc func(flash.Report)

// Machine holds dependencies for FSM transitions
type Machine struct {
	buffer  *imagebuffer.Buffer
	source  imagebuffer.Opener
	session *flash.Session
	monitor *flash.Monitor
	writer  flash.Writer
	repo    *db.Repository

	render       RenderFunc
	pollInterval time.Duration
	maxRetries   int
}

// NewMachine creates a new FSM machine with dependencies. render may be nil;
// pollInterval of zero falls back to the reference 500 ms cadence.
func NewMachine(
	buffer *imagebuffer.Buffer,
	source imagebuffer.Opener,
	writer flash.Writer,
	repo *db.Repository,
	render RenderFunc,
	pollInterval time.Duration,
	maxRetries int,
) *Machine {
	if pollInterval <= 0 {
		pollInterval = flash.DefaultPollInterval * time.Millisecond
	}
	if render == nil {
		render = func(flash.Report) {}
	}
	session := flash.NewSession()
	return &Machine{
		buffer:       buffer,
		source:       source,
		session:      session,
		monitor:      flash.NewMonitor(buffer, session),
		writer:       writer,
		repo:         repo,
		render:       render,
		pollInterval: pollInterval,
		maxRetries:   maxRetries,
	}
}

// Register registers the flash job FSM
func (m *Machine) Register(ctx context.Context, manager *fsm.Manager) (fsm.Start[FlashRequest, FlashResponse], fsm.Resume, error) {
	start, resume, err := fsm.Register[FlashRequest, FlashResponse](manager, "flash-batch").
		Start(StateLoadImage, m.handleLoadImage).
		To(StateFlash, m.handleFlash).
		To(StateRecord, m.handleRecord).
		To(StateComplete, m.handleComplete).
		End(StateFailed).
		Build(ctx)

	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to register FSM")
	}

	return start, resume, nil
}
