package workflow

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/driveforge/multiflash/pkg/db"
	"github.com/driveforge/multiflash/pkg/errors"
	"github.com/driveforge/multiflash/pkg/imagebuffer"
	"github.com/superfly/fsm"
)

// handleLoadImage drives a loader goroutine through the image buffer's
// phase protocol while polling the monitor for busy reporting.
func (m *Machine) handleLoadImage(ctx context.Context, req *fsm.Request[FlashRequest, FlashResponse]) (*fsm.Response[FlashResponse], error) {
	slog.Info("fsm_state_load_image", "image", req.Msg.ImagePath)

	if retryCount := fsm.RetryFromContext(ctx); retryCount >= uint64(m.maxRetries) {
		slog.Error("max_retries_exceeded", "image", req.Msg.ImagePath, "max_retries", m.maxRetries)
		return nil, fsm.Abort(fmt.Errorf("max retries (%d) exceeded", m.maxRetries))
	}

	resp := req.W.Msg
	if resp == nil {
		resp = &FlashResponse{}
	}

	loadErr := make(chan error, 1)
	go func() {
		loadErr <- imagebuffer.Load(ctx, m.buffer, m.source, req.Msg.ImagePath, nil)
	}()

	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case err := <-loadErr:
			if err != nil {
				slog.Error("image_load_failed", "image", req.Msg.ImagePath, "error", err)
				return nil, fsm.Abort(errors.Wrap(err, "image load failed"))
			}

			data := m.buffer.Bytes()
			sum := sha256.Sum256(data)
			resp.ImageSize = uint64(len(data))
			resp.SHA256 = hex.EncodeToString(sum[:])

			slog.Info("image_loaded",
				"image", req.Msg.ImagePath,
				"size_mb", resp.ImageSize/1024/1024,
				"sha256", resp.SHA256[:16]+"...",
			)
			return fsm.NewResponse(resp), nil

		case <-ticker.C:
			report, _ := m.monitor.Step()
			m.render(report)
		}
	}
}

// handleFlash opens the history records, starts one writer per device, and
// polls the monitor until it reports completion.
func (m *Machine) handleFlash(ctx context.Context, req *fsm.Request[FlashRequest, FlashResponse]) (*fsm.Response[FlashResponse], error) {
	slog.Info("fsm_state_flash", "image", req.Msg.ImagePath, "devices", len(req.Msg.Devices))

	if retryCount := fsm.RetryFromContext(ctx); retryCount >= uint64(m.maxRetries) {
		slog.Error("max_retries_exceeded", "image", req.Msg.ImagePath, "max_retries", m.maxRetries)
		return nil, fsm.Abort(fmt.Errorf("max retries (%d) exceeded", m.maxRetries))
	}

	resp := req.W.Msg
	if resp == nil {
		return nil, fsm.Abort(fmt.Errorf("response not initialized"))
	}

	resp.RecordIDs = make([]int64, 0, len(req.Msg.Devices))
	for _, devicePath := range req.Msg.Devices {
		record := &db.Flash{
			DevicePath:  devicePath,
			ImagePath:   req.Msg.ImagePath,
			ImageSHA256: resp.SHA256,
			ImageSize:   int64(resp.ImageSize),
			Status:      db.StatusRunning,
		}
		if err := m.repo.Create(record); err != nil {
			return nil, errors.Wrap(err, "failed to create flash record")
		}
		resp.RecordIDs = append(resp.RecordIDs, record.ID)
	}

	m.session.Start(req.Msg.Devices, m.buffer.Bytes(), req.Msg.Verify, m.writer)
	m.monitor.Begin()

	slog.Info("flash_started", "devices", len(req.Msg.Devices), "verify", req.Msg.Verify)

	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for range ticker.C {
		report, again := m.monitor.Step()
		m.render(report)
		if again {
			continue
		}

		resp.Summary = report.Summary
		resp.Failed = make([]FailedDevice, 0, len(report.Errors))
		for _, te := range report.Errors {
			resp.Failed = append(resp.Failed, FailedDevice{
				DevicePath: te.DeviceID,
				Reason:     te.Err.Error(),
			})
		}
		break
	}

	return fsm.NewResponse(resp), nil
}

// handleRecord closes the history records with each device's final status.
func (m *Machine) handleRecord(ctx context.Context, req *fsm.Request[FlashRequest, FlashResponse]) (*fsm.Response[FlashResponse], error) {
	slog.Info("fsm_state_record", "image", req.Msg.ImagePath)

	if retryCount := fsm.RetryFromContext(ctx); retryCount >= uint64(m.maxRetries) {
		slog.Error("max_retries_exceeded", "image", req.Msg.ImagePath, "max_retries", m.maxRetries)
		return nil, fsm.Abort(fmt.Errorf("max retries (%d) exceeded", m.maxRetries))
	}

	resp := req.W.Msg
	if resp == nil {
		return nil, fsm.Abort(fmt.Errorf("response not initialized"))
	}
	if len(resp.RecordIDs) != len(req.Msg.Devices) {
		return nil, fsm.Abort(fmt.Errorf("record ids out of step with devices"))
	}

	for i, devicePath := range req.Msg.Devices {
		status := db.StatusSucceeded
		message := ""
		if reason, failed := resp.FailureFor(devicePath); failed {
			status = db.StatusFailed
			message = reason
		}
		if err := m.repo.Finish(resp.RecordIDs[i], status, message); err != nil {
			return nil, errors.Wrap(err, "failed to finish flash record")
		}
	}

	return fsm.NewResponse(resp), nil
}

// handleComplete marks the job done.
func (m *Machine) handleComplete(ctx context.Context, req *fsm.Request[FlashRequest, FlashResponse]) (*fsm.Response[FlashResponse], error) {
	resp := req.W.Msg
	if resp == nil {
		resp = &FlashResponse{}
	}
	resp.Status = StateComplete

	slog.Info("fsm_complete",
		"image", req.Msg.ImagePath,
		"summary", resp.Summary,
		"failed", len(resp.Failed),
	)
	return fsm.NewResponse(resp), nil
}
