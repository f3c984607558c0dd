// Package driver implements the batch-submission loop: enumerate every
// (dir, file) pair and hand one job per pair to the scheduler client.
package driver

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"retrosub/internal/config"
	"retrosub/internal/job"
	"retrosub/internal/qsub"
)

// Summary reports what one driver run did. Failed submissions are counted,
// not retried; the scheduler owns everything after a successful hand-off.
type Summary struct {
	BatchID   string
	Submitted int
	Failed    int
	Elapsed   time.Duration
}

// Driver enumerates index pairs and submits one job per pair, strictly
// sequentially. It holds no state between pairs and never inspects the
// jobs it submitted.
type Driver struct {
	cfg       *config.Config
	target    config.Target
	submitter qsub.Submitter
	logger    *zap.Logger
}

// New creates a driver. The config must already be validated; the active
// target is resolved once, up front.
func New(cfg *config.Config, submitter qsub.Submitter, logger *zap.Logger) (*Driver, error) {
	target, err := cfg.Active()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{
		cfg:       cfg,
		target:    target,
		submitter: submitter,
		logger:    logger,
	}, nil
}

// Requests builds the full row-major submission plan without submitting
// anything. Every request carries the same resources and target; only the
// name, log paths, and command arguments vary with the pair.
func (d *Driver) Requests() []job.Request {
	pairs := job.Enumerate(d.cfg.Dirs, d.cfg.Files)
	reqs := make([]job.Request, 0, len(pairs))
	for _, p := range pairs {
		reqs = append(reqs, job.NewRequest(
			p, d.cfg.Script, d.cfg.LogDir,
			d.target.Account, d.target.QOS,
			d.cfg.Resources,
		))
	}
	return reqs
}

// Run submits every enumerated pair in order. A failed submission is
// logged and counted but does not stop the loop; the original script was
// fire-and-forget and this keeps that contract. Context cancellation is
// the only thing that ends the loop early.
func (d *Driver) Run(ctx context.Context) (Summary, error) {
	batchID := uuid.NewString()
	start := time.Now()

	d.logger.Info("starting submission batch",
		zap.String("batch_id", batchID),
		zap.String("account", d.target.Account),
		zap.String("qos", d.target.QOS),
		zap.Int("jobs", d.cfg.Dirs.Count()*d.cfg.Files.Count()))

	summary := Summary{BatchID: batchID}
	for _, req := range d.Requests() {
		if err := ctx.Err(); err != nil {
			summary.Elapsed = time.Since(start)
			return summary, err
		}

		req.BatchID = batchID
		res, err := d.submitter.Submit(ctx, req)
		if err != nil {
			summary.Failed++
			d.logger.Warn("submission failed",
				zap.String("job", req.Name),
				zap.Error(err))
			continue
		}

		summary.Submitted++
		d.logger.Debug("submitted",
			zap.String("job", req.Name),
			zap.String("job_id", res.JobID),
			zap.Duration("took", res.Duration))
	}

	summary.Elapsed = time.Since(start)
	d.logger.Info("submission batch finished",
		zap.String("batch_id", batchID),
		zap.Int("submitted", summary.Submitted),
		zap.Int("failed", summary.Failed),
		zap.Duration("elapsed", summary.Elapsed))
	return summary, nil
}
