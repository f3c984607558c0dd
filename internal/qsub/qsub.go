// Package qsub is the layer that physically talks to the cluster scheduler.
// It spawns the submission binary (qsub or compatible), feeds the job body
// on stdin, and captures whatever the scheduler prints back. Nothing here
// interprets the reconstruction work itself; the scheduler runs that later,
// asynchronously, outside this process.
package qsub

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"retrosub/internal/job"
)

// Result describes one completed submission call. JobID is whatever
// identifier the scheduler printed (first token of stdout), which may be
// empty for schedulers that print nothing on success.
type Result struct {
	JobID    string
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Submitter is the seam between the driver and the scheduler. The real
// implementation spawns the submission binary; the dry-run and test
// implementations do not.
type Submitter interface {
	Submit(ctx context.Context, req job.Request) (Result, error)
}

// BuildArgs produces the argv for the submission binary from a request.
// Kept pure so the exact flag set is testable without spawning anything.
func BuildArgs(req job.Request) []string {
	args := []string{
		"-A", req.Account,
		"-l", fmt.Sprintf("nodes=%d:ppn=%d", req.Resources.Nodes, req.Resources.ProcsPerNode),
		"-l", fmt.Sprintf("mem=%dmb", req.Resources.MemoryMB),
		"-l", fmt.Sprintf("walltime=%s", req.Resources.Walltime),
	}
	if req.QOS != "" {
		args = append(args, "-l", fmt.Sprintf("qos=%s", req.QOS))
	}
	args = append(args,
		"-N", req.Name,
		"-o", req.OutLog,
		"-e", req.ErrLog,
	)
	return args
}

// Client submits jobs by running the configured submission binary.
type Client struct {
	binary  string
	timeout time.Duration
}

// NewClient creates a scheduler client. binary is the submission command
// (e.g. "qsub"); timeout bounds a single submission call, not the job's
// eventual runtime (that is the walltime, enforced by the scheduler).
func NewClient(binary string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{binary: binary, timeout: timeout}
}

// Submit runs the submission binary with the request's argv and the job
// body on stdin. The returned error covers only the submission call; a
// non-zero exit from the scheduler surfaces here with its stderr attached.
func (c *Client) Submit(ctx context.Context, req job.Request) (Result, error) {
	execCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, c.binary, BuildArgs(req)...)
	cmd.Stdin = strings.NewReader(req.Command + "\n")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	res := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}
	if err != nil {
		return res, fmt.Errorf("%s %s: %w (stderr: %s)",
			c.binary, req.Name, err, strings.TrimSpace(res.Stderr))
	}
	res.JobID = parseJobID(res.Stdout)
	return res, nil
}

// parseJobID extracts the scheduler-assigned job ID from submission output.
// qsub prints the bare ID ("12345.torque01.example.edu"); sbatch prints
// "Submitted batch job 12345". Returns "" when the output matches neither.
func parseJobID(out string) string {
	fields := strings.Fields(out)
	switch {
	case len(fields) == 1:
		return fields[0]
	case len(fields) == 4 && fields[0] == "Submitted":
		return fields[3]
	}
	return ""
}
