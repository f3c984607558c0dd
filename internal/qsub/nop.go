package qsub

import (
	"context"
	"fmt"
	"io"
	"strings"

	"retrosub/internal/job"
)

// NopSubmitter implements Submitter without spawning anything. It writes
// the full submission line for each request to Out, which backs the
// driver's dry-run mode.
type NopSubmitter struct {
	Binary string
	Out    io.Writer
}

// Submit prints what the real client would run and reports success.
func (n *NopSubmitter) Submit(_ context.Context, req job.Request) (Result, error) {
	if n.Out != nil {
		fmt.Fprintf(n.Out, "echo \"%s\" | %s %s\n",
			req.Command, n.Binary, strings.Join(BuildArgs(req), " "))
	}
	return Result{}, nil
}
