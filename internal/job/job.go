// Package job defines the unit of submission work: the (dir, file) index
// pair identifying one reconstruction input, and the ephemeral Request
// describing the batch job that processes it.
package job

import (
	"fmt"
	"path/filepath"
)

// IndexPair identifies one reconstruction input file within a numbered
// directory. Pairs carry no identity beyond the two integers; they are
// built fresh during enumeration and discarded after the submission.
type IndexPair struct {
	Dir  int
	File int
}

// Name returns the scheduler job name for the pair, e.g. "r15.0".
func (p IndexPair) Name() string {
	return fmt.Sprintf("r%d.%d", p.Dir, p.File)
}

// OutLog returns the stdout log path for the pair under logDir.
func (p IndexPair) OutLog(logDir string) string {
	return filepath.Join(logDir, fmt.Sprintf("%d.%d.log", p.Dir, p.File))
}

// ErrLog returns the stderr log path for the pair under logDir.
func (p IndexPair) ErrLog(logDir string) string {
	return filepath.Join(logDir, fmt.Sprintf("%d.%d.err", p.Dir, p.File))
}

// Range is an inclusive integer range.
type Range struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

// Count returns the number of values in the range.
func (r Range) Count() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

// Validate checks that the range is non-inverted.
func (r Range) Validate() error {
	if r.End < r.Start {
		return fmt.Errorf("inverted range: start %d > end %d", r.Start, r.End)
	}
	return nil
}

// Enumerate produces every (dir, file) pair in row-major order: the outer
// dir index ascends first, the inner file index ascends within each dir.
// The scheduler may execute the resulting jobs in any order; only the
// submission order is fixed here.
func Enumerate(dirs, files Range) []IndexPair {
	pairs := make([]IndexPair, 0, dirs.Count()*files.Count())
	for d := dirs.Start; d <= dirs.End; d++ {
		for f := files.Start; f <= files.End; f++ {
			pairs = append(pairs, IndexPair{Dir: d, File: f})
		}
	}
	return pairs
}

// Resources is the fixed per-job resource request. Every submission in a
// batch carries the same values; there is no per-pair variation.
type Resources struct {
	Nodes        int    `yaml:"nodes"`
	ProcsPerNode int    `yaml:"procs_per_node"`
	MemoryMB     int    `yaml:"memory_mb"`
	Walltime     string `yaml:"walltime"` // hh:mm:ss, enforced by the scheduler
}

// Request is the job descriptor handed to the scheduler client for one
// pair. It exists only for the duration of a single Submit call.
type Request struct {
	Name      string
	Account   string
	QOS       string // optional; empty means no QoS flag
	Resources Resources
	OutLog    string
	ErrLog    string

	// Command is the job body piped to the submission binary's stdin:
	// the reconstruction script followed by the dir and file arguments.
	Command string

	// BatchID tags all requests of one driver run for log correlation.
	BatchID string
}

// NewRequest builds the descriptor for one pair. script is the path to the
// per-file reconstruction executable; it receives dir and file as decimal
// positional arguments.
func NewRequest(p IndexPair, script, logDir, account, qos string, res Resources) Request {
	return Request{
		Name:      p.Name(),
		Account:   account,
		QOS:       qos,
		Resources: res,
		OutLog:    p.OutLog(logDir),
		ErrLog:    p.ErrLog(logDir),
		Command:   fmt.Sprintf("%s %d %d", script, p.Dir, p.File),
	}
}
