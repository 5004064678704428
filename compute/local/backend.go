// Package local runs job scripts as child processes of this one.
package local

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/armon/circbuf"
	"github.com/ohsu-comp-bio/submit/compute"
	"github.com/ohsu-comp-bio/submit/logger"
	"github.com/ohsu-comp-bio/submit/util/fsutil"
)

const (
	logTimeFormat = "20060102_150405"
	// bytes of output kept for the error log of a failed job
	tailSize = 4096
	// how long to wait for orphaned grandchildren to release the output pipe
	// after the script exits or is killed
	waitDelay = 5 * time.Second
)

// NewBackend returns a new local Backend instance.
func NewBackend(log *logger.Logger, stdout io.Writer) *Backend {
	return &Backend{
		Shell:  "bash",
		Stdout: stdout,
		log:    log,
		now:    time.Now,
	}
}

// Backend runs job scripts with a shell and waits for them to finish.
type Backend struct {
	Shell string
	// Every output line of the job is copied here.
	Stdout io.Writer
	log    *logger.Logger
	now    func() time.Time
}

// LogPath returns the path of the output log of a job started at t.
func LogPath(dir, name string, t time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s.out", t.Format(logTimeFormat), name))
}

// Run executes the job's script, streaming stdout and stderr line by line to
// the console and to a log file in the job's log directory. A non-zero exit
// status is returned as a *compute.ExitError carrying the status.
func (b *Backend) Run(ctx context.Context, job compute.Job) (int, error) {
	if err := fsutil.EnsureDir(job.LogDir); err != nil {
		return 1, fmt.Errorf("creating log directory: %w", err)
	}

	path := LogPath(job.LogDir, job.Name, b.now())
	f, err := os.Create(path)
	if err != nil {
		return 1, fmt.Errorf("creating log file: %w", err)
	}
	defer f.Close()

	fmt.Fprintf(f, "Job Name: %s\nCommand: %s\n%s\n\n", job.Name, job.Script, strings.Repeat("-", 80))

	tail, err := circbuf.NewBuffer(tailSize)
	if err != nil {
		return 1, err
	}
	lines := &lineWriter{w: io.MultiWriter(b.Stdout, f, tail)}

	b.log.Info("Running job", "job", job.Name, "log", path)

	cmd := exec.CommandContext(ctx, b.Shell, "-c", job.Script)
	cmd.Stdout = lines
	cmd.Stderr = lines
	cmd.WaitDelay = waitDelay

	err = cmd.Run()
	lines.Flush()

	if err != nil {
		code := compute.ExitCode(err)
		b.log.Error("Job failed",
			"job", job.Name,
			"exit_code", code,
			"log", path,
			"output_tail", tail.String(),
		)
		if ctx.Err() != nil {
			err = fmt.Errorf("%s: %v: %w", job.Name, err, ctx.Err())
		} else {
			err = fmt.Errorf("%s: %w", job.Name, err)
		}
		return code, &compute.ExitError{Code: code, Err: err}
	}

	b.log.Info("Job finished", "job", job.Name)
	return 0, nil
}

// lineWriter buffers writes and passes complete lines on to w, with any
// trailing carriage return removed.
type lineWriter struct {
	w   io.Writer
	buf bytes.Buffer
}

func (l *lineWriter) Write(p []byte) (int, error) {
	l.buf.Write(p)
	for {
		i := bytes.IndexByte(l.buf.Bytes(), '\n')
		if i < 0 {
			break
		}
		line := l.buf.Next(i + 1)
		l.emit(line[:i])
	}
	return len(p), nil
}

// Flush writes out a final line without a trailing newline.
func (l *lineWriter) Flush() {
	if l.buf.Len() > 0 {
		l.emit(l.buf.Bytes())
		l.buf.Reset()
	}
}

func (l *lineWriter) emit(line []byte) {
	line = bytes.TrimRight(line, "\r")
	out := make([]byte, 0, len(line)+1)
	out = append(out, line...)
	out = append(out, '\n')
	l.w.Write(out)
}
