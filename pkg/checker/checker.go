// Package checker runs the external yvc vulnerability checker.
//
// The checker reads package-version identifiers on stdin, one per line,
// until stdin is closed, and prints one line per vulnerable package on
// stdout. yvcweb never looks inside the checker: matching, version
// comparison and the vulnerability lists are all yvc's business.
package checker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultPath is the checker binary looked up in $PATH when none is set.
const DefaultPath = "yvc"

// ErrStart is returned (wrapped) when the checker process could not be
// created. No output exists in that case.
var ErrStart = errors.New("unable to start checker")

// Query is an ordered list of package-version identifiers.
type Query []string

// ParseQuery splits free text on runs of whitespace. Leading and trailing
// whitespace never produce empty identifiers.
func ParseQuery(raw string) Query {
	return Query(strings.Fields(raw))
}

// Encode renders the query as the checker expects it on stdin.
func (q Query) Encode() []byte {
	if len(q) == 0 {
		return nil
	}

	return []byte(strings.Join(q, "\n") + "\n")
}

type Checker interface {
	// Check feeds q to the checker and returns everything it printed. When
	// the error wraps ErrStart the output is always empty; other errors may
	// come with partial output.
	Check(ctx context.Context, q Query) ([]byte, error)
}

// Command runs the checker as a child process.
type Command struct {
	// Path is the checker binary. Defaults to DefaultPath.
	Path string
	Args []string
	// Dir is the child's working directory. Defaults to os.TempDir().
	Dir string
	// Timeout bounds a single run. Zero means no limit.
	Timeout time.Duration
}

func (c Command) path() string {
	if c.Path == "" {
		return DefaultPath
	}

	return c.Path
}

func (c Command) dir() string {
	if c.Dir == "" {
		return os.TempDir()
	}

	return c.Dir
}

func (c Command) Check(ctx context.Context, q Query) ([]byte, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.path(), c.Args...)
	cmd.Dir = c.dir()
	cmd.Stdin = bytes.NewReader(q.Encode())

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log := logrus.WithFields(logrus.Fields{
		"checker":  c.path(),
		"packages": len(q),
	})

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrStart, c.path(), err)
	}

	err := cmd.Wait()
	log = log.WithField("duration", time.Since(start))

	if stderr.Len() > 0 {
		log.Debugf("checker stderr: %s", strings.TrimSpace(stderr.String()))
	}

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return stdout.Bytes(), fmt.Errorf("checker did not finish: %w", ctxErr)
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// yvc exits 2 when it found something vulnerable and 1 on its
			// own errors; either way the output is what it is.
			log.WithField("exit_code", exitErr.ExitCode()).Debug("checker exited non-zero")
			return stdout.Bytes(), nil
		}

		return stdout.Bytes(), fmt.Errorf("running checker: %w", err)
	}

	log.Debug("checker finished")
	return stdout.Bytes(), nil
}
