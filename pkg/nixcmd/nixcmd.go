// Package nixcmd runs Nix command-line tools.
package nixcmd

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/matzehuels/autorider/pkg/errors"
)

// Runner runs the named program and returns its standard output.
// Tests substitute a fake.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Exec runs name with args. A missing program or non-zero exit becomes a
// SUBPROCESS_FAILED error carrying the command line and its stderr.
func Exec(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, errors.Wrap(errors.ErrCodeSubprocess, err, "%s", Quote(name, args...))
		}
		return nil, errors.Wrap(errors.ErrCodeSubprocess, err, "%s: %s", Quote(name, args...), msg)
	}
	return out, nil
}

// Quote renders a command line for logs and error messages.
func Quote(name string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	for _, a := range append([]string{name}, args...) {
		if a == "" || strings.ContainsAny(a, " \t\"'{}$") {
			a = "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}
