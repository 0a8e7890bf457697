package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/matzehuels/autorider/pkg/nixcmd"
)

// NixLocate queries the nix-index database through the nix-locate program.
type NixLocate struct {
	// Command defaults to "nix-locate".
	Command string
	// Run defaults to [nixcmd.Exec].
	Run nixcmd.Runner
}

// Args returns the nix-locate arguments used to look up name: regular and
// executable files only, top-level attributes, one attribute per line.
func Args(name string) []string {
	return []string{"--top-level", "--no-group", "--minimal", "-t", "r", "-t", "x", name}
}

// Locate implements [Locator].
func (n *NixLocate) Locate(ctx context.Context, name string) ([]string, error) {
	command := n.Command
	if command == "" {
		command = "nix-locate"
	}
	run := n.Run
	if run == nil {
		run = nixcmd.Exec
	}

	out, err := run(ctx, command, Args(name)...)
	if err != nil {
		return nil, fmt.Errorf("locate %s: %w", name, err)
	}
	return strings.Split(string(out), "\n"), nil
}
