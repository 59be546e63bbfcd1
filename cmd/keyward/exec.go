package main

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// runValueCommand executes a shell command and captures its stdout as a
// secret value. The command must print the value (and only the value).
func runValueCommand(ctx context.Context, command string) (string, error) {
	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", command)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("exit code %d: %s", exitErr.ExitCode(), strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", err
	}
	return strings.TrimRight(string(output), "\n"), nil
}
