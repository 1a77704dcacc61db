package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/edge-curation/rpm-mirror/internal/utils/logger"
)

// getShell returns the preferred shell, falling back to /bin/sh if bash is not available
func getShell() string {
	shells := []string{"/bin/bash", "/usr/bin/bash", "/bin/sh"}
	for _, shell := range shells {
		if _, err := os.Stat(shell); err == nil {
			return shell
		}
	}
	return "/bin/sh" // fallback
}

// IsCommandExist checks if a command is available on the host
func IsCommandExist(cmd string) bool {
	_, err := exec.LookPath(cmd)
	return err == nil
}

// Exec runs a command line through the shell and returns its combined output.
// Cancellation of ctx kills the process; callers treat that as an ordinary
// command failure.
func Exec(ctx context.Context, cmdStr string) (string, error) {
	log := logger.Logger()
	log.Debugf("Exec: [%s]", cmdStr)

	cmd := exec.CommandContext(ctx, getShell(), "-c", cmdStr)
	output, err := cmd.CombinedOutput()
	outputStr := string(output)

	if err != nil {
		if outputStr != "" {
			log.Infof(outputStr)
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return outputStr, fmt.Errorf("command timed out: %s: %w", cmdStr, ctx.Err())
		}
		return outputStr, fmt.Errorf("failed to exec %s: %w", cmdStr, err)
	}

	if outputStr != "" {
		log.Debugf(outputStr)
	}
	return outputStr, nil
}

// ExecWithTimeout runs a command line with a per-call deadline layered on ctx.
// A timeout of zero means no deadline beyond ctx's own.
func ExecWithTimeout(ctx context.Context, cmdStr string, timeout time.Duration) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return Exec(ctx, cmdStr)
}
