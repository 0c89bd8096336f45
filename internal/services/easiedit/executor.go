package easiedit

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// commandExecutor launches the converter the way it expects: current
// directory set to its install dir, a single newline on stdin to dismiss its
// prompt, output discarded. exec.Command is used instead of CommandContext so
// a cancelled run abandons the process rather than killing it mid-write.
type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, exePath, workDir string) error {
	cmd := exec.Command(exePath)
	cmd.Dir = workDir
	cmd.Stdin = strings.NewReader("\n")
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start converter: %w", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	select {
	case <-ctx.Done():
		// Stop waiting but leave the process alone; the caller decides
		// success from the files it produced.
		go func() { <-done }()
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("converter exited: %w", err)
		}
		return nil
	}
}
