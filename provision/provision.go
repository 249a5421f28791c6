// Package provision runs the configured pre-session shell command, used
// to put the board into a known state before the handshake (resetting it,
// flashing firmware, fixing port settings with stty).
package provision

import (
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/google/shlex"

	"github.com/serkey/serkeyd-go/memorywriter"
)

// Argv splits the configured command into an argument vector, with every
// "{{port}}" placeholder replaced by the resolved port name first.
func Argv(command, port string) ([]string, error) {
	expanded := strings.ReplaceAll(command, "{{port}}", port)
	argv, err := shlex.Split(expanded)
	if err != nil {
		return nil, fmt.Errorf("parsing previous_command %q: %w", command, err)
	}
	return argv, nil
}

// Run executes the command and waits for it. An empty command is a no-op.
// The command's output goes to out so it lands next to the daemon's own
// stderr chatter.
func Run(command, port string, out io.Writer, mw *memorywriter.MemoryWriter) error {
	if command == "" {
		return nil
	}
	argv, err := Argv(command, port)
	if err != nil {
		return err
	}
	if len(argv) == 0 {
		return nil
	}

	mw.Log(fmt.Sprintf("provision - running %v", argv))
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdout = out
	cmd.Stderr = out
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("previous_command %q failed: %w", command, err)
	}
	mw.Log("provision - command finished")
	return nil
}
