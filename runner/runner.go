// Package runner invokes external tools. Invocations are fully blocking; the
// only concurrency is one reader goroutine per output stream so a child can
// never stall on a full pipe buffer.
package runner

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/vesper-os/forge/log"
)

// Command describes a single external tool invocation.
type Command struct {
	Name string
	Args []string
	// Dir is the working directory; empty means the current directory.
	Dir string
	// Env holds extra KEY=VALUE pairs appended to the inherited environment.
	Env []string
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Run executes the command and blocks until it finishes. Both output streams
// are drained concurrently into the log sink, stdout as regular messages and
// stderr as warnings, and are fully consumed before Run returns.
func Run(command Command) error {
	log.Debug("Running '%s'.\n", command)

	cmd := exec.Command(command.Name, command.Args...)
	cmd.Dir = command.Dir
	cmd.Env = append(os.Environ(), command.Env...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to open stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to open stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start '%s': %w", command.Name, err)
	}

	var readers sync.WaitGroup
	readers.Add(2)
	go drain(stdout, log.Log, &readers)
	go drain(stderr, log.Warning, &readers)
	readers.Wait()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("'%s' failed: %w", command.Name, err)
	}
	return nil
}

func drain(stream io.Reader, sink func(string, ...interface{}), readers *sync.WaitGroup) {
	defer readers.Done()
	lines := bufio.NewScanner(stream)
	lines.Buffer(make([]byte, 64*1024), 1024*1024)
	for lines.Scan() {
		sink("%s\n", lines.Text())
	}
}
