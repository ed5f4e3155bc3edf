package mail

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"runtime"
)

// Opener presents a URL to the operator.
type Opener interface {
	Open(ctx context.Context, url string) error
}

// ExecOpener launches the platform URL handler in a new browser context.
// It does not wait for the browser to exit.
type ExecOpener struct {
	// Command overrides the platform default (open, xdg-open or rundll32).
	Command []string
}

func (o ExecOpener) Open(ctx context.Context, url string) error {
	argv := o.Command
	if len(argv) == 0 {
		argv = defaultOpenCommand()
	}
	cmd := exec.CommandContext(ctx, argv[0], append(argv[1:len(argv):len(argv)], url)...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", argv[0], err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

func defaultOpenCommand() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"open"}
	case "windows":
		return []string{"rundll32", "url.dll,FileProtocolHandler"}
	default:
		return []string{"xdg-open"}
	}
}

// WriterOpener prints the URL instead of opening it.
type WriterOpener struct {
	W io.Writer
}

func (o WriterOpener) Open(_ context.Context, url string) error {
	_, err := fmt.Fprintln(o.W, url)
	return err
}
