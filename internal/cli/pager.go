package cli

import (
	"context"
	"io"
	"os"
	"os/exec"

	"golang.org/x/term"
)

const defaultPager = "less -FRSX"

// withPager runs write against $PAGER when out is a terminal, else against out.
func withPager(ctx context.Context, out, errOut io.Writer, write func(io.Writer) error) error {
	outFile, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(outFile.Fd())) {
		return write(out)
	}
	pager := os.Getenv("PAGER")
	if pager == "" {
		pager = defaultPager
	}
	cmd := exec.CommandContext(ctx, "sh", "-c", pager)
	cmd.Stdout = outFile
	if errFile, ok := errOut.(*os.File); ok {
		cmd.Stderr = errFile
	} else {
		cmd.Stderr = os.Stderr
	}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return write(out)
	}
	if err := cmd.Start(); err != nil {
		return write(out)
	}
	writeErr := write(stdin)
	_ = stdin.Close()
	waitErr := cmd.Wait()
	if writeErr != nil {
		return writeErr
	}
	return waitErr
}

// terminalWidth is the width of out, or 0 when it is not a terminal.
func terminalWidth(out io.Writer) int {
	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return w
}
