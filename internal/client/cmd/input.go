package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// termReadPassword is a test seam for term.ReadPassword.
var termReadPassword = term.ReadPassword

// readPassword reads one line from stdin with --password-stdin, otherwise
// prompts on stderr and reads from the terminal without echo.
func readPassword(opts *Options) ([]byte, error) {
	var (
		pw  []byte
		err error
	)
	if opts.PasswordStdin {
		pw, err = readLine(opts.stdin)
	} else {
		fmt.Fprint(opts.stderr, "Enter password: ")
		pw, err = termReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(opts.stderr)
	}
	if err != nil {
		return nil, fmt.Errorf("read password: %w", err)
	}
	if len(pw) == 0 {
		return nil, errors.New("empty password")
	}
	return pw, nil
}

func readLine(r io.Reader) ([]byte, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		return nil, err
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}
