// Package console is an interactive terminal for the control plane.
// Every line typed is a control batch; "keys" lists the control keys and
// "quit" leaves the console. Tab completes control keys.
package console

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

const prompt = "galvo> "

// Controller receives the batches typed in the console.
type Controller interface {
	Dispatch(batch string) error
	Keys() []string
}

// Console reads batches from a terminal.
type Console struct {
	c    Controller
	term *term.Terminal
}

// New returns a Console reading from and echoing to rw.
func New(c Controller, rw io.ReadWriter) *Console {
	con := &Console{c: c, term: term.NewTerminal(rw, prompt)}
	con.term.AutoCompleteCallback = con.complete
	return con
}

// Stdio puts stdin in raw mode and returns it paired with stdout, with a
// function restoring the terminal.
func Stdio() (io.ReadWriter, func(), error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, nil, errors.New("console: stdin is not a terminal")
	}
	old, err := term.MakeRaw(fd)
	if err != nil {
		return nil, nil, err
	}
	rw := struct {
		io.Reader
		io.Writer
	}{os.Stdin, os.Stdout}
	return rw, func() { _ = term.Restore(fd, old) }, nil
}

// Run reads lines until "quit" or the end of input.
func (con *Console) Run() error {
	for {
		line, err := con.term.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		switch line = strings.TrimSpace(line); line {
		case "":
		case "quit", "exit":
			return nil
		case "keys":
			fmt.Fprintln(con.term, strings.Join(con.c.Keys(), " "))
		default:
			if err := con.c.Dispatch(line); err != nil {
				fmt.Fprintln(con.term, err)
			}
		}
	}
}

// complete expands the control key under the cursor on tab.
func (con *Console) complete(line string, pos int, key rune) (string, int, bool) {
	if key != '\t' {
		return "", 0, false
	}
	start := strings.LastIndexByte(line[:pos], ' ') + 1
	word := line[start:pos]
	if strings.Contains(word, ":") {
		return "", 0, false
	}

	var match string
	for _, k := range con.c.Keys() {
		if !strings.HasPrefix(k, word) {
			continue
		}
		if match != "" {
			// ambiguous
			return "", 0, false
		}
		match = k
	}
	if match == "" {
		return "", 0, false
	}
	completed := line[:start] + match + ":"
	return completed + line[pos:], len(completed), true
}
