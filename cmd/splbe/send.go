package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/1broseidon/splbe/internal/session"
)

func runSend(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: splbe send [--socket PATH] [line...]")
		fmt.Fprintln(stderr, "")
		fmt.Fprintln(stderr, "Sends each line to a listening back-end and prints what comes back.")
		fmt.Fprintln(stderr, "With no lines on the command line, lines are read from stdin.")
		fmt.Fprintln(stderr, "")
		fs.PrintDefaults()
	}
	configPath := fs.String("config", "", "Config file path, used for socket_path")
	socket := fs.String("socket", "", "Socket path (default: socket_path or $XDG_RUNTIME_DIR/splbe.sock)")
	timeout := fs.Duration("timeout", session.DefaultTimeout, "Connect timeout")
	quiet := fs.Duration("wait", 250*time.Millisecond, "How long to wait for output after a command without a reply")
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}

	path := *socket
	if path == "" {
		res, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		if path, err = res.Config.GetSocketPath(); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
	}

	client, err := session.Dial(path, *timeout)
	if err != nil {
		fmt.Fprintf(stderr, "failed to connect to %s: %v\n", path, err)
		fmt.Fprintln(stderr, "is 'splbe listen' running?")
		return 1
	}
	defer client.Close()

	exchange := func(line string) bool {
		line = strings.TrimSpace(line)
		if line == "" {
			return true
		}
		replies, err := client.Exchange(line, *quiet)
		for _, r := range replies {
			fmt.Fprintln(stdout, r)
		}
		if err != nil {
			fmt.Fprintln(stderr, err)
			return false
		}
		return true
	}

	if fs.NArg() > 0 {
		for _, line := range fs.Args() {
			if !exchange(line) {
				return 1
			}
		}
		return 0
	}

	sc := bufio.NewScanner(stdin)
	sc.Buffer(make([]byte, 0, 64*1024), session.MaxLineBytes)
	for sc.Scan() {
		if !exchange(sc.Text()) {
			return 1
		}
	}
	if err := sc.Err(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}
