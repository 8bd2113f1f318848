package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		return runServe(nil, stderr)
	}

	switch args[0] {
	case "serve":
		return runServe(args[1:], stderr)
	case "listen":
		return runListen(args[1:], stderr)
	case "send":
		return runSend(args[1:], stdin, stdout, stderr)
	case "mcp":
		return runMCP(args[1:], stdout, stderr)
	case "config":
		return runConfig(args[1:], stdout, stderr)
	case "help", "-h", "--help":
		printMainUsage(stdout)
		return 0
	default:
		if strings.HasPrefix(args[0], "-") {
			return runServe(args, stderr)
		}
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", args[0])
		printMainUsage(stderr)
		return 2
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: splbe [command] [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve               Speak the graphics protocol on stdin/stdout (default)")
	fmt.Fprintln(w, "  listen              Speak the protocol on a unix socket, one client at a time")
	fmt.Fprintln(w, "  send [line...]      Send lines to a listening back-end and print the replies")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Expose a headless back-end as MCP tools (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  help                Show this help")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'splbe <command> -h' for command-specific options.")
}

// parseFlags returns -1 when parsing succeeded, otherwise the exit code.
func parseFlags(fs *flag.FlagSet, args []string) int {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	return -1
}
