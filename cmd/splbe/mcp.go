package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/1broseidon/splbe/internal/mcp"
)

func printMCPUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: splbe mcp <command>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve    Start the MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'splbe mcp <command> --help' for command-specific options.")
}

func runMCP(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printMCPUsage(stderr)
		return 2
	}

	switch args[0] {
	case "serve":
		return runMCPServe(args[1:], stderr)
	case "help", "-h", "--help":
		printMCPUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown mcp command: %s\n\n", args[0])
		printMCPUsage(stderr)
		return 2
	}
}

func runMCPServe(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("mcp serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: splbe mcp serve [--config PATH]")
		fmt.Fprintln(stderr, "")
		fmt.Fprintln(stderr, "Start the MCP server on stdio. Tools run protocol commands on a")
		fmt.Fprintln(stderr, "headless back-end and render its windows to image files.")
		fmt.Fprintln(stderr, "")
		fs.PrintDefaults()
	}
	configPath := fs.String("config", "", "Config file path (default: ~/.config/splbe/config.yaml)")
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}

	rt, err := newRuntime(*configPath, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer rt.Close()

	opts, err := rt.backendOptions(nil, nil)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	server, err := mcp.NewServer(opts, rt.tracer)
	if err != nil {
		fmt.Fprintf(stderr, "failed to create MCP server: %v\n", err)
		return 1
	}
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rt.watchSignals(ctx, cancel)

	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		rt.logger.Error("MCP server error", "error", err)
		return 1
	}
	return 0
}
