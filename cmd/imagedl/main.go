// Command imagedl downloads images and inspects remote image URLs.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// Exit codes
const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitInvalidArgs  = 2
	ExitFailed       = 3
	ExitUnreachable  = 4
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr)
		return ExitInvalidArgs
	}

	cli := &cli{stdout: stdout, stderr: stderr}

	command, cmdArgs := args[0], args[1:]
	switch command {
	case "download":
		return cli.download(ctx, cmdArgs)
	case "info":
		return cli.info(ctx, cmdArgs)
	case "check":
		return cli.check(ctx, cmdArgs)
	case "batch":
		return cli.batch(ctx, cmdArgs)
	case "random":
		return cli.random(ctx, cmdArgs)
	case "help", "-h", "--help":
		printUsage(stdout)
		return ExitSuccess
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", command)
		printUsage(stderr)
		return ExitInvalidArgs
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `Usage: imagedl <command> [options]

Commands:
  download  Download one image to a file or directory
  info      Show size, type and name of a remote image without downloading it
  check     Exit 0 if a URL is reachable (with -image, only if it serves an image)
  batch     Download many URLs into one directory
  random    Download random placeholder images (picsum, loremflickr, unsplash)

Configuration is read from -config (YAML), -env (.env file) and IMAGEDL_*
environment variables, in that order.

Run 'imagedl <command> -h' for command-specific help.`)
}
