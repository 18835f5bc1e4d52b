package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fmueller/voxbridge/internal/cli"
	"github.com/fmueller/voxbridge/internal/transcribe"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := cli.NewRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		reportError(os.Stderr, cmd, os.Args[1:], err)
		stop()
		os.Exit(exitCode(err))
	}
}

func reportError(w io.Writer, root *cobra.Command, args []string, err error) {
	if isRecognitionError(err) {
		fmt.Fprintf(w, "%s: %v\n", transcribe.UserMessage(err), err)
	} else {
		fmt.Fprintln(w, err)
	}
	if shouldPrintUsageHint(err) {
		fmt.Fprintf(w, "Run '%s --help' for usage.\n", helpHintTarget(root, args))
	}
}

func isRecognitionError(err error) bool {
	return errors.Is(err, transcribe.ErrNotInitialized) ||
		errors.Is(err, transcribe.ErrRecognitionFailed) ||
		errors.Is(err, transcribe.ErrModelLoad)
}

func exitCode(err error) int {
	if errors.Is(err, context.Canceled) {
		return 130
	}
	return 1
}

func shouldPrintUsageHint(err error) bool {
	if err == nil {
		return false
	}

	message := strings.ToLower(strings.TrimSpace(err.Error()))
	patterns := []string{
		"unknown command",
		"unknown flag",
		"unknown shorthand flag",
		"accepts ",
		"requires at least",
		"requires at most",
		"requires between",
		"required flag",
		"missing required",
	}

	for _, pattern := range patterns {
		if strings.Contains(message, pattern) {
			return true
		}
	}

	return false
}

func helpHintTarget(root *cobra.Command, args []string) string {
	if root == nil {
		return "voxbridge"
	}

	target := root.CommandPath()
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return target
	}

	found, _, err := root.Find(args)
	if err == nil && found != nil {
		return found.CommandPath()
	}

	return target
}
