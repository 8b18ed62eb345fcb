package main

import (
	"context"
	"fmt"
	"io"
	"os"

	apperrors "cosmosdump/internal/shared/errors"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit status
func run(args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCommand(stdout, stderr)
	rootCmd.AddCommand(newInspectCommand(stdout))
	rootCmd.AddCommand(newVersionCommand(stdout))
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		appErr := apperrors.WrapError(err, "invalid invocation")
		fmt.Fprintf(stderr, "Error [%s]: %v\n", appErr.Type, appErr)
		return apperrors.ExitCode(appErr)
	}
	return 0
}
