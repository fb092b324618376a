package main

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/detectivesigma/sigma/cmd/cli/content"
	"github.com/detectivesigma/sigma/cmd/cli/hints"
	"github.com/detectivesigma/sigma/internal/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func init() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	rootCmd.AddGroup(content.Group)
	rootCmd.AddCommand(content.Seed)
	rootCmd.AddGroup(hints.Group)
	rootCmd.AddCommand(hints.Draft)
}

var rootCmd = &cobra.Command{ //nolint:exhaustruct
	Use:  "sigma-cli",
	Long: `Authoring utilities for the Detective Sigma case content store`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
