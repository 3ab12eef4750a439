// Package main implements deckgen, a command line tool that runs the deck
// pipeline on a single lesson outside the server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/phrazzld/lessondeck/internal/domain"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "deckgen",
		Short:         "Generate illustrated slide decks from lesson plans",
		SilenceUsage: true,
	}
	root.AddCommand(newGenerateCmd(), newPromptCmd(), newTokenCmd())
	return root
}

// readInput loads a lesson from a JSON file, or from stdin when path is "-".
func readInput(path string, stdin io.Reader) (domain.LessonInput, error) {
	var in domain.LessonInput

	var r io.Reader
	if path == "-" {
		r = stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return in, fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return in, fmt.Errorf("failed to parse input %s: %w", path, err)
	}

	in.Lesson = strings.TrimSpace(in.Lesson)
	in.Module = strings.TrimSpace(in.Module)
	if err := in.Validate(); err != nil {
		return in, err
	}
	if in.CreatedAt.IsZero() {
		in.CreatedAt = time.Now().UTC()
	}
	return in, nil
}
