// Package cli is the summarize terminal client. It drives the same
// adapters, lifecycle controller and presenter as the web server.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"content-summarizer-web/internal/adapters"
	"content-summarizer-web/internal/backend"
	"content-summarizer-web/internal/config"
	"content-summarizer-web/internal/logger"
)

// Exit codes returned by ExitCode.
const (
	ExitOK         = 0
	ExitFailure    = 1
	ExitValidation = 2
)

// ErrFailed reports that the backend or transport failed. The message has
// already been printed.
var ErrFailed = errors.New("summarization failed")

type flags struct {
	language string
	user     string
	apiURL   string
	json     bool
	noColor  bool
	verbose  bool
}

// app is the per-invocation state built before any subcommand runs.
type app struct {
	flags   *flags
	cfg     config.ClientConfig
	client  *backend.Client
	log     *logrus.Logger
	printer *Printer
	now     func() time.Time
}

// NewRootCommand builds the command tree. now is injected so exports carry
// a predictable timestamp in tests.
func NewRootCommand(now func() time.Time) *cobra.Command {
	if now == nil {
		now = time.Now
	}
	f := &flags{}
	a := &app{flags: f, now: now}

	root := &cobra.Command{
		Use:   "summarize",
		Short: "Summarize articles, text, PDFs and videos",
		Long: `summarize sends content to the summarization service and prints the
result as Markdown.

Example usage:
  summarize article https://example.com/post
  summarize text --file notes.txt
  cat notes.txt | summarize text
  summarize pdf report.pdf --language French
  summarize video https://youtu.be/dQw4w9WgXcQ
  summarize history`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usageErrorf("unknown command %q for %q", args[0], cmd.CommandPath())
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	root.PersistentFlags().StringVarP(&f.language, "language", "l", "", "summary language (default $SUMMARY_LANGUAGE or English)")
	root.PersistentFlags().StringVarP(&f.user, "user", "u", "", "user id (default $USER_ID or demo-user)")
	root.PersistentFlags().StringVar(&f.apiURL, "api-url", "", "backend base URL (default $API_URL)")
	root.PersistentFlags().BoolVar(&f.json, "json", false, "print JSON instead of Markdown")
	root.PersistentFlags().BoolVar(&f.noColor, "no-color", false, "disable colored output")
	root.PersistentFlags().BoolVarP(&f.verbose, "verbose", "v", false, "log backend requests to stderr")

	root.AddCommand(
		newArticleCmd(a),
		newTextCmd(a),
		newPDFCmd(a),
		newVideoCmd(a),
		newHistoryCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.LoadClient()
	if err != nil {
		return err
	}
	if a.flags.apiURL != "" {
		cfg.APIURL = a.flags.apiURL
	}
	if a.flags.user != "" {
		cfg.UserID = a.flags.user
	}
	if a.flags.language != "" {
		cfg.Language = a.flags.language
	}
	a.cfg = cfg

	level := "warn"
	if a.flags.verbose {
		level = "debug"
	}
	a.log = logger.New(logger.Options{Level: level, Format: "text", Output: cmd.ErrOrStderr()})
	a.client = backend.NewClient(cfg.APIURL, a.log)
	a.printer = NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), useColors(cmd.OutOrStdout(), a.flags.noColor))
	return nil
}

func (a *app) common() adapters.Common {
	return adapters.Common{UserID: a.cfg.UserID, Language: a.cfg.Language}
}

// useColors enables color only for a terminal on stdout.
func useColors(w io.Writer, disabled bool) bool {
	if disabled || os.Getenv("NO_COLOR") != "" {
		return false
	}
	if w != io.Writer(os.Stdout) {
		return false
	}
	return !color.NoColor
}

// ExitCode maps an Execute error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var ve *adapters.ValidationError
	var ue *usageError
	if errors.As(err, &ve) || errors.As(err, &ue) {
		return ExitValidation
	}
	return ExitFailure
}

// usageError is a bad command line: wrong arguments or flags.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

// exactArgs is cobra.ExactArgs reporting a usageError.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return &usageError{err: err}
		}
		return nil
	}
}

// Reported reports whether err was already printed by the command.
func Reported(err error) bool {
	var ve *adapters.ValidationError
	return errors.Is(err, ErrFailed) || errors.As(err, &ve)
}
