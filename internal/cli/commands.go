package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"content-summarizer-web/internal/adapters"
	"content-summarizer-web/internal/history"
	"content-summarizer-web/internal/lifecycle"
	"content-summarizer-web/internal/models"
	"content-summarizer-web/internal/presenter"
)

func newArticleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "article <url>",
		Short: "Summarize a web article",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := adapters.Article(a.common(), args[0])
			if err != nil {
				return a.invalid(err)
			}
			return a.summarize(cmd.Context(), req)
		},
	}
}

func newVideoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "video <url>",
		Short: "Summarize a YouTube video",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := adapters.Video(a.common(), args[0])
			if err != nil {
				return a.invalid(err)
			}
			return a.summarize(cmd.Context(), req)
		},
	}
}

func newTextCmd(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "text",
		Short: "Summarize text from a file or stdin",
		Long: fmt.Sprintf(`Summarize pasted text. Reads --file when given, otherwise stdin.
The text must be at least %d characters long.`, adapters.MinTextChars),
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if file != "" {
				data, err = os.ReadFile(file)
			} else {
				data, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("read text: %w", err)
			}

			text := string(data)
			if !a.flags.json {
				stats := adapters.StatsOf(text)
				a.printer.Notice(fmt.Sprintf("%d words, %d characters", stats.Words, stats.Chars))
			}

			req, err := adapters.Text(a.common(), text)
			if err != nil {
				return a.invalid(err)
			}
			return a.summarize(cmd.Context(), req)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "read text from this file instead of stdin")
	return cmd
}

func newPDFCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "pdf <path>",
		Short: "Summarize a PDF document (10MB max)",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("open pdf: %w", err)
			}
			// Refuse oversize files before reading them.
			if info.Size() > adapters.MaxPDFBytes {
				return a.invalid(&adapters.ValidationError{Fields: map[string]string{"file": adapters.FileTooLargeMessage}})
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read pdf: %w", err)
			}

			req, err := adapters.PDF(a.common(), adapters.File{
				Name: filepath.Base(path),
				Size: info.Size(),
				Data: data,
			})
			if err != nil {
				return a.invalid(err)
			}
			return a.summarize(cmd.Context(), req)
		},
	}
}

func newHistoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List previous summaries",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(a.cfg.UserID) == "" {
				return a.invalid(&adapters.ValidationError{Fields: map[string]string{"user_id": "User ID is required"}})
			}

			view := history.NewReader(a.client, time.Local, a.log).Load(cmd.Context(), a.cfg.UserID)

			if a.flags.json {
				if err := a.printer.JSON(view); err != nil {
					return err
				}
			} else {
				switch {
				case view.Status == history.StatusError:
				case view.Empty():
					a.printer.Notice(history.EmptyMessage)
				default:
					a.printer.History(view.Entries)
				}
			}

			if view.Status == history.StatusError {
				a.printer.Error(view.Error)
				return ErrFailed
			}
			return nil
		},
	}
}

// summarize runs one submission to completion and prints its outcome.
func (a *app) summarize(ctx context.Context, req models.SubmissionRequest) error {
	if ctx == nil {
		ctx = context.Background()
	}

	ctrl := lifecycle.NewController(a.client, a.log)
	if !a.flags.json {
		a.printer.Notice(fmt.Sprintf("Summarizing %s...", req.Kind.Noun()))
	}

	state, _ := ctrl.Submit(ctx, req)

	if a.flags.json {
		if err := a.printer.JSON(models.NewStateView(state)); err != nil {
			return err
		}
	}

	switch st := state.(type) {
	case models.Succeeded:
		if !a.flags.json {
			a.printer.Banner(presenter.NewBanner(req.Kind, st.Metadata))
			a.printer.Export(presenter.ExportText(st.Record, a.now()))
		}
		return nil
	case models.Failed:
		a.printer.Error(st.Message)
		return ErrFailed
	}
	return fmt.Errorf("submission ended in phase %q", state.Phase())
}

// invalid prints each rejected field and returns err for ExitCode.
func (a *app) invalid(err error) error {
	var ve *adapters.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	keys := make([]string, 0, len(ve.Fields))
	for k := range ve.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		a.printer.Error(ve.Fields[k])
	}
	return err
}
