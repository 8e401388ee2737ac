package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Veraticus/sift/internal/cli"
	"github.com/Veraticus/sift/internal/common"
	"github.com/Veraticus/sift/internal/service"
	"github.com/Veraticus/sift/internal/storage"
	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent runs from the journal",
		Args:  cobra.NoArgs,
		RunE:  runHistory,
	}

	cmd.Flags().IntP("limit", "n", storage.DefaultListLimit, "number of runs to list")
	return cmd
}

func runHistory(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if settings.Journal.Path == "" {
		return common.NewUserError("no journal configured; set journal.path or pass --journal", common.ErrInvalidConfig)
	}

	journal, err := storage.OpenMigrated(ctx, settings.Journal.Path)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer func() { _ = journal.Close() }()

	limit, _ := cmd.Flags().GetInt("limit")
	return printHistory(ctx, cmd.OutOrStdout(), journal, limit)
}

func printHistory(ctx context.Context, w io.Writer, journal service.Journal, limit int) error {
	runs, err := journal.ListRuns(ctx, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		printLine(w, cli.FormatInfo("No run recorded yet"))
		return nil
	}

	rows := make([][]string, len(runs))
	for i, r := range runs {
		status := string(r.Status)
		if r.Message != "" {
			status += ": " + r.Message
		}
		rows[i] = []string{
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Command,
			r.Input,
			fmt.Sprint(r.Records),
			fmt.Sprint(r.Removed),
			r.Duration.Round(time.Millisecond).String(),
			status,
		}
	}
	printLine(w, cli.RenderTable([]string{"Started", "Command", "Input", "Records", "Removed", "Duration", "Status"}, rows))
	return nil
}
