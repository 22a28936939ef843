package cli

import (
	"alcyxob/fitlog-bot/internal/domain"
	"alcyxob/fitlog-bot/internal/reaper"
	"alcyxob/fitlog-bot/internal/repository"
	"alcyxob/fitlog-bot/internal/service"
	"alcyxob/fitlog-bot/internal/stats"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert or update the built-in exercise catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCore(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer c.Close(cmd.Context())

			res, err := repository.SeedCatalog(cmd.Context(), c.store, domain.DefaultCatalog())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d groups and %d exercises\n", res.Groups, res.Exercises)
			return nil
		},
	}
}

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Close every session idle past the inactivity timeout",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCore(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer c.Close(cmd.Context())

			sweeper := reaper.NewSweeper(c.reaper, c.store.Sessions, time.Minute, c.log)
			n, err := sweeper.RunOnce(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "closed %d idle sessions\n", n)
			return nil
		},
	}
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the statistics of one user",
		RunE: func(cmd *cobra.Command, args []string) error {
			telegramID, _ := cmd.Flags().GetInt64("user")
			rawWindow, _ := cmd.Flags().GetString("window")
			window, err := stats.ParseWindow(rawWindow)
			if err != nil {
				return err
			}

			c, err := openCore(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer c.Close(cmd.Context())

			text, err := c.reports.Render(cmd.Context(), telegramID, window)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().Int64("user", 0, "Telegram user ID")
	cmd.Flags().String("window", string(stats.WindowWeekly), "weekly, monthly or alltime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Upload the set records of one user as CSV and print a download link",
		RunE: func(cmd *cobra.Command, args []string) error {
			telegramID, _ := cmd.Flags().GetInt64("user")

			c, err := openCore(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer c.Close(cmd.Context())

			export, err := c.exports.Export(cmd.Context(), telegramID)
			if errors.Is(err, service.ErrExportDisabled) {
				return fmt.Errorf("%w: set s3.bucket_name", err)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d rows uploaded to %s\n%s\n", export.Rows, export.ObjectKey, export.DownloadURL)
			return nil
		},
	}
	cmd.Flags().Int64("user", 0, "Telegram user ID")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newHashPasswordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash for admin.password_hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cost, _ := cmd.Flags().GetInt("cost")
			hash, err := bcrypt.GenerateFromPassword([]byte(args[0]), cost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(hash))
			return nil
		},
	}
	cmd.Flags().Int("cost", bcrypt.DefaultCost, "bcrypt cost")
	return cmd
}
