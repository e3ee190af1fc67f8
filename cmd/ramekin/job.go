package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/ramekin/ramekin-web/internal/capture"
	"github.com/ramekin/ramekin-web/internal/domain"
	"github.com/ramekin/ramekin-web/internal/errors"
)

func jobCmd(a *app) *cobra.Command {
	var retry, once bool
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "job <id>",
		Short: "Follow a scrape job until it settles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			jobID := args[0]
			if retry {
				job, err := a.client.RetryScrape(ctx, jobID)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Retrying %s (%s)\n", job.ID, job.Status)
			}
			if once {
				job, err := a.client.GetScrape(ctx, jobID)
				if err != nil {
					return err
				}
				printJob(a.out, a.cfg.PublicOrigin(), job)
				return nil
			}

			job, err := followJob(ctx, a.client, capture.RealClock(), a.cfg.Capture.PollInterval, jobID, a.out)
			if err != nil {
				return err
			}
			printJob(a.out, a.cfg.PublicOrigin(), job)
			if job.Status == domain.JobFailed {
				return errors.JobFailed(capture.TextExtractFailed)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&retry, "retry", false, "Retry a failed job first")
	cmd.Flags().BoolVar(&once, "once", false, "Fetch the status once instead of following")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "Give up after this long")
	return cmd
}

// followJob polls jobID until it settles, printing each new status.
func followJob(ctx context.Context, jobs capture.JobAPI, clock capture.Clock, interval time.Duration, jobID string, out io.Writer) (*domain.ScrapeJob, error) {
	type result struct {
		job *domain.ScrapeJob
		err error
	}
	done := make(chan result, 1)
	var last domain.JobStatus

	poller := capture.NewPoller(jobs, clock, interval)
	defer poller.Stop()

	poller.Start(ctx, jobID, func(job *domain.ScrapeJob, err error) bool {
		if err != nil {
			done <- result{err: err}
			return true
		}
		if job.Status != last {
			last = job.Status
			fmt.Fprintf(out, "%s: %s\n", job.Status, capture.StatusText(job.Status))
		}
		if capture.Settled(job) {
			done <- result{job: job}
			return true
		}
		return false
	})

	select {
	case r := <-done:
		return r.job, r.err
	case <-ctx.Done():
		return nil, errors.Network(capture.TextPollFailed, ctx.Err())
	}
}

func printJob(out io.Writer, appOrigin string, job *domain.ScrapeJob) {
	fmt.Fprintf(out, "Job %s\n  status: %s\n", job.ID, job.Status)
	if job.URL != "" {
		fmt.Fprintf(out, "  url:    %s\n", job.URL)
	}
	if job.RecipeID != nil && *job.RecipeID != "" {
		fmt.Fprintf(out, "  recipe: %s\n", capture.RecipeURL(appOrigin, *job.RecipeID))
	}
	if job.Error != nil && *job.Error != "" {
		fmt.Fprintf(out, "  error:  %s\n", *job.Error)
	}
}
