package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/spf13/cobra"

	"github.com/ramekin/ramekin-web/internal/capture"
	"github.com/ramekin/ramekin-web/internal/errors"
	"github.com/ramekin/ramekin-web/internal/ramekin"
)

const captureUserAgent = "Mozilla/5.0 (compatible; RamekinCapture/1.0)"

func captureCmd(a *app) *cobra.Command {
	var htmlFile string
	var timeout time.Duration
	var open bool

	cmd := &cobra.Command{
		Use:   "capture <url>",
		Short: "Render a recipe page and save it to Ramekin",
		Long: "Renders the page in headless Chrome and hands the snapshot to a capture " +
			"receiver exactly as the bookmarklet does in a browser.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pageURL := args[0]
			if _, err := url.ParseRequestURI(pageURL); err != nil {
				return errors.Validationf("invalid url %q", pageURL)
			}
			if err := a.requireLogin(); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			var html string
			var err error
			if htmlFile != "" {
				var data []byte
				data, err = os.ReadFile(htmlFile)
				html = string(data)
			} else {
				fmt.Fprintf(a.out, "Rendering %s\n", pageURL)
				html, err = renderPage(ctx, pageURL)
			}
			if err != nil {
				return fmt.Errorf("load page: %w", err)
			}

			state := runCapture(ctx, captureRun{
				PageURL:      pageURL,
				HTML:         html,
				AppOrigin:    a.cfg.PublicOrigin(),
				Credentials:  a.session,
				Jobs:         a.client,
				PollInterval: a.cfg.Capture.PollInterval,
				Open:         open,
				Out:          a.out,
				Logger:       a.log.Logger,
			})
			if state.Phase == capture.PhaseError {
				return errors.Wrap(nil, state.ErrorCode, state.Error)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&htmlFile, "html-file", "", "Use a saved HTML file instead of rendering the page")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "Give up after this long")
	cmd.Flags().BoolVar(&open, "open", false, "Ask to open the saved recipe when done")
	return cmd
}

// renderPage loads pageURL in headless Chrome and returns the rendered
// document.
func renderPage(ctx context.Context, pageURL string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.UserAgent(captureUserAgent),
	)
	actx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	bctx, cancelBrowser := chromedp.NewContext(actx)
	defer cancelBrowser()

	var html string
	err := chromedp.Run(bctx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	return html, err
}

// captureRun is one capture driven from the terminal.
type captureRun struct {
	PageURL      string
	HTML         string
	AppOrigin    string
	Credentials  ramekin.TokenSource
	Jobs         capture.JobAPI
	Clock        capture.Clock
	PollInterval time.Duration
	Open         bool
	Out          io.Writer
	Logger       *slog.Logger
}

// terminalHost is the page the opener script would run in.
type terminalHost struct {
	out     io.Writer
	once    sync.Once
	removed chan struct{}
}

func (h *terminalHost) RemoveContainer() {
	h.once.Do(func() { close(h.removed) })
}

func (h *terminalHost) OpenWindow(url string) {
	fmt.Fprintf(h.out, "Open %s\n", url)
}

// runCapture wires an opener and a receiver over an in-process pipe, waits
// for the receiver to finish and then asks the opener to close.
func runCapture(ctx context.Context, run captureRun) capture.State {
	pageOrigin := run.PageURL
	if u, err := url.Parse(run.PageURL); err == nil && u.Host != "" {
		pageOrigin = u.Scheme + "://" + u.Host
	}

	page, capturePage := capture.Pipe(pageOrigin, run.AppOrigin)
	defer page.Close()
	defer capturePage.Close()

	host := &terminalHost{out: run.Out, removed: make(chan struct{})}
	opener := capture.NewOpener(capture.OpenerConfig{
		Channel:        page,
		ExpectedOrigin: run.AppOrigin,
		HTML:           run.HTML,
		URL:            run.PageURL,
		Host:           host,
		Logger:         run.Logger,
	})
	receiver := capture.NewReceiver(capture.ReceiverConfig{
		Channel:      capturePage,
		Opener:       page.Source(),
		Credentials:  run.Credentials,
		Jobs:         run.Jobs,
		Clock:        run.Clock,
		PollInterval: run.PollInterval,
		Logger:       run.Logger,
	})
	defer receiver.Close()

	done := make(chan capture.State, 1)
	var mu sync.Mutex
	lastText := ""
	receiver.OnChange(func(s capture.State) {
		mu.Lock()
		if s.StatusText != "" && s.StatusText != lastText && !s.Phase.Terminal() {
			lastText = s.StatusText
			fmt.Fprintln(run.Out, s.StatusText)
		}
		mu.Unlock()
		if s.Phase.Terminal() {
			select {
			case done <- s:
			default:
			}
		}
	})

	opener.Attach()
	defer opener.Detach()

	state := receiver.Start(ctx)
	if !state.Phase.Terminal() {
		select {
		case state = <-done:
		case <-ctx.Done():
			receiver.Close()
			state = receiver.State()
			state.Phase = capture.PhaseError
			state.Error = "Timed out waiting for the capture to finish"
			state.ErrorCode = errors.CodeNetwork
		}
	}

	if state.Phase == capture.PhaseSuccess {
		recipeURL := capture.RecipeURL(run.AppOrigin, state.RecipeID)
		fmt.Fprintf(run.Out, "%s %s\n", state.StatusText, recipeURL)
		if run.Open {
			_ = receiver.ViewRecipe(recipeURL)
		}
		_ = receiver.RequestClose()
		select {
		case <-host.removed:
		case <-time.After(time.Second):
		}
	}
	return state
}
