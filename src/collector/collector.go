package collector

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Cast4nha/scrapper-sub000/src/config"
	"github.com/Cast4nha/scrapper-sub000/src/domain"

	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"
)

// Collector opens headless browser sessions on the ticket site.
type Collector struct {
	cfg        config.Collector
	driverOpts []func(*chromedp.ExecAllocator)
	log        *logrus.Entry
}

func New(cfg config.Collector, logger *logrus.Logger) (*Collector, error) {
	if !strings.Contains(cfg.TicketURL, "%s") {
		return nil, fmt.Errorf("ticket_url %q has no %%s placeholder for the ticket code", cfg.TicketURL)
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	// fixed desktop window so the site does not fall back to its mobile layout
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("force-device-scale-factor", "1"),
		chromedp.Flag("window-size", "1920,1080"),
	)

	return &Collector{
		cfg:        cfg,
		driverOpts: opts,
		log:        logger.WithField("component", "collector"),
	}, nil
}

// Session owns one browser. Collect calls on a session run one at a time.
type Session struct {
	c      *Collector
	ctx    context.Context
	cancel func()
	mu     sync.Mutex
}

func (c *Collector) NewSession(ctx context.Context) (*Session, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, c.driverOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// start the browser now so a broken install fails here, not on first use
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	return &Session{
		c:   c,
		ctx: browserCtx,
		cancel: func() {
			browserCancel()
			allocCancel()
		},
	}, nil
}

// Collect renders the ticket page for code and reads it into a Page.
func (s *Session) Collect(ctx context.Context, code string) (*domain.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	url := fmt.Sprintf(s.c.cfg.TicketURL, code)
	log := s.c.log.WithFields(logrus.Fields{"code": code, "url": url})

	runCtx := s.ctx
	if s.c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, s.c.cfg.Timeout)
		defer cancel()
	}

	// the caller's context still cancels a page load in flight
	stop := context.AfterFunc(ctx, func() {
		s.cancelRun()
	})
	defer stop()

	var domNode, innerText string
	err := chromedp.Run(
		runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady(s.c.cfg.Ready, chromedp.ByQuery),
		chromedp.OuterHTML(`html`, &domNode, chromedp.ByQuery),
		chromedp.Text(`body`, &innerText, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load ticket page %s: %w", code, err)
	}

	page, err := PageFromHTML(code, domNode, s.c.cfg)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(innerText) != "" {
		page.Text = innerText
	}

	log.WithFields(logrus.Fields{
		"blocks":  len(page.Blocks),
		"summary": len(page.Summary),
	}).Debug("ticket page collected")

	return page, nil
}

func (s *Session) cancelRun() {
	s.c.log.Warn("caller cancelled, closing browser session")
	s.cancel()
}

func (s *Session) Close() {
	s.cancel()
}
