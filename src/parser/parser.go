package parser

import (
	"context"
	"fmt"
	"sync"

	"github.com/Cast4nha/scrapper-sub000/src/core"
	"github.com/Cast4nha/scrapper-sub000/src/domain"

	"github.com/sirupsen/logrus"
)

// Source reads ticket pages. A Source is a single browser session and is
// never used by two goroutines at once.
type Source interface {
	Collect(ctx context.Context, code string) (*domain.Page, error)
	Close()
}

type SourceFactory func(ctx context.Context) (Source, error)

type TicketStore interface {
	InsertTicket(ctx context.Context, ticket *domain.Ticket) (int, error)
}

type Result struct {
	Code   string         `json:"code"`
	Ticket *domain.Ticket `json:"ticket,omitempty"`
	Err    error          `json:"-"`
}

type Parser struct {
	engine    *core.Engine
	newSource SourceFactory
	store     TicketStore
	workers   int
	log       *logrus.Entry
}

// New builds a parser. store may be nil.
func New(engine *core.Engine, newSource SourceFactory, store TicketStore, workers int, logger *logrus.Logger) *Parser {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Parser{
		engine:    engine,
		newSource: newSource,
		store:     store,
		workers:   workers,
		log:       logger.WithField("component", "parser"),
	}
}

// Parse extracts every code. Each worker owns one session and handles its
// codes one after another; results come back in input order.
func (p *Parser) Parse(ctx context.Context, codes []string) []Result {
	results := make([]Result, len(codes))
	for i, code := range codes {
		results[i].Code = code
	}

	jobs := make(chan int)
	workers := p.workers
	if workers > len(codes) {
		workers = len(codes)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)

		go func(worker int) {
			defer wg.Done()
			p.work(ctx, worker, jobs, results)
		}(w)
	}

	for i := range codes {
		select {
		case jobs <- i:
		case <-ctx.Done():
			for j := i; j < len(codes); j++ {
				results[j].Err = ctx.Err()
			}
			close(jobs)
			wg.Wait()
			return results
		}
	}
	close(jobs)

	wg.Wait()

	return results
}

func (p *Parser) work(ctx context.Context, worker int, jobs <-chan int, results []Result) {
	log := p.log.WithField("worker", worker)

	src, err := p.newSource(ctx)
	if err != nil {
		log.WithError(err).Error("failed to open session")
		for i := range jobs {
			results[i].Err = fmt.Errorf("failed to open session: %w", err)
		}
		return
	}
	defer src.Close()

	for i := range jobs {
		results[i].Ticket, results[i].Err = p.parseOne(ctx, src, results[i].Code)
		if results[i].Err != nil {
			log.WithError(results[i].Err).WithField("code", results[i].Code).Error("ticket failed")
		}
	}
}

func (p *Parser) parseOne(ctx context.Context, src Source, code string) (*domain.Ticket, error) {
	page, err := src.Collect(ctx, code)
	if err != nil {
		return nil, err
	}

	ticket, err := p.engine.Extract(page)
	if err != nil {
		return nil, err
	}

	p.log.WithFields(logrus.Fields{
		"code":  code,
		"games": len(ticket.Games),
	}).Info("ticket extracted")

	if p.store != nil {
		id, err := p.store.InsertTicket(ctx, ticket)
		if err != nil {
			return ticket, fmt.Errorf("failed to store ticket %s: %w", code, err)
		}
		p.log.WithFields(logrus.Fields{"code": code, "ticket_id": id}).Debug("ticket stored")
	}

	return ticket, nil
}
