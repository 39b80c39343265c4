package ticker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"tickerfeed/internal/events"
	"tickerfeed/internal/marketdata"
	"tickerfeed/internal/model"
	"tickerfeed/internal/store"
)

// DefaultInterval is the period between scheduled refresh cycles.
const DefaultInterval = 180000 * time.Millisecond

// ErrSuperseded is returned by a refresh cycle that was overtaken by a newer
// one. A superseded cycle never publishes.
var ErrSuperseded = errors.New("refresh superseded by a newer cycle")

// Option configures a Refresher.
type Option func(*Refresher)

// WithInterval sets the period between scheduled cycles.
func WithInterval(d time.Duration) Option {
	return func(r *Refresher) { r.interval = d }
}

// WithClock replaces the wall clock driving the schedule.
func WithClock(c clockwork.Clock) Option {
	return func(r *Refresher) { r.clock = c }
}

// WithDefaultFiat sets the currency used while the store holds none.
func WithDefaultFiat(fiat string) Option {
	return func(r *Refresher) { r.defaultFiat = strings.TrimSpace(fiat) }
}

// WithLimit caps the number of records requested per cycle.
func WithLimit(limit int) Option {
	return func(r *Refresher) { r.limit = limit }
}

type cycle struct {
	id     uint64
	cancel context.CancelFunc
}

// Refresher periodically fetches tickers, projects them onto the tracked
// coins and publishes the result to the store.
type Refresher struct {
	logger      *slog.Logger
	client      marketdata.Client
	store       store.Store
	coins       []model.TrackedCoin
	clock       clockwork.Clock
	interval    time.Duration
	defaultFiat string
	limit       int

	mu       sync.Mutex
	latest   uint64
	inflight *cycle
	runCtx   context.Context
	stop     context.CancelFunc
	wg       sync.WaitGroup
}

// NewRefresher creates a new Refresher. It does nothing until Start or
// Refresh is called.
func NewRefresher(logger *slog.Logger, client marketdata.Client, st store.Store, coins []model.TrackedCoin, opts ...Option) *Refresher {
	r := &Refresher{
		client:      client,
		store:       st,
		coins:       append([]model.TrackedCoin(nil), coins...),
		clock:       clockwork.NewRealClock(),
		interval:    DefaultInterval,
		defaultFiat: model.DefaultFiat,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logger.With("component", r.Name())
	return r
}

func (r *Refresher) Name() string {
	return "TICKER"
}

// Start runs a refresh right away and then once per interval until ctx is
// cancelled or Stop is called. Each cycle runs on its own goroutine, so a
// hung request does not hold back the next one. Starting a running
// Refresher is a no-op.
func (r *Refresher) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stop != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	r.runCtx = ctx
	r.stop = cancel
	ticker := r.clock.NewTicker(r.interval)

	r.logger.Info("Refresher: starting", "interval", r.interval)

	r.wg.Add(1)
	go r.run(ctx, ticker)
}

// Stop cancels the schedule and any in-flight cycle, then waits for them.
func (r *Refresher) Stop() {
	r.mu.Lock()
	cancel := r.stop
	r.stop = nil
	r.runCtx = nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	r.wg.Wait()
	r.logger.Info("Refresher: stopped")
}

func (r *Refresher) run(ctx context.Context, ticker clockwork.Ticker) {
	defer r.wg.Done()
	defer ticker.Stop()

	r.spawn(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			r.spawn(ctx)
		}
	}
}

func (r *Refresher) spawn(ctx context.Context) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		err := r.Refresh(ctx)
		switch {
		case err == nil:
		case errors.Is(err, ErrSuperseded), errors.Is(err, context.Canceled):
			r.logger.Debug("Refresher: cycle abandoned", "error", err)
		default:
			r.logger.Warn("Refresher: cycle failed", "error", err)
		}
	}()
}

// Refresh performs one fetch-and-publish cycle in the current display
// currency. A new cycle cancels the one in flight; on failure the store is
// left unchanged.
func (r *Refresher) Refresh(ctx context.Context) error {
	ctx, c := r.begin(ctx)
	defer r.end(c)

	fiat := r.currentFiat()
	query := marketdata.TickerQuery{Convert: strings.ToUpper(fiat), Limit: r.limit}

	ticks, err := r.client.GetTickers(ctx, query)

	r.mu.Lock()
	defer r.mu.Unlock()

	if c.id != r.latest {
		return ErrSuperseded
	}
	if err != nil {
		return fmt.Errorf("failed to fetch tickers in %s: %w", query.Convert, err)
	}

	tickers := Project(r.coins, ticks, fiat)
	r.store.Dispatch(store.SetTickers{Tickers: tickers})

	r.logger.Debug("Refresher: published tickers", "fiat", query.Convert, "received", len(ticks), "published", len(tickers))

	return nil
}

// OnCurrencyChange stores the requested display currency and refreshes
// right away. Unsupported codes are rejected without touching the store.
// While the schedule is running the refresh is handed to it, so Stop
// cancels and waits for it; otherwise it runs on ctx before returning.
func (r *Refresher) OnCurrencyChange(ctx context.Context, req events.ChangeCurrentFiatRequest) error {
	fiat := strings.TrimSpace(req.Fiat)
	if _, err := model.NormalizeFiat(fiat); err != nil {
		return err
	}

	r.logger.Info("Refresher: display currency changed", "fiat", fiat)
	r.store.Dispatch(store.SetCurrentFiat{FiatKey: fiat})

	r.mu.Lock()
	if r.stop != nil {
		// Stop takes r.mu before waiting, so this wg.Add precedes its Wait.
		r.spawn(r.runCtx)
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()

	return r.Refresh(ctx)
}

// Bind registers the currency change handler on bus.
func (r *Refresher) Bind(bus *events.Bus) {
	bus.On(events.ChangeCurrentFiat, func(ctx context.Context, payload json.RawMessage) error {
		var req events.ChangeCurrentFiatRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return fmt.Errorf("failed to decode %s payload: %w", events.ChangeCurrentFiat, err)
		}
		return r.OnCurrencyChange(ctx, req)
	})
}

func (r *Refresher) currentFiat() string {
	if fiat := strings.TrimSpace(r.store.State().CurrentFiat); fiat != "" {
		return fiat
	}
	return r.defaultFiat
}

func (r *Refresher) begin(ctx context.Context) (context.Context, *cycle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.inflight != nil {
		r.inflight.cancel()
	}

	ctx, cancel := context.WithCancel(ctx)
	r.latest++
	c := &cycle{id: r.latest, cancel: cancel}
	r.inflight = c

	return ctx, c
}

func (r *Refresher) end(c *cycle) {
	c.cancel()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.inflight == c {
		r.inflight = nil
	}
}
