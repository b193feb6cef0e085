package payment

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultInterval is the fixed period between status checks.
const DefaultInterval = 4 * time.Second

// ErrNoActivePayment is returned by VerifyNow when no payment has been
// started.
var ErrNoActivePayment = errors.New("no active payment")

// Outcome is the terminal result of one polling run.
type Outcome struct {
	Reference string
	Status    Status
}

// Option configures a Poller.
type Option func(*Poller)

// WithInterval overrides the fixed polling interval.
func WithInterval(interval time.Duration) Option {
	return func(p *Poller) {
		if interval > 0 {
			p.interval = interval
		}
	}
}

// WithOpener sets the function used to open the payment URL in an
// out-of-band browsing context.
func WithOpener(opener func(url string) error) Option {
	return func(p *Poller) {
		p.opener = opener
	}
}

// Poller drives one external payment to completion: it opens the
// payment URL, then checks the status endpoint at a fixed interval
// until a terminal state is observed or Stop is called. Instances are
// independent; nothing is shared between pollers.
type Poller struct {
	checker  StatusChecker
	interval time.Duration
	opener   func(url string) error

	mu        sync.Mutex
	reference string
	cancel    context.CancelFunc
	done      chan struct{}
}

// New creates a poller for payments resolved through checker.
func New(checker StatusChecker, opts ...Option) *Poller {
	p := &Poller{
		checker:  checker,
		interval: DefaultInterval,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start records reference as the active payment, opens paymentURL out
// of band, and begins polling: one immediate check, then one per
// interval. The returned channel receives exactly one terminal Outcome
// unless the run is stopped first. Starting while a previous run is
// active stops that run.
func (p *Poller) Start(reference, paymentURL string) <-chan Outcome {
	p.Stop()

	if p.opener != nil && paymentURL != "" {
		if err := p.opener(paymentURL); err != nil {
			// Polling still proceeds; the caller can reopen the URL.
			log.Warn().Err(err).Str("url", paymentURL).Msg("failed to open payment page")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	outcomes := make(chan Outcome, 1)
	done := make(chan struct{})

	p.mu.Lock()
	p.reference = reference
	p.cancel = cancel
	p.done = done
	p.mu.Unlock()

	log.Debug().Str("reference", reference).Dur("interval", p.interval).Msg("payment polling started")

	go p.run(ctx, reference, outcomes, done)

	return outcomes
}

func (p *Poller) run(ctx context.Context, reference string, outcomes chan<- Outcome, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if ctx.Err() != nil {
			return
		}

		if status, terminal := p.check(ctx, reference); terminal {
			if status.Succeeded() {
				log.Info().Str("reference", reference).Str("status", string(status)).Msg("payment confirmed")
			} else {
				log.Info().Str("reference", reference).Str("status", string(status)).Msg("payment failed")
				// Clear the reference so the caller restarts from
				// scratch rather than re-polling a dead payment.
				p.clearReference(reference)
			}
			outcomes <- Outcome{Reference: reference, Status: status}
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// check performs a single status check. Transient errors and unknown
// statuses count as still pending and never stop the timer.
func (p *Poller) check(ctx context.Context, reference string) (Status, bool) {
	status, err := p.checker.CheckStatus(ctx, reference)
	if err != nil {
		log.Debug().Err(err).Str("reference", reference).Msg("status check failed, treating as pending")
		return StatusPending, false
	}

	if status.Terminal() {
		return status, true
	}

	return status, false
}

// Stop cancels the polling run and returns once the polling goroutine
// has exited, so no status check runs after Stop returns. Safe to call
// at any time, including when nothing is running.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	done := p.done
	p.cancel = nil
	p.done = nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	<-done
}

// VerifyNow performs an on-demand status check for the active payment,
// independent of the recurring timer. It returns the raw status so the
// caller can tell "not yet completed" apart from terminal states.
func (p *Poller) VerifyNow(ctx context.Context) (Status, error) {
	p.mu.Lock()
	reference := p.reference
	p.mu.Unlock()

	if reference == "" {
		return "", ErrNoActivePayment
	}

	return p.checker.CheckStatus(ctx, reference)
}

// Reference returns the active payment reference, empty when none.
func (p *Poller) Reference() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reference
}

// clearReference drops the active reference if it still belongs to this
// run; a newer Start must not lose its own reference.
func (p *Poller) clearReference(reference string) {
	p.mu.Lock()
	if p.reference == reference {
		p.reference = ""
	}
	p.mu.Unlock()
}
