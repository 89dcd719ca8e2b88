package notify

import (
	"context"
	"sync"
	"time"

	"github.com/Nathankoth/waitlist-main-second/pkg/circuitbreaker"
	"github.com/Nathankoth/waitlist-main-second/pkg/retry"
)

// Signup is the notification payload for one successful waitlist insert.
// It is a copy of the persisted fields, so sinks never touch the datastore.
type Signup struct {
	Email           string
	Role            string
	FullName        string
	Company         string
	MonthlyListings string
	YearsExperience string
	HowHeard        string
	CreatedAt       time.Time
}

// Notifier delivers a signup to one downstream sink.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, signup *Signup) error
}

type Logger interface {
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// DefaultDispatchTimeout bounds a single sink delivery including retries.
const DefaultDispatchTimeout = 15 * time.Second

// Dispatcher fans a signup out to all configured sinks on detached
// goroutines. Dispatch returns immediately; delivery failures are logged and
// never influence the request that triggered them. Each sink gets its own
// circuit breaker so a dead webhook stops being hammered without affecting
// the others.
type Dispatcher struct {
	logger    Logger
	notifiers []Notifier
	breakers  map[string]circuitbreaker.CircuitBreaker
	policy    retry.RetryPolicy
	timeout   time.Duration
	wg        sync.WaitGroup
}

type DispatcherConfig struct {
	Timeout time.Duration          // per-delivery budget, DefaultDispatchTimeout when zero
	Retry   retry.RetryPolicy      // optional, defaults to a short exponential backoff
	Breaker *circuitbreaker.Config // optional, per-sink breaker settings
}

func NewDispatcher(logger Logger, cfg *DispatcherConfig, notifiers ...Notifier) *Dispatcher {
	if cfg == nil {
		cfg = &DispatcherConfig{}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultDispatchTimeout
	}

	policy := cfg.Retry
	if policy == nil {
		policy = retry.NewExponentialBackoff(&retry.Config{
			MaxAttempts: 2,
			BaseDelay:   500 * time.Millisecond,
			MaxDelay:    2 * time.Second,
			Multiplier:  2.0,
		})
	}

	breakers := make(map[string]circuitbreaker.CircuitBreaker, len(notifiers))
	for _, n := range notifiers {
		breakers[n.Name()] = circuitbreaker.NewCircuitBreaker(cfg.Breaker)
	}

	return &Dispatcher{
		logger:    logger,
		notifiers: notifiers,
		breakers:  breakers,
		policy:    policy,
		timeout:   timeout,
	}
}

// Dispatch launches one delivery goroutine per sink and returns without
// waiting for any of them. The deliveries run on a background context: the
// originating request has already been answered and must not be held up.
func (d *Dispatcher) Dispatch(signup *Signup) {
	if signup == nil {
		return
	}

	for _, n := range d.notifiers {
		d.wg.Add(1)
		go d.deliver(n, signup)
	}
}

func (d *Dispatcher) deliver(n Notifier, signup *Signup) {
	defer d.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	breaker := d.breakers[n.Name()]

	err := breaker.Call(func() error {
		return d.policy.Execute(func() error {
			return n.Notify(ctx, signup)
		})
	})

	if err != nil {
		if d.logger != nil {
			d.logger.Error("Signup notification failed", "sink", n.Name(), "email", signup.Email, "error", err)
		}
		return
	}

	if d.logger != nil {
		d.logger.Info("Signup notification delivered", "sink", n.Name(), "email", signup.Email)
	}
}

// Wait blocks until all in-flight deliveries finish. Used on shutdown so
// fire-and-forget sends are not cut off mid-request, and in tests.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
