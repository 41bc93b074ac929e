package generation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kayz/promptblocks/internal/logger"
)

// Provider sends one prompt to a text-generation service and returns the
// generated text. Errors should be *Error; anything else is treated as a
// network failure.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// ResultHook observes each authoritative resolution together with the prompt
// that produced it. Superseded results never reach it.
type ResultHook func(prompt string, state State)

type Option func(*Client)

// WithTimeout bounds every request. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithResultHook(h ResultHook) Option {
	return func(c *Client) { c.hooks = append(c.hooks, h) }
}

const subscriberBuffer = 16

// Client keeps one logical outstanding request. A new Submit supersedes any
// request still in flight: the old response is discarded when it arrives.
type Client struct {
	provider Provider
	timeout  time.Duration
	hooks    []ResultHook

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	state   State
	next    uint64
	changed chan struct{}
	subs    map[int]chan State
	nextSub int
}

func NewClient(provider Provider, opts ...Option) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		provider: provider,
		ctx:      ctx,
		cancel:   cancel,
		changed:  make(chan struct{}),
		subs:     make(map[int]chan State),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Submit moves to Pending under a fresh token and starts the request in the
// background. It never blocks on the network.
func (c *Client) Submit(prompt string) uint64 {
	c.mu.Lock()
	c.next++
	token := c.next
	c.setLocked(State{Phase: PhasePending, Token: token})
	c.wg.Add(1)
	c.mu.Unlock()

	go c.run(token, prompt)
	return token
}

func (c *Client) run(token uint64, prompt string) {
	defer c.wg.Done()

	ctx := c.ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	text, err := c.generate(ctx, prompt)

	next := State{Phase: PhaseSucceeded, Token: token, Text: text}
	if err != nil {
		ge := classify(err)
		next = State{Phase: PhaseFailed, Token: token, Message: ge.Error(), Kind: ge.Kind}
	}
	c.resolve(prompt, next)
}

func (c *Client) generate(ctx context.Context, prompt string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newError(NetworkError, nil, "request aborted: %v", r)
		}
	}()
	if c.provider == nil {
		return "", missingCredential()
	}
	return c.provider.Generate(ctx, prompt)
}

func (c *Client) resolve(prompt string, next State) {
	c.mu.Lock()
	if c.state.Token != next.Token || !c.state.Pending() {
		c.mu.Unlock()
		logger.Debug("Discarding superseded generation result (token %d)", next.Token)
		return
	}
	c.setLocked(next)
	hooks := c.hooks
	c.mu.Unlock()

	if next.Phase == PhaseFailed {
		logger.Warn("Generation %d failed: %s", next.Token, next.Message)
	} else {
		logger.Info("Generation %d succeeded (%d chars)", next.Token, len(next.Text))
	}
	for _, h := range hooks {
		h(prompt, next)
	}
}

// Reset returns to Idle. A request in flight is superseded.
func (c *Client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next++
	c.setLocked(State{Phase: PhaseIdle})
}

func (c *Client) setLocked(s State) {
	c.state = s
	close(c.changed)
	c.changed = make(chan struct{})
	for _, ch := range c.subs {
		select {
		case ch <- s:
		default:
			// drop the oldest snapshot so the latest always lands
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- s:
			default:
			}
		}
	}
}

// Subscribe returns a channel receiving every state transition and a
// function that unsubscribes and closes it.
func (c *Client) Subscribe() (<-chan State, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	ch := make(chan State, subscriberBuffer)
	c.subs[id] = ch
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			delete(c.subs, id)
			close(ch)
		})
	}
}

// Wait blocks until the client is not Pending and returns that state.
func (c *Client) Wait(ctx context.Context) (State, error) {
	for {
		c.mu.Lock()
		s, ch := c.state, c.changed
		c.mu.Unlock()
		if !s.Pending() {
			return s, nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return s, fmt.Errorf("wait for generation: %w", ctx.Err())
		}
	}
}

// Close cancels requests in flight and waits for their goroutines.
// Canceled requests resolve as network failures.
func (c *Client) Close() {
	c.cancel()
	c.wg.Wait()
}

// Drain waits for every request goroutine to finish without canceling them.
func (c *Client) Drain() {
	c.wg.Wait()
}
