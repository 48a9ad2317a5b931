/*
Package refresh keeps a completion index in step with a changing document.

Every text change cancels the build that is still running, if any, and starts
a new one from the full text. Only the most recently started build may
publish; older builds observe their cancelled context and exit without
touching the active index. Readers load the active index with a single atomic
read and never block on a build.

	ctrl := refresh.New(suggest.NewBuilder(suggest.DefaultOptions()), refresh.DefaultOptions())
	defer ctrl.Close()

	ctrl.TextChanged(doc.Text())
	entries := ctrl.Index().Complete("fi")
*/
package refresh

import (
	"context"
	"iter"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bastiangx/docwords/internal/logger"
	"github.com/bastiangx/docwords/pkg/suggest"
	"github.com/bastiangx/docwords/pkg/tokenize"
	"github.com/charmbracelet/log"
)

// State of a Controller.
type State int

const (
	Idle State = iota
	Building
	Closed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Building:
		return "building"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Builder turns a token sequence into an index. It returns ok=false when ctx
// is cancelled before the index is complete. *suggest.Builder implements it.
type Builder interface {
	Build(ctx context.Context, tokens iter.Seq[tokenize.Token]) (idx *suggest.Index, ok bool)
}

// Options configure a Controller.
type Options struct {
	// MaxTokens caps how many tokens one build reads from the document.
	MaxTokens int
	// Tokenizer produces the tokens for a build. Defaults to tokenize.Words.
	Tokenizer tokenize.Func
	// Logger receives build lifecycle messages. Defaults to a "refresh" logger.
	Logger *log.Logger
}

// DefaultOptions returns the controller defaults.
func DefaultOptions() Options {
	return Options{
		MaxTokens: tokenize.DefaultMaxTokens,
		Tokenizer: tokenize.Words,
	}
}

// Controller owns the active index and the single in-flight build.
type Controller struct {
	builder   Builder
	maxTokens int
	tokenizer tokenize.Func
	log       *log.Logger

	active atomic.Pointer[suggest.Index]
	builds sync.WaitGroup

	mu         sync.Mutex
	state      State
	generation uint64
	cancel     context.CancelFunc
	hooks      []func(*suggest.Index)
	stats      counters
}

type counters struct {
	started    int
	published  int
	cancelled  int
	superseded int
	lastBuild  time.Duration
}

// New creates an idle controller with an empty index.
func New(builder Builder, opts Options) *Controller {
	if opts.Tokenizer == nil {
		opts.Tokenizer = tokenize.Words
	}
	if opts.Logger == nil {
		opts.Logger = logger.New("refresh")
	}

	c := &Controller{
		builder:   builder,
		maxTokens: opts.MaxTokens,
		tokenizer: opts.Tokenizer,
		log:       opts.Logger,
		state:     Idle,
	}
	c.active.Store(suggest.EmptyIndex())
	return c
}

// Index returns the active index. It never returns nil.
func (c *Controller) Index() *suggest.Index {
	return c.active.Load()
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// OnPublish registers fn to run after each published index. Hooks run on the
// build goroutine, outside the controller lock.
func (c *Controller) OnPublish(fn func(*suggest.Index)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks = append(c.hooks, fn)
}

// TextChanged cancels the running build and starts a new one for text.
// It is a no-op once the controller is closed.
func (c *Controller) TextChanged(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Closed {
		return
	}
	if c.state == Building {
		c.cancel()
		c.stats.cancelled++
		c.log.Debug("Cancelled stale build", "generation", c.generation)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.generation++
	c.cancel = cancel
	c.state = Building
	c.stats.started++

	c.builds.Add(1)
	go c.run(ctx, c.generation, text)
}

func (c *Controller) run(ctx context.Context, generation uint64, text string) {
	defer c.builds.Done()

	start := time.Now()
	idx, ok := c.builder.Build(ctx, c.tokenizer(ctx, text, c.maxTokens))
	if !ok {
		c.log.Debug("Build stopped before completion", "generation", generation)
		return
	}
	c.publish(ctx, generation, idx, time.Since(start))
}

func (c *Controller) publish(ctx context.Context, generation uint64, idx *suggest.Index, took time.Duration) {
	c.mu.Lock()
	if c.state == Closed || generation != c.generation || ctx.Err() != nil {
		c.stats.superseded++
		c.mu.Unlock()
		c.log.Debug("Dropped superseded build", "generation", generation)
		return
	}

	c.active.Store(idx)
	c.cancel()
	c.cancel = nil
	c.state = Idle
	c.stats.published++
	c.stats.lastBuild = took
	hooks := c.hooks
	c.mu.Unlock()

	c.log.Debugf("Published index gen=[%d] entries=[%d] in %v", generation, idx.Len(), took)
	for _, fn := range hooks {
		fn(idx)
	}
}

// Wait blocks until every started build has returned.
func (c *Controller) Wait() {
	c.builds.Wait()
}

// Close cancels the running build and drops the active index. No further
// state transitions happen after Close.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Closed {
		return
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.state == Building {
		c.stats.cancelled++
	}
	c.state = Closed
	c.active.Store(suggest.EmptyIndex())
	c.log.Debug("Controller closed", "generation", c.generation)
}

// Stats returns build counters and the size of the active index.
func (c *Controller) Stats() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()

	active := c.Index().Stats()
	return map[string]int{
		"buildsStarted":    c.stats.started,
		"buildsPublished":  c.stats.published,
		"buildsCancelled":  c.stats.cancelled,
		"buildsSuperseded": c.stats.superseded,
		"lastBuildMicros":  int(c.stats.lastBuild.Microseconds()),
		"activeEntries":    active["entries"],
		"activeSymbols":    active["symbols"],
		"generation":       int(c.generation),
	}
}
