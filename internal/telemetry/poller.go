package telemetry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Default refresh periods.
const (
	DefaultPollInterval    = 100 * time.Millisecond
	DefaultLatencyInterval = time.Second
)

// Snapshot is the result of one refresh.
type Snapshot struct {
	Connected bool
	Values    map[string][]Field
	Tree      *Tree
}

// Value returns the display fields of key.
func (s Snapshot) Value(key string) ([]Field, bool) {
	f, ok := s.Values[key]
	return f, ok
}

// Poller periodically reads every key from a Client and publishes the
// displayable ones as a Snapshot. Callbacks run on the poller's goroutine.
type Poller struct {
	client Client
	logger *log.Logger

	pollEvery    time.Duration
	latencyEvery time.Duration

	mu           sync.Mutex
	onSnapshot   func(Snapshot)
	onLatency    func(time.Duration)
	onConnection func(bool)
	connected    bool
	unstructured map[string]bool // keys already reported as not displayable
}

// NewPoller creates a poller. Non-positive intervals use the defaults.
func NewPoller(client Client, logger *log.Logger, pollEvery, latencyEvery time.Duration) *Poller {
	if logger == nil {
		logger = log.Default()
	}
	if pollEvery <= 0 {
		pollEvery = DefaultPollInterval
	}
	if latencyEvery <= 0 {
		latencyEvery = DefaultLatencyInterval
	}
	return &Poller{
		client:       client,
		logger:       logger,
		pollEvery:    pollEvery,
		latencyEvery: latencyEvery,
		unstructured: map[string]bool{},
	}
}

func (p *Poller) OnSnapshot(fn func(Snapshot)) {
	p.mu.Lock()
	p.onSnapshot = fn
	p.mu.Unlock()
}

func (p *Poller) OnLatency(fn func(time.Duration)) {
	p.mu.Lock()
	p.onLatency = fn
	p.mu.Unlock()
}

// OnConnection registers the callback run when the connection state flips.
func (p *Poller) OnConnection(fn func(bool)) {
	p.mu.Lock()
	p.onConnection = fn
	p.mu.Unlock()
}

// Refresh reads every key once and builds a snapshot. Values without a
// dashboard structure are skipped and logged once per key.
func (p *Poller) Refresh(ctx context.Context) (Snapshot, error) {
	keys, err := p.client.Keys(ctx)
	if err != nil {
		p.setConnected(false)
		return Snapshot{Values: map[string][]Field{}, Tree: BuildTree(nil)}, err
	}

	values := make(map[string][]Field, len(keys))
	for _, key := range keys {
		raw, err := p.client.Raw(ctx, key)
		if err != nil {
			if errors.Is(err, ErrNotConnected) || errors.Is(err, context.Canceled) {
				p.setConnected(false)
				return Snapshot{Values: map[string][]Field{}, Tree: BuildTree(nil)}, err
			}
			p.logger.Debug("skipping unreadable key", "key", key, "err", err)
			continue
		}
		if len(raw) == 0 {
			continue
		}
		fields, ok := Display(raw)
		if !ok {
			p.reportUnstructured(key)
			continue
		}
		values[key] = fields
	}

	p.setConnected(true)
	return Snapshot{Connected: true, Values: values, Tree: BuildTree(values)}, nil
}

// Run refreshes the tree every poll interval and measures latency every
// latency interval until ctx is done.
func (p *Poller) Run(ctx context.Context) {
	poll := time.NewTicker(p.pollEvery)
	defer poll.Stop()
	latency := time.NewTicker(p.latencyEvery)
	defer latency.Stop()

	p.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-poll.C:
			p.poll(ctx)
		case <-latency.C:
			p.measure(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	snap, err := p.Refresh(ctx)
	if err != nil && ctx.Err() != nil {
		return
	}
	p.mu.Lock()
	fn := p.onSnapshot
	p.mu.Unlock()
	if fn != nil {
		fn(snap)
	}
}

func (p *Poller) measure(ctx context.Context) {
	d, err := p.client.Latency(ctx)
	if err != nil {
		p.setConnected(false)
		return
	}
	p.setConnected(true)
	p.mu.Lock()
	fn := p.onLatency
	p.mu.Unlock()
	if fn != nil {
		fn(d)
	}
}

func (p *Poller) setConnected(connected bool) {
	p.mu.Lock()
	changed := p.connected != connected
	p.connected = connected
	fn := p.onConnection
	p.mu.Unlock()
	if !changed {
		return
	}
	if connected {
		p.logger.Info("robot connected")
	} else {
		p.logger.Info("robot disconnected")
	}
	if fn != nil {
		fn(connected)
	}
}

func (p *Poller) reportUnstructured(key string) {
	p.mu.Lock()
	seen := p.unstructured[key]
	p.unstructured[key] = true
	p.mu.Unlock()
	if !seen {
		p.logger.Errorf("could not display %s, it doesn't contain a structure", key)
	}
}
