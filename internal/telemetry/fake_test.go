package telemetry

import (
	"context"
	"sync"
	"time"
)

type fakeClient struct {
	mu        sync.Mutex
	values    map[string]map[string]any
	down      bool
	latency   time.Duration
	host      string
	port      int
	keysCalls int
}

func newFakeClient(values map[string]map[string]any) *fakeClient {
	return &fakeClient{values: values, latency: 3 * time.Millisecond}
}

func (f *fakeClient) Keys(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keysCalls++
	if f.down {
		return nil, ErrNotConnected
	}
	keys := make([]string, 0, len(f.values))
	for k := range f.values {
		keys = append(keys, k)
	}
	return keys, nil
}

func (f *fakeClient) Raw(_ context.Context, key string) (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, ErrNotConnected
	}
	return f.values[key], nil
}

func (f *fakeClient) Latency(context.Context) (time.Duration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return 0, ErrNotConnected
	}
	return f.latency, nil
}

func (f *fakeClient) Connected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.down
}

func (f *fakeClient) Reconfigure(host string, port int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.host, f.port = host, port
}

func (f *fakeClient) Close() error { return nil }

func (f *fakeClient) setDown(down bool) {
	f.mu.Lock()
	f.down = down
	f.mu.Unlock()
}

// structured builds a value in the robot's structured format.
func structured(elements map[string]any, viewables ...map[string]any) map[string]any {
	v := map[string]any{}
	for k, e := range elements {
		v[k] = e
	}
	list := make([]any, 0, len(viewables))
	for _, vw := range viewables {
		list = append(list, vw)
	}
	v["struct"] = map[string]any{"dashboard": list}
	return v
}
