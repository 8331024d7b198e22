package metrics_collectors

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticCollector struct {
	name  string
	value any
}

func (s *staticCollector) Name() string                    { return s.name }
func (s *staticCollector) Collect(ctx context.Context) any { return s.value }
func (s *staticCollector) Unit() string                    { return "count" }
func (s *staticCollector) Description() string             { return "static" }

func TestMetricsRegistry_CollectAll(t *testing.T) {
	registry := NewMetricsRegistry()
	five := 5.0
	registry.Register(&staticCollector{name: "b", value: &five})
	registry.Register(&staticCollector{name: "a", value: nil})
	registry.Register(&staticCollector{name: "b", value: &five})

	assert.Equal(t, []string{"a", "b"}, registry.Names())

	metrics := registry.CollectAll(context.Background())
	require.Len(t, metrics, 1)
	assert.Equal(t, "count", metrics["b"].Unit)
	assert.Equal(t, &five, metrics["b"].Value)
}

func TestRunRegistry_CollectsOwnProcess(t *testing.T) {
	registry := NewRunRegistry(t.TempDir(), zerolog.Nop())
	assert.Equal(t, []string{"disk", "go_heap", "goroutines", "process_cpu", "process_rss", "system_memory"}, registry.Names())

	metrics := registry.CollectAll(context.Background())
	goroutines, ok := metrics["goroutines"]
	require.True(t, ok)
	assert.GreaterOrEqual(t, *goroutines.Value.(*float64), 1.0)

	heap, ok := metrics["go_heap"]
	require.True(t, ok)
	assert.Greater(t, *heap.Value.(*float64), 0.0)

	rss, ok := metrics["process_rss"]
	require.True(t, ok)
	assert.Greater(t, *rss.Value.(*float64), 0.0)
	assert.Equal(t, "bytes", rss.Unit)
}
