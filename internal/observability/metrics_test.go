package observability

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetricsCounts(t *testing.T) {
	m := NewMetrics()

	m.RecordCall("list_families")
	m.RecordCall("list_families")
	m.RecordCall("publish_font")
	m.RecordFailure("publish_font")

	s := m.Snapshot()
	assert.Equal(t, int64(3), s.RequestTotal)
	assert.Equal(t, int64(1), s.RequestFailed)
	assert.Equal(t, int64(2), s.Tools["list_families"].Calls)
	assert.Equal(t, int64(1), s.Tools["publish_font"].Calls)
	assert.Equal(t, int64(1), s.Tools["publish_font"].Failures)
}

func TestMetricsConcurrentAccess(t *testing.T) {
	m := NewMetrics()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.RecordCall("list_families")
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1000), m.Snapshot().RequestTotal)
}
