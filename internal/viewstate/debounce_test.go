package viewstate

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncer_RunsLastCallOnce(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var runs atomic.Int32
	var last atomic.Value
	for _, v := range []string{"a", "b", "c"} {
		v := v
		d.Call(func() {
			runs.Add(1)
			last.Store(v)
		})
	}
	assert.True(t, d.Pending())

	assert.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())
	assert.Equal(t, "c", last.Load())
	assert.False(t, d.Pending())
}

func TestDebouncer_Cancel(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var runs atomic.Int32
	d.Call(func() { runs.Add(1) })
	assert.True(t, d.Cancel())
	assert.False(t, d.Cancel())

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), runs.Load())
}
