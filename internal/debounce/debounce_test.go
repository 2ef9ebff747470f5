package debounce

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSchedule_OnlyLastFires(t *testing.T) {
	d := New(20 * time.Millisecond)

	var fired atomic.Int32
	var last atomic.Value
	for _, q := range []string{"g", "gi", "git"} {
		q := q
		d.Schedule(func() {
			fired.Add(1)
			last.Store(q)
		})
	}

	assert.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
	assert.Equal(t, "git", last.Load())
	assert.False(t, d.Pending())
}

func TestCancel(t *testing.T) {
	d := New(10 * time.Millisecond)

	var fired atomic.Bool
	d.Schedule(func() { fired.Store(true) })
	assert.True(t, d.Pending())
	d.Cancel()
	assert.False(t, d.Pending())

	time.Sleep(40 * time.Millisecond)
	assert.False(t, fired.Load())
}

func TestNew_DefaultDelay(t *testing.T) {
	assert.Equal(t, DefaultDelay, New(0).Delay())
	assert.Equal(t, 5*time.Millisecond, New(5*time.Millisecond).Delay())
}
