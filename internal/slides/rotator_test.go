package slides

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRotator_Navigation(t *testing.T) {
	var changes atomic.Int32
	r := NewRotator(4, time.Hour, func(int) { changes.Add(1) })

	assert.Equal(t, 0, r.Current())
	assert.Equal(t, 1, r.Next())
	assert.Equal(t, 2, r.Next())
	assert.Equal(t, 3, r.Next())
	assert.Equal(t, 0, r.Next(), "wraps modulo deck length")
	assert.Equal(t, 3, r.Prev())
	assert.Equal(t, 1, r.GoTo(1))
	assert.Equal(t, 2, r.GoTo(6))
	assert.Equal(t, 3, r.GoTo(-1))
	assert.Equal(t, int32(8), changes.Load())
}

func TestRotator_SetLength(t *testing.T) {
	r := NewRotator(4, time.Hour, nil)
	r.GoTo(3)

	r.SetLength(4)
	assert.Equal(t, 3, r.Current())

	r.SetLength(2)
	assert.Equal(t, 0, r.Current())
	assert.Equal(t, 1, r.Next())

	r.SetLength(0)
	assert.Equal(t, 0, r.Next())
}

func TestRotator_DefaultInterval(t *testing.T) {
	r := NewRotator(4, 0, nil)
	assert.Equal(t, DefaultInterval, r.Interval())
	r.SetInterval(-time.Second)
	assert.Equal(t, DefaultInterval, r.Interval())
}

func TestRotator_AdvancesOnInterval(t *testing.T) {
	r := NewRotator(4, 10*time.Millisecond, nil)
	r.Start(context.Background())
	defer r.Stop()

	require.Eventually(t, func() bool { return r.Current() >= 2 }, time.Second, 5*time.Millisecond)
}

func TestRotator_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRotator(4, 10*time.Millisecond, nil)
	r.Start(ctx)
	r.Start(ctx)
	cancel()
	r.Stop()
	r.Stop()
}

func TestRotator_StopWithoutStart(t *testing.T) {
	r := NewRotator(4, time.Second, nil)
	r.Stop()
	r.Start(context.Background())
	assert.Equal(t, 0, r.Current())
}
