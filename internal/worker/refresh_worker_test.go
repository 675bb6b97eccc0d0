package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"sbuboard/internal/amqp"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type call struct{ domain, key string }

type fakeRefresher struct {
	mu    sync.Mutex
	calls []call
	hits  int
}

func (f *fakeRefresher) Refetch(_ context.Context, domain, key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{domain, key})
	return f.hits
}

func (f *fakeRefresher) snapshot() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

type fakeConsumer struct {
	msgs []*amqp.RefreshMessage
	err  error
}

func (f *fakeConsumer) ConsumeRefresh(ctx context.Context, handler func(context.Context, *amqp.RefreshMessage) error) error {
	for _, m := range f.msgs {
		if err := handler(ctx, m); err != nil {
			return err
		}
	}
	if f.err != nil {
		return f.err
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestHandleRefreshMessage(t *testing.T) {
	ref := &fakeRefresher{hits: 1}
	w := NewRefreshWorker(ref, nil)

	require.NoError(t, w.HandleRefreshMessage(context.Background(), amqp.NewRefreshMessage("completion", "2025-5")))
	require.NoError(t, w.HandleRefreshMessage(context.Background(), amqp.NewRefreshMessage("attendance", "")))

	assert.Equal(t, []call{{"completion", "2025-5"}, {"attendance", ""}}, ref.snapshot())
}

func TestHandleRefreshMessage_NothingMounted(t *testing.T) {
	w := NewRefreshWorker(&fakeRefresher{}, nil)
	assert.NoError(t, w.HandleRefreshMessage(context.Background(), amqp.NewRefreshMessage("attendance", "x")))
}

func TestRun_DeliversUntilCancelled(t *testing.T) {
	ref := &fakeRefresher{hits: 2}
	w := NewRefreshWorker(ref, nil)
	consumer := &fakeConsumer{msgs: []*amqp.RefreshMessage{
		amqp.NewRefreshMessage("attendance", ""),
		amqp.NewRefreshMessage("completion", ""),
	}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, consumer) }()

	require.Eventually(t, func() bool { return len(ref.snapshot()) == 2 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.NoError(t, <-done, "cancellation is a clean exit")
}

func TestRun_ConsumerFailure(t *testing.T) {
	w := NewRefreshWorker(&fakeRefresher{}, nil)
	err := w.Run(context.Background(), &fakeConsumer{err: errors.New("access refused")})
	assert.EqualError(t, err, "access refused")
}

func TestPoll(t *testing.T) {
	ref := &fakeRefresher{}
	w := NewRefreshWorker(ref, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Poll(ctx, 10*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return len(ref.snapshot()) >= 4 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	calls := ref.snapshot()
	assert.Equal(t, call{"attendance", ""}, calls[0])
	assert.Equal(t, call{"completion", ""}, calls[1])
}

func TestPoll_DisabledReturnsAtOnce(t *testing.T) {
	w := NewRefreshWorker(&fakeRefresher{}, nil)
	w.Poll(context.Background(), 0)
}
