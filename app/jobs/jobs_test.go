package jobs_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/app/jobs"
	"github.com/shashiranjanraj/storefront/pkg/mail"
	"github.com/shashiranjanraj/storefront/pkg/queue"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	done chan struct{}
}

func (m *recordingMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()
	m.done <- struct{}{}
	return nil
}

func TestTemplates(t *testing.T) {
	w, err := jobs.Welcome("a@b.io")
	require.NoError(t, err)
	assert.Equal(t, []string{"a@b.io"}, w.To)
	assert.Contains(t, w.HTML, "a@b.io")

	r, err := jobs.PasswordReset("a@b.io", "http://shop/reset/abc")
	require.NoError(t, err)
	assert.Contains(t, r.HTML, `href="http://shop/reset/abc"`)

	o, err := jobs.OrderConfirmation("a@b.io", "o-1", []jobs.OrderLine{{Title: "<b>Book</b>", Quantity: 2}}, "25.50")
	require.NoError(t, err)
	assert.Contains(t, o.HTML, "&lt;b&gt;Book&lt;/b&gt; x 2")
	assert.Contains(t, o.HTML, "$25.50")
}

func TestSendMailWithoutMailer(t *testing.T) {
	j, err := jobs.Welcome("a@b.io")
	require.NoError(t, err)
	assert.Error(t, j.Handle(context.Background()))
}

func TestSendMailThroughQueue(t *testing.T) {
	m := &recordingMailer{done: make(chan struct{}, 1)}
	q := queue.New(queue.NewMemoryDriver(10))
	jobs.Register(q, m)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go q.Work(ctx, 1)

	j, err := jobs.Welcome("a@b.io")
	require.NoError(t, err)
	require.NoError(t, q.Dispatch(ctx, j))

	select {
	case <-m.done:
	case <-time.After(2 * time.Second):
		t.Fatal("mail job never ran")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	require.Len(t, m.sent, 1)
	assert.Equal(t, "Signup succeeded!", m.sent[0].Subject)
}
