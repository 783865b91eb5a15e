package listeners_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/app/jobs"
	"github.com/shashiranjanraj/storefront/app/listeners"
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/queue"
)

type feed struct{ items []any }

func (f *feed) BroadcastJSON(v any) error {
	f.items = append(f.items, v)
	return nil
}

type dispatcher struct {
	jobs []queue.Job
	err  error
}

func (d *dispatcher) Dispatch(_ context.Context, j queue.Job) error {
	if d.err != nil {
		return d.err
	}
	d.jobs = append(d.jobs, j)
	return nil
}

func placed() services.OrderPlaced {
	return services.OrderPlaced{
		Email: "jane@example.com",
		Order: models.Order{
			ID:   "o-1",
			User: models.OrderUser{Name: "Jane", UserID: "u1"},
			Products: []models.OrderLine{
				{Product: models.ProductSnapshot{ID: "A", Title: "Alpha", Price: "10.00"}, Quantity: 2},
				{Product: models.ProductSnapshot{ID: "B", Title: "Beta", Price: "5.50"}, Quantity: 1},
			},
			CreatedAt: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		},
	}
}

func TestOrderPlacedListener(t *testing.T) {
	f, d := &feed{}, &dispatcher{}
	bus := event.New(nil)
	listeners.Register(bus, f, d)

	bus.Fire(context.Background(), services.EventOrderPlaced, placed())

	require.Len(t, f.items, 1)
	item := f.items[0].(listeners.OrderFeedItem)
	assert.Equal(t, "o-1", item.OrderID)
	assert.Equal(t, 3, item.Items)
	assert.Equal(t, "25.50", item.Total)

	require.Len(t, d.jobs, 1)
	mail := d.jobs[0].(*jobs.SendMail)
	assert.Equal(t, []string{"jane@example.com"}, mail.To)
	assert.Contains(t, mail.HTML, "$25.50")
}

func TestOrderPlacedListenerToleratesFailures(t *testing.T) {
	f, d := &feed{}, &dispatcher{err: errors.New("queue full")}
	handler := listeners.OrderPlaced(f, d)

	assert.NotPanics(t, func() {
		handler(context.Background(), placed())
		handler(context.Background(), "not an order")
	})
	assert.Len(t, f.items, 1)
}

func TestOrderPlacedListenerWithoutCollaborators(t *testing.T) {
	handler := listeners.OrderPlaced(nil, nil)
	assert.NotPanics(t, func() { handler(context.Background(), placed()) })
}
