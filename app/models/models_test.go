package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCartAddTwiceIncrements(t *testing.T) {
	var c Cart
	c.Add("a")
	c.Add("a")
	c.Add("b")

	assert.Equal(t, []CartItem{{ProductID: "a", Quantity: 2}, {ProductID: "b", Quantity: 1}}, c.Items)
	assert.Equal(t, 3, c.Count())
	assert.Equal(t, []string{"a", "b"}, c.ProductIDs())
}

func TestCartRemoveAbsentIsNoop(t *testing.T) {
	c := Cart{Items: []CartItem{{ProductID: "a", Quantity: 1}}}

	assert.False(t, c.Remove("zzz"))
	assert.Len(t, c.Items, 1)

	assert.True(t, c.Remove("a"))
	assert.True(t, c.IsEmpty())
}

func TestCartClear(t *testing.T) {
	c := Cart{Items: []CartItem{{ProductID: "a", Quantity: 4}}}
	c.Clear()

	assert.NotNil(t, c.Items)
	assert.True(t, c.IsEmpty())
}

func TestOrderTotal(t *testing.T) {
	o := Order{Products: []OrderLine{
		{Product: ProductSnapshot{ID: "A", Price: "10.00"}, Quantity: 2},
		{Product: ProductSnapshot{ID: "B", Price: "5.50"}, Quantity: 1},
	}}

	assert.Equal(t, "25.5", o.Total().String())
	assert.Equal(t, "20", o.Products[0].Total().String())
}

func TestOrderOwnedBy(t *testing.T) {
	o := Order{User: OrderUser{Name: "x", UserID: "u1"}}
	assert.True(t, o.OwnedBy("u1"))
	assert.False(t, o.OwnedBy("u2"))
	assert.False(t, o.OwnedBy(""))
}

func TestSnapshotIsACopy(t *testing.T) {
	p := Product{ID: "p1", Title: "Book", Price: "9.99"}
	snap := p.Snapshot()
	p.Title = "Renamed"
	p.Price = "1.00"

	assert.Equal(t, "Book", snap.Title)
	assert.Equal(t, "9.99", snap.Price)
}

func TestResetTokenValid(t *testing.T) {
	now := time.Now()
	later := now.Add(10 * time.Minute)
	u := User{ResetToken: "tok", ResetTokenExpires: &later}

	assert.True(t, u.ResetTokenValid("tok", now))
	assert.False(t, u.ResetTokenValid("other", now))
	assert.False(t, u.ResetTokenValid("tok", later.Add(time.Second)))
	assert.False(t, User{}.ResetTokenValid("", now))
}

func TestDisplayNameFallsBackToEmail(t *testing.T) {
	assert.Equal(t, "a@b.io", User{Email: "a@b.io"}.DisplayName())
	assert.Equal(t, "Ann", User{Name: "Ann", Email: "a@b.io"}.DisplayName())
}
