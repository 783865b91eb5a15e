package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/storefront/pkg/ctx"
)

// Upgrader attaches a websocket client to the live order feed.
type Upgrader interface {
	Upgrade(w http.ResponseWriter, r *http.Request)
}

type FeedController struct {
	hub Upgrader
}

func NewFeedController(hub Upgrader) *FeedController {
	return &FeedController{hub: hub}
}

// Orders handles GET /ws/orders.
func (h *FeedController) Orders(c *ctx.Context) {
	h.hub.Upgrade(c.W, c.R)
}
