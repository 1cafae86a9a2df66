package backend

import (
	"context"
	"net/http"
	"time"

	"github.com/reusemart/reusemart-mobile/internal/domain/market"
)

// NotificationClient serves in-app notifications.
type NotificationClient struct {
	*Client
}

// NewNotificationClient creates the notifications area client.
func NewNotificationClient(baseURL string, tokens TokenSource, opts ...Option) *NotificationClient {
	return &NotificationClient{New(AreaNotifications, baseURL, tokens, opts...)}
}

type notificationWire struct {
	ID           num   `json:"id"`
	Title        text  `json:"title"`
	Message      text  `json:"message"`
	IsRead       flag  `json:"isRead"`
	IsReadAlt    flag  `json:"is_read"`
	CreatedAt    stamp `json:"createdAt"`
	CreatedAtAlt stamp `json:"created_at"`
	ProductID    num   `json:"productId"`
	ProductIDAlt num   `json:"product_id"`
}

// List returns the user's notifications, newest first.
func (n *NotificationClient) List(ctx context.Context) ([]market.Notification, error) {
	r := request{method: http.MethodGet, path: "/notifications"}
	var ws list[notificationWire]
	if err := n.call(ctx, r, &ws); err != nil {
		return nil, err
	}
	out := make([]market.Notification, 0, len(ws))
	for _, w := range ws {
		out = append(out, market.Notification{
			ID:        int(w.ID),
			Title:     string(w.Title),
			Message:   string(w.Message),
			Read:      bool(w.IsRead || w.IsReadAlt),
			CreatedAt: firstStamp(w.CreatedAt, w.CreatedAtAlt),
			ProductID: firstNum(w.ProductID, w.ProductIDAlt),
		})
	}
	if err := check(n.Client, r, out...); err != nil {
		return nil, err
	}
	market.NewestFirst(out, func(x market.Notification) time.Time { return x.CreatedAt })
	return out, nil
}

// UnreadCount returns the number of unread notifications.
func (n *NotificationClient) UnreadCount(ctx context.Context) (int, error) {
	r := request{method: http.MethodGet, path: "/notifications/unread-count"}
	var w struct {
		Count num `json:"count"`
	}
	if err := n.call(ctx, r, &w); err != nil {
		return 0, err
	}
	return int(w.Count), nil
}

// MarkRead marks one notification as read.
func (n *NotificationClient) MarkRead(ctx context.Context, id int) error {
	r := request{method: http.MethodPatch, path: pathf("/notifications/%d/read", id)}
	return n.call(ctx, r, nil)
}
