package backend

import (
	"context"
	"net/http"
)

const (
	notificationsPath    = "/api/notification"
	notificationReadPath = "/api/notification/read/"
	notificationsAllPath = "/api/notification/mark-as-read"
)

type Notifications struct {
	Items []*Notification
}

type Notification struct {
	ID        string `json:"_id"`
	Message   string `json:"message"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"createdAt"`
}

func (c *Client) GetNotifications(ctx context.Context) (*Notifications, error) {
	var items []*Notification
	if err := c.getItems(ctx, notificationsPath, &items); err != nil {
		return nil, err
	}
	return &Notifications{Items: items}, nil
}

func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	id, err := pathID(id)
	if err != nil {
		return err
	}
	return c.doJSON(ctx, http.MethodPut, notificationReadPath+id, nil, nil)
}

func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPut, notificationsAllPath, nil, nil)
}

func (n *Notifications) Len() int {
	return len(n.Items)
}

// Unread counts notifications not yet marked as read.
func (n *Notifications) Unread() int {
	count := 0
	for _, item := range n.Items {
		if !item.Read {
			count++
		}
	}
	return count
}

// MarkRead flips the local copy after a successful MarkNotificationRead call.
func (n *Notifications) MarkRead(id string) {
	for _, item := range n.Items {
		if item.ID == id {
			item.Read = true
		}
	}
}

func (n *Notifications) MarkAllRead() {
	for _, item := range n.Items {
		item.Read = true
	}
}

// Since returns the notifications whose ids are not in seen.
func (n *Notifications) Since(seen map[string]bool) []*Notification {
	fresh := make([]*Notification, 0)
	for _, item := range n.Items {
		if !seen[item.ID] {
			fresh = append(fresh, item)
		}
	}
	return fresh
}
