package backend

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

const (
	chatRoomsPath   = "/api/chat/rooms/"
	chatHistoryPath = "/api/user/history/"
	chatSendPath    = "/api/chat/send"
)

// Room is a conversation between two users. Its name joins both user ids with "_".
type Room struct {
	Room        string `json:"room"`
	User        Ref    `json:"user"`
	LastMessage string `json:"lastMessage"`
}

type Message struct {
	ID        string `json:"_id"`
	Sender    Ref    `json:"sender"`
	Recipient Ref    `json:"recipient"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type roomsResponse struct {
	Rooms []any `json:"rooms"`
}

// Peer returns the id of the other participant of the room.
func (r *Room) Peer(userID string) string {
	parts := strings.SplitN(r.Room, "_", 2)
	if len(parts) != 2 {
		return r.User.ID
	}
	if parts[0] == userID {
		return parts[1]
	}
	return parts[0]
}

func (c *Client) GetRooms(ctx context.Context, userID string) ([]*Room, error) {
	id, err := pathID(userID)
	if err != nil {
		return nil, err
	}

	var resp roomsResponse
	if err := c.doJSON(ctx, http.MethodGet, chatRoomsPath+id, nil, &resp); err != nil {
		return nil, err
	}

	var rooms []*Room
	if err := decodeItems(resp.Rooms, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

func (c *Client) GetHistory(ctx context.Context, recipientID string) ([]*Message, error) {
	id, err := pathID(recipientID)
	if err != nil {
		return nil, err
	}

	var messages []*Message
	if err := c.getItems(ctx, chatHistoryPath+id, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (c *Client) SendMessage(ctx context.Context, recipientID, message string) error {
	recipientID = strings.TrimSpace(recipientID)
	if recipientID == "" {
		return fmt.Errorf("recipient id is required")
	}
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("message is empty")
	}

	body := map[string]string{
		"recipientId": recipientID,
		"message":     message,
	}
	return c.doJSON(ctx, http.MethodPost, chatSendPath, body, nil)
}
