package stream

import (
	"net/url"

	"github.com/kapu/messenger-api-go/internal/domain"
)

type EventType string

const (
	EventConversationAdded   EventType = "added_conversation"
	EventConversationUpdated EventType = "updated_conversation"
	EventConversationRemoved EventType = "removed_conversation"
)

// Event is one push message. Keys on the wire are snake_case.
type Event struct {
	Type          EventType
	AccountId     string
	Conversations []domain.Conversation
}

type State string

const (
	StateConnecting   State = "CONNECTING"
	StateConnected    State = "CONNECTED"
	StateDisconnected State = "DISCONNECTED"
	StateReconnecting State = "RECONNECTING"
	StateFailed       State = "FAILED"
)

func (s State) String() string {
	return string(s)
}

// URL appends the account_id query parameter the stream endpoint requires.
func URL(base, accountID string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("account_id", accountID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
