// Package notification decides which quick actions a conversation
// notification offers on the phone and on a paired wearable.
package notification

import (
	"strings"

	"github.com/kapu/messenger-api-go/internal/domain"
	"github.com/kapu/messenger-api-go/internal/session"
	"github.com/kapu/messenger-api-go/internal/util"
	"github.com/kapu/messenger-api-go/pkg/errors"
)

type Action string

const (
	Reply  Action = "reply"
	Call   Action = "call"
	Delete Action = "delete"
	Read   Action = "read"
)

// Settings is the set of actions the user enabled for the phone notification.
type Settings map[Action]bool

func NewSettings(actions ...Action) Settings {
	s := make(Settings, len(actions))
	for _, a := range actions {
		s[a] = true
	}
	return s
}

// ParseSettings reads a comma separated list such as "reply,read".
// Blank entries are skipped.
func ParseSettings(raw string) (Settings, error) {
	s := Settings{}
	for _, part := range strings.Split(raw, ",") {
		name := util.Normalize(part)
		if name == "" {
			continue
		}
		switch Action(name) {
		case Reply, Call, Delete, Read:
			s[Action(name)] = true
		default:
			return nil, errors.NewValidationError("unknown notification action", "notification_actions", name)
		}
	}
	return s, nil
}

func (s Settings) Enabled(a Action) bool {
	return s[a]
}

// Plan lists the actions in the order they are attached.
type Plan struct {
	Notification []Action
	Wearable     []Action
}

// Plan works out the actions for conv. account is the signed-in account, or
// nil when the device is not signed in.
func (s Settings) Plan(conv domain.Conversation, account *session.Account) Plan {
	var plan Plan

	if !conv.Private && s.Enabled(Reply) {
		plan.Notification = append(plan.Notification, Reply)
	}
	plan.Wearable = append(plan.Wearable, Reply)

	// Calls are placed from the phone that owns the number.
	if !conv.Group && s.Enabled(Call) && (account == nil || account.IsPrimary()) {
		plan.Notification = append(plan.Notification, Call)
	}

	if s.Enabled(Delete) {
		plan.Notification = append(plan.Notification, Delete)
	}
	if s.Enabled(Read) {
		plan.Notification = append(plan.Notification, Read)
	}
	plan.Wearable = append(plan.Wearable, Read, Delete)

	return plan
}
