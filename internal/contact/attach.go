// Package contact selects conversations that can be attached to a message as
// a contact card.
package contact

import (
	"strings"
	"sync"

	"github.com/kapu/messenger-api-go/internal/domain"
	"github.com/samber/lo"
)

// AttachListener receives the contact picked from an AttachList.
type AttachListener interface {
	OnContactAttached(firstName, lastName, phone string)
}

// AttachListenerFunc adapts a function to AttachListener.
type AttachListenerFunc func(firstName, lastName, phone string)

func (f AttachListenerFunc) OnContactAttached(firstName, lastName, phone string) {
	f(firstName, lastName, phone)
}

// Row is what a list row shows.
type Row struct {
	Name     string
	ImageURI string
}

type observerEntry struct {
	id       int
	callback func()
}

// AttachList holds the attachable conversations in arrival order. It only
// ever contains conversations with exactly one phone number and an avatar.
type AttachList struct {
	mu             sync.RWMutex
	contacts       []domain.Conversation
	listener       AttachListener
	observers      []observerEntry
	nextObserverID int
}

// NewAttachList creates an empty list. listener may be nil, in which case
// Select does nothing.
func NewAttachList(listener AttachListener) *AttachList {
	return &AttachList{
		contacts:       make([]domain.Conversation, 0),
		listener:       listener,
		observers:      make([]observerEntry, 0),
		nextObserverID: 1,
	}
}

// Attachable reports whether c may appear in an AttachList.
func Attachable(c domain.Conversation) bool {
	return c.HasSinglePhoneNumber() && c.HasImage()
}

// SetContacts appends the attachable candidates, keeping their order.
// Earlier contents are kept, so repeated calls accumulate; use Reset first to
// replace the list. Observers are notified once per call.
func (l *AttachList) SetContacts(candidates []domain.Conversation) {
	accepted := lo.Filter(candidates, func(c domain.Conversation, _ int) bool {
		return Attachable(c)
	})

	l.mu.Lock()
	l.contacts = append(l.contacts, accepted...)
	l.mu.Unlock()

	l.notifyChanged()
}

// Reset empties the list and notifies observers.
func (l *AttachList) Reset() {
	l.mu.Lock()
	l.contacts = make([]domain.Conversation, 0)
	l.mu.Unlock()

	l.notifyChanged()
}

func (l *AttachList) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.contacts)
}

// Contacts returns a copy of the current list.
func (l *AttachList) Contacts() []domain.Conversation {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.Conversation, len(l.contacts))
	copy(out, l.contacts)
	return out
}

func (l *AttachList) Row(position int) (Row, bool) {
	contact, ok := l.at(position)
	if !ok {
		return Row{}, false
	}
	return Row{Name: contact.Title, ImageURI: contact.ImageURI}, true
}

// Select is the tap on a row: the title is split into first and last name
// and handed to the listener together with the phone number. It returns false
// when position is out of range.
func (l *AttachList) Select(position int) bool {
	contact, ok := l.at(position)
	if !ok {
		return false
	}
	if l.listener == nil {
		return true
	}

	firstName, lastName := SplitName(contact.Title)
	l.listener.OnContactAttached(firstName, lastName, contact.PhoneNumbers)
	return true
}

// OnChanged registers an observer for list changes and returns a function
// that removes it.
func (l *AttachList) OnChanged(callback func()) func() {
	l.mu.Lock()
	id := l.nextObserverID
	l.nextObserverID++
	l.observers = append(l.observers, observerEntry{id: id, callback: callback})
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		for i, entry := range l.observers {
			if entry.id == id {
				l.observers = append(l.observers[:i], l.observers[i+1:]...)
				break
			}
		}
	}
}

func (l *AttachList) at(position int) (domain.Conversation, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if position < 0 || position >= len(l.contacts) {
		return domain.Conversation{}, false
	}
	return l.contacts[position], true
}

func (l *AttachList) notifyChanged() {
	l.mu.RLock()
	observers := make([]observerEntry, len(l.observers))
	copy(observers, l.observers)
	l.mu.RUnlock()

	for _, entry := range observers {
		entry.callback()
	}
}

// SplitName splits a display name on single spaces. Only the first two
// tokens are used; a single token is a first name with no last name.
func SplitName(name string) (firstName, lastName string) {
	parts := strings.Split(name, " ")
	firstName = parts[0]
	if len(parts) > 1 {
		lastName = parts[1]
	}
	return firstName, lastName
}
