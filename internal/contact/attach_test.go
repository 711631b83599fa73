package contact

import (
	"testing"

	"github.com/kapu/messenger-api-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type attached struct {
	first, last, phone string
}

type recordingListener struct {
	calls []attached
}

func (r *recordingListener) OnContactAttached(first, last, phone string) {
	r.calls = append(r.calls, attached{first, last, phone})
}

func sampleCandidates() []domain.Conversation {
	return []domain.Conversation{
		{ID: 1, Title: "Jane Doe", PhoneNumbers: "555-1234", ImageURI: "http://x/y.png"},
		{ID: 2, Title: "Group", PhoneNumbers: "555-1,555-2", ImageURI: "http://x/y.png"},
		{ID: 3, Title: "No Pic", PhoneNumbers: "555-3", ImageURI: ""},
		{ID: 4, Title: "Madonna", PhoneNumbers: "555-4", ImageURI: "content://contacts/4"},
	}
}

func TestSetContactsFiltersAndKeepsOrder(t *testing.T) {
	list := NewAttachList(nil)
	list.SetContacts(sampleCandidates())

	require.Equal(t, 2, list.Count())
	contacts := list.Contacts()
	assert.Equal(t, int64(1), contacts[0].ID)
	assert.Equal(t, int64(4), contacts[1].ID)

	for _, c := range contacts {
		assert.True(t, Attachable(c))
	}
}

func TestSetContactsAccumulates(t *testing.T) {
	list := NewAttachList(nil)
	list.SetContacts(sampleCandidates())
	list.SetContacts(sampleCandidates()[:1])

	assert.Equal(t, 3, list.Count())

	list.Reset()
	assert.Equal(t, 0, list.Count())
}

func TestSetContactsNotifiesObservers(t *testing.T) {
	list := NewAttachList(nil)

	var notified int
	unsubscribe := list.OnChanged(func() { notified++ })

	list.SetContacts(sampleCandidates())
	list.SetContacts(nil)
	assert.Equal(t, 2, notified)

	unsubscribe()
	list.SetContacts(sampleCandidates())
	assert.Equal(t, 2, notified)
}

func TestRowExposesNameAndAvatar(t *testing.T) {
	list := NewAttachList(nil)
	list.SetContacts(sampleCandidates())

	row, ok := list.Row(0)
	require.True(t, ok)
	assert.Equal(t, Row{Name: "Jane Doe", ImageURI: "http://x/y.png"}, row)

	_, ok = list.Row(2)
	assert.False(t, ok)
	_, ok = list.Row(-1)
	assert.False(t, ok)
}

func TestSelectInvokesListener(t *testing.T) {
	listener := &recordingListener{}
	list := NewAttachList(listener)
	list.SetContacts(sampleCandidates())

	require.True(t, list.Select(0))
	require.True(t, list.Select(1))
	assert.False(t, list.Select(5))

	assert.Equal(t, []attached{
		{"Jane", "Doe", "555-1234"},
		{"Madonna", "", "555-4"},
	}, listener.calls)
}

func TestSelectWithoutListener(t *testing.T) {
	list := NewAttachList(nil)
	list.SetContacts(sampleCandidates())

	assert.True(t, list.Select(0))
}

func TestAttachListenerFunc(t *testing.T) {
	var got attached
	list := NewAttachList(AttachListenerFunc(func(first, last, phone string) {
		got = attached{first, last, phone}
	}))
	list.SetContacts([]domain.Conversation{
		{Title: "Mary Jane Watson", PhoneNumbers: "555-9", ImageURI: "http://x/m.png"},
	})

	list.Select(0)
	assert.Equal(t, attached{"Mary", "Jane", "555-9"}, got)
}

func TestSplitName(t *testing.T) {
	cases := []struct {
		in          string
		first, last string
	}{
		{"Jane Doe", "Jane", "Doe"},
		{"Madonna", "Madonna", ""},
		{"", "", ""},
		{"Mary Jane Watson", "Mary", "Jane"},
		{" Leading", "", "Leading"},
	}

	for _, tc := range cases {
		first, last := SplitName(tc.in)
		assert.Equal(t, tc.first, first, "input %q", tc.in)
		assert.Equal(t, tc.last, last, "input %q", tc.in)
	}
}
