package domain

import "strings"

// Conversation is a thread with one or more recipients. A conversation with a
// single recipient doubles as a contact record.
type Conversation struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	PhoneNumbers string `json:"phone_numbers"`
	ImageURI     string `json:"image_uri,omitempty"`
	Color        int    `json:"color,omitempty"`
	Mute         bool   `json:"mute,omitempty"`
	Private      bool   `json:"private_notifications,omitempty"`
	Group        bool   `json:"is_group,omitempty"`
}

// PhoneNumberList splits the comma-joined PhoneNumbers, trimming blanks.
func (c *Conversation) PhoneNumberList() []string {
	if c.PhoneNumbers == "" {
		return []string{}
	}
	parts := strings.Split(c.PhoneNumbers, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func (c *Conversation) HasSinglePhoneNumber() bool {
	return !strings.Contains(c.PhoneNumbers, ",")
}

func (c *Conversation) HasImage() bool {
	return c.ImageURI != ""
}
