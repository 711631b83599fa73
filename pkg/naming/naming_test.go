package naming

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnakeCase(t *testing.T) {
	cases := map[string]string{
		"AccountId":              "account_id",
		"accountId":              "account_id",
		"phoneNumbers":           "phone_numbers",
		"SubscriptionExpiration": "subscription_expiration",
		"name":                   "name",
		"Salt1":                  "salt1",
		"URL":                    "u_r_l",
		"":                       "",
	}

	for in, want := range cases {
		assert.Equal(t, want, SnakeCase(in), "input %q", in)
	}
}

func TestSnakeCaseSeparatorCountMatchesWordBoundaries(t *testing.T) {
	words := []string{"Device", "Message", "Conversation", "Draft", "Scheduled", "Blacklist", "Contact"}

	for n := 1; n <= len(words); n++ {
		joined := strings.Join(words[:n], "")
		got := SnakeCase(joined)

		assert.Equal(t, n-1, strings.Count(got, "_"), "input %q", joined)
		assert.Equal(t, strings.ToLower(got), got)
		assert.Equal(t, strings.ToLower(strings.Join(words[:n], "_")), got)
	}
}

func TestSeparateCamelCaseCustomSeparator(t *testing.T) {
	assert.Equal(t, "real-Name", SeparateCamelCase("realName", "-"))
	assert.Equal(t, "Real Name", SeparateCamelCase("RealName", " "))
}
