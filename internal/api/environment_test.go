package api

import (
	stderrors "errors"
	"testing"

	"github.com/kapu/messenger-api-go/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEnvironmentBaseURL(t *testing.T) {
	want := map[Environment]string{
		Debug:   "http://192.168.1.127:3000/api/v1/",
		Staging: "https://fast-thicket-30117.herokuapp.com/api/v1/",
		Release: "https://agile-harbor-47425.herokuapp.com/api/v1/",
	}

	for _, env := range Environments() {
		assert.Equal(t, want[env], env.BaseURL(), "environment %s", env)
		for other, url := range want {
			if other != env {
				assert.NotEqual(t, url, env.BaseURL())
			}
		}
	}
}

func TestNewBindsEnvironment(t *testing.T) {
	for _, env := range Environments() {
		c := New(env, zap.NewNop())
		assert.Equal(t, env, c.Environment())
		assert.Equal(t, env.BaseURL(), c.BaseURL())
		assert.NotNil(t, c.Account())
	}
}

func TestParseEnvironment(t *testing.T) {
	cases := map[string]Environment{
		"debug":     Debug,
		" Staging ": Staging,
		"RELEASE":   Release,
	}
	for in, want := range cases {
		got, err := ParseEnvironment(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, want, mustParse(t, got.String()))
	}

	_, err := ParseEnvironment("prod")
	var validationErr *errors.ValidationError
	require.True(t, stderrors.As(err, &validationErr))
	assert.Equal(t, "environment", validationErr.Field)
}

func mustParse(t *testing.T, s string) Environment {
	t.Helper()
	env, err := ParseEnvironment(s)
	require.NoError(t, err)
	return env
}
