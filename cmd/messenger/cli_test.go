package main

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/kapu/messenger-api-go/internal/api"
	"github.com/kapu/messenger-api-go/internal/app"
	"github.com/kapu/messenger-api-go/internal/config"
	"github.com/kapu/messenger-api-go/internal/contact"
	"github.com/kapu/messenger-api-go/internal/service/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var conversationColumns = []string{
	"id", "title", "phone_numbers", "image_uri", "color", "mute", "private_notifications", "is_group",
}

type harness struct {
	cli  *cli
	mr   *miniredis.Miniredis
	mock sqlmock.Sqlmock
}

func newHarness(t *testing.T, handler http.HandlerFunc) *harness {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	mr := miniredis.RunT(t)
	cfg := testConfig(t, srv.URL, mr)

	logger := zap.NewNop()
	container, err := app.Build(context.Background(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(container.Close)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	container.Conversations = contact.NewConversationRepository(database.NewPostgresServiceWithDB(db, logger), logger)

	return &harness{
		cli:  &cli{cfg: cfg, logger: logger, container: container},
		mr:   mr,
		mock: mock,
	}
}

func testConfig(t *testing.T, apiURL string, mr *miniredis.Miniredis) *config.Config {
	t.Helper()

	host, portStr, err := net.SplitHostPort(mr.Addr())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	return &config.Config{
		API: config.APIConfig{
			Environment: api.Staging,
			BaseURL:     apiURL + "/api/v1/",
			Timeout:     time.Second,
		},
		Stream:       config.StreamConfig{URL: "ws://localhost:0/api/v1/stream"},
		Redis:        config.RedisConfig{Host: host, Port: port},
		Session:      config.SessionConfig{TTL: time.Hour},
		Notification: config.NotificationConfig{Actions: "reply,call,read"},
	}
}

func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(h.cli)
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func loginHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/accounts/login":
			_, _ = io.WriteString(w, `{"account_id":"acc-1","salt1":"a","salt2":"b","name":"jane@example.com"}`)
		case "/api/v1/accounts/count":
			assert.Equal(t, "acc-1", r.URL.Query().Get("account_id"))
			_, _ = io.WriteString(w, `{"device_count":2,"message_count":40}`)
		case "/api/v1/accounts/remove_account":
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func TestLoginCountLogout(t *testing.T) {
	h := newHarness(t, loginHandler(t))

	_, err := h.run(t, "count")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not signed in")

	out, err := h.run(t, "login", "--email", "jane@example.com", "--password", "secret")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as jane@example.com (account acc-1)")

	out, err = h.run(t, "whoami")
	require.NoError(t, err)
	assert.Regexp(t, `account\s+acc-1`, out)
	assert.Regexp(t, `primary\s+false`, out)
	assert.Regexp(t, `expires in\s+1h0m0s`, out)

	out, err = h.run(t, "count")
	require.NoError(t, err)
	assert.Contains(t, out, "devices")
	assert.Contains(t, out, "40")

	out, err = h.run(t, "logout", "--remove")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out")

	_, err = h.run(t, "count")
	assert.Error(t, err)

	out, err = h.run(t, "whoami")
	require.NoError(t, err)
	assert.Equal(t, "Not signed in\n", out)
}

func TestLoginValidation(t *testing.T) {
	h := newHarness(t, loginHandler(t))

	_, err := h.run(t, "login", "--email", "jane@example.com")
	assert.Error(t, err)
}

func TestFlagsSetAndList(t *testing.T) {
	h := newHarness(t, loginHandler(t))

	out, err := h.run(t, "flags", "set", "flag_quick_compose", "true")
	require.NoError(t, err)
	assert.Equal(t, "flag_quick_compose=true\n", out)
	assert.Equal(t, "true", h.mr.HGet("messenger:feature_flags", "flag_quick_compose"))

	out, err = h.run(t, "flags", "list")
	require.NoError(t, err)
	assert.Regexp(t, `flag_quick_compose\s+true`, out)
	assert.Regexp(t, `flag_secure_private\s+false`, out)

	_, err = h.run(t, "flags", "set", "flag_unknown", "true")
	assert.Error(t, err)
}

func TestContactsListAndSelect(t *testing.T) {
	h := newHarness(t, loginHandler(t))

	rows := func() *sqlmock.Rows {
		return sqlmock.NewRows(conversationColumns).
			AddRow(1, "Jane Doe", "5551234", "content://jane", nil, false, false, false).
			AddRow(2, "Team", "5551,5552", "content://team", nil, false, false, true).
			AddRow(3, "Madonna", "5559999", "content://madonna", nil, false, false, false)
	}

	h.mock.ExpectQuery(`WHERE phone_numbers NOT LIKE`).WillReturnRows(rows())
	out, err := h.run(t, "contacts")
	require.NoError(t, err)
	assert.Contains(t, out, "Jane Doe")
	assert.Contains(t, out, "Madonna")
	assert.NotContains(t, out, "Team")

	h.mock.ExpectQuery(`FROM conversation`).WillReturnRows(rows())
	out, err = h.run(t, "contacts", "--select", "1")
	require.NoError(t, err)
	assert.Equal(t, "first=\"Madonna\" last=\"\" phone=\"5559999\"\n", out)

	h.mock.ExpectQuery(`FROM conversation`).WillReturnRows(rows())
	_, err = h.run(t, "contacts", "--select", "5")
	assert.Error(t, err)

	assert.NoError(t, h.mock.ExpectationsWereMet())
}

func TestContactsDisabledByFlag(t *testing.T) {
	h := newHarness(t, loginHandler(t))

	_, err := h.run(t, "flags", "set", "flag_attach_contact", "false")
	require.NoError(t, err)

	_, err = h.run(t, "contacts")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disabled")
}

func TestActions(t *testing.T) {
	h := newHarness(t, loginHandler(t))

	h.mock.ExpectQuery(`WHERE id = \$1`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(conversationColumns).
			AddRow(7, "Jane Doe", "5551234", nil, nil, false, false, false))

	out, err := h.run(t, "actions", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "notification: reply,call,read")
	assert.Contains(t, out, "wearable: reply,read,delete")

	_, err = h.run(t, "actions", "abc")
	assert.Error(t, err)
}

func TestProducts(t *testing.T) {
	h := newHarness(t, loginHandler(t))

	out, err := h.run(t, "products")
	require.NoError(t, err)
	assert.Contains(t, out, "subscriber_yearly")
	assert.Contains(t, out, "lifetime")

	_, err = h.run(t, "subscribe", "nope")
	assert.Error(t, err)
}

func TestExecuteClosesServicesWhenCommandFails(t *testing.T) {
	srv := httptest.NewServer(loginHandler(t))
	t.Cleanup(srv.Close)
	mr := miniredis.RunT(t)

	c := &cli{cfg: testConfig(t, srv.URL, mr), logger: zap.NewNop()}

	err := execute(context.Background(), c, []string{"count"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not signed in")

	assert.Nil(t, c.container)
	assert.Eventually(t, func() bool {
		return mr.CurrentConnectionCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}
