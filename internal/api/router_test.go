package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/postboard/postboard-be/internal/database"
	"github.com/postboard/postboard-be/internal/models"
	"github.com/postboard/postboard-be/internal/monitoring"
	"github.com/postboard/postboard-be/internal/services"
	"github.com/postboard/postboard-be/internal/websocket"
)

type testApp struct {
	server  *httptest.Server
	monitor *monitoring.HealthMonitor
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	ctx := context.Background()

	store, err := database.OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)

	hub := websocket.NewHub()
	go hub.Run()

	events := services.NewEventService(hub)
	users := services.NewResourceService("user", database.UsersCollection, store.Users, events)
	posts := services.NewResourceService("post", database.PostsCollection, store.Posts, events)

	monitor, err := monitoring.NewHealthMonitor(store, store.Driver(), "@every 1h")
	require.NoError(t, err)

	srv := httptest.NewServer(NewRouter([]string{"*"}, hub, users, posts, monitor))
	t.Cleanup(func() {
		srv.Close()
		hub.Stop()
		_ = store.Close(ctx)
	})
	return &testApp{server: srv, monitor: monitor}
}

func (a *testApp) do(t *testing.T, method, path, body string) (int, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, a.server.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := a.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func TestUserLifecycle(t *testing.T) {
	app := newTestApp(t)

	status, body := app.do(t, http.MethodPost, "/users", `{"username":"alice"}`)
	require.Equal(t, http.StatusCreated, status)
	var alice models.User
	require.NoError(t, json.Unmarshal(body, &alice))
	assert.False(t, alice.ID.IsZero())
	assert.Equal(t, "alice", alice.Username)
	id := alice.ID.Hex()

	status, body = app.do(t, http.MethodGet, "/users", "")
	require.Equal(t, http.StatusOK, status)
	var list []models.User
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Contains(t, list, alice)

	for i := 0; i < 2; i++ {
		status, body = app.do(t, http.MethodPut, "/users/"+id, `{"username":"bob"}`)
		assert.Equal(t, http.StatusOK, status, "update attempt %d", i+1)
		assert.JSONEq(t, `{"message":"User updated"}`, string(body))
	}

	status, body = app.do(t, http.MethodGet, "/users/"+id, "")
	require.Equal(t, http.StatusOK, status)
	var bob models.User
	require.NoError(t, json.Unmarshal(body, &bob))
	assert.Equal(t, models.User{ID: alice.ID, Username: "bob"}, bob)

	status, _ = app.do(t, http.MethodDelete, "/users/"+id, "")
	assert.Equal(t, http.StatusOK, status)
	status, _ = app.do(t, http.MethodDelete, "/users/"+id, "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestClientChosenIDIsIgnored(t *testing.T) {
	app := newTestApp(t)

	status, body := app.do(t, http.MethodPost, "/users", `{"id":"client-chosen","username":"a"}`)
	require.Equal(t, http.StatusCreated, status, string(body))
	var created models.User
	require.NoError(t, json.Unmarshal(body, &created))
	assert.False(t, created.ID.IsZero())
	assert.Equal(t, "a", created.Username)

	status, body = app.do(t, http.MethodPut, "/users/"+created.ID.Hex(), `{"id":"bad","username":"b"}`)
	require.Equal(t, http.StatusOK, status, string(body))

	status, body = app.do(t, http.MethodGet, "/users/"+created.ID.Hex(), "")
	require.Equal(t, http.StatusOK, status)
	var got models.User
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, models.User{ID: created.ID, Username: "b"}, got)
}

func TestPostRoundTrip(t *testing.T) {
	app := newTestApp(t)

	ids := map[primitive.ObjectID]bool{}
	for i := 0; i < 3; i++ {
		status, body := app.do(t, http.MethodPost, "/posts", `{"title":"T","content":"C","author":"A"}`)
		require.Equal(t, http.StatusCreated, status)

		var created models.Post
		require.NoError(t, json.Unmarshal(body, &created))
		assert.False(t, ids[created.ID])
		ids[created.ID] = true

		status, body = app.do(t, http.MethodGet, "/posts/"+created.ID.Hex(), "")
		require.Equal(t, http.StatusOK, status)
		var got models.Post
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, created, got)
	}
}

func TestMalformedAndUnknownIDs(t *testing.T) {
	app := newTestApp(t)
	unknown := primitive.NewObjectID().Hex()

	tests := []struct {
		method, path, body string
		status             int
	}{
		{http.MethodGet, "/posts/not-a-valid-id", "", http.StatusBadRequest},
		{http.MethodPut, "/posts/not-a-valid-id", `{"title":"x"}`, http.StatusBadRequest},
		{http.MethodDelete, "/posts/not-a-valid-id", "", http.StatusBadRequest},
		{http.MethodGet, "/users/12345", "", http.StatusBadRequest},
		{http.MethodGet, "/posts/" + unknown, "", http.StatusNotFound},
		{http.MethodPut, "/posts/" + unknown, `{"title":"x"}`, http.StatusNotFound},
		{http.MethodDelete, "/posts/" + unknown, "", http.StatusNotFound},
		{http.MethodPut, "/users/" + unknown, `{"username":"x"}`, http.StatusNotFound},
		{http.MethodPost, "/users", `{"username":`, http.StatusBadRequest},
	}
	for _, tc := range tests {
		status, _ := app.do(t, tc.method, tc.path, tc.body)
		assert.Equal(t, tc.status, status, "%s %s", tc.method, tc.path)
	}
}

func TestRootListsUsers(t *testing.T) {
	app := newTestApp(t)

	status, body := app.do(t, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(body))
}

func TestHealthz(t *testing.T) {
	app := newTestApp(t)

	status, _ := app.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, status, "no check has run yet")

	app.monitor.Check(context.Background())
	status, body := app.do(t, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, status)

	var snap monitoring.Status
	require.NoError(t, json.Unmarshal(body, &snap))
	assert.Equal(t, monitoring.StatusOK, snap.Status)
	assert.Equal(t, "sqlite", snap.Store)
}

func TestChangeFeed(t *testing.T) {
	app := newTestApp(t)

	url := "ws" + strings.TrimPrefix(app.server.URL, "http") + "/ws/users"
	conn, _, err := gorillaws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() map[string]interface{} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var msg map[string]interface{}
		require.NoError(t, conn.ReadJSON(&msg))
		return msg
	}

	// A pong proves the client is registered with the hub.
	require.NoError(t, conn.WriteJSON(map[string]string{"action": "ping"}))
	assert.Equal(t, "pong", read()["action"])

	status, _ := app.do(t, http.MethodPost, "/posts", `{"title":"ignored by users feed"}`)
	require.Equal(t, http.StatusCreated, status)
	status, body := app.do(t, http.MethodPost, "/users", `{"username":"alice"}`)
	require.Equal(t, http.StatusCreated, status)
	var alice models.User
	require.NoError(t, json.Unmarshal(body, &alice))

	msg := read()
	assert.Equal(t, "event", msg["action"])
	payload, ok := msg["payload"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "user.created", payload["type"])
	assert.Equal(t, alice.ID.Hex(), payload["resourceId"])
}

func TestChangeFeedUnknownTopic(t *testing.T) {
	app := newTestApp(t)

	status, _ := app.do(t, http.MethodGet, "/ws/comments", "")
	assert.Equal(t, http.StatusNotFound, status)
}
