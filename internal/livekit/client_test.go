package livekit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer fakes the Twirp RoomService, recording calls and serving
// canned responses per method name.
func newTestServer(t *testing.T, responses map[string]string) (*httptest.Server, *[]*http.Request, *[]map[string]interface{}) {
	t.Helper()

	var requests []*http.Request
	var bodies []map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		requests = append(requests, r)
		bodies = append(bodies, body)

		method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		resp, ok := responses[method]
		if !ok {
			resp = "{}"
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(resp))
	}))

	return server, &requests, &bodies
}

func TestCreateRoomSendsTwirpRequest(t *testing.T) {
	server, requests, bodies := newTestServer(t, map[string]string{
		"CreateRoom": `{"sid":"RM_x","name":"standup","maxParticipants":10,"numParticipants":0}`,
	})
	defer server.Close()

	client, err := NewRoomClient(testKey, testSecret, server.URL)
	require.NoError(t, err)

	room := client.CreateRoom(context.Background(), "standup", 10)

	require.NotNil(t, room)
	assert.Equal(t, "standup", room.Name)
	assert.Equal(t, 10, room.MaxParticipants)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, "/twirp/livekit.RoomService/CreateRoom", req.URL.Path)
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))

	assert.Equal(t, "standup", (*bodies)[0]["name"])
	assert.Equal(t, float64(10), (*bodies)[0]["maxParticipants"])

	// The bearer credential must be an admin grant signed with the shared
	// secret, carrying only the administrative capability bits.
	authHeader := req.Header.Get("Authorization")
	require.True(t, strings.HasPrefix(authHeader, "Bearer "))

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(strings.TrimPrefix(authHeader, "Bearer "), claims, func(tok *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)

	video := claims["video"].(map[string]interface{})
	assert.Equal(t, true, video["roomCreate"])
	assert.Equal(t, true, video["roomAdmin"])
	assert.NotContains(t, video, "roomJoin")
}

func TestDeleteRoom(t *testing.T) {
	server, requests, bodies := newTestServer(t, nil)
	defer server.Close()

	client, err := NewRoomClient(testKey, testSecret, server.URL)
	require.NoError(t, err)

	ok := client.DeleteRoom(context.Background(), "standup")

	assert.True(t, ok)
	require.Len(t, *requests, 1)
	assert.Equal(t, "/twirp/livekit.RoomService/DeleteRoom", (*requests)[0].URL.Path)
	assert.Equal(t, "standup", (*bodies)[0]["room"])
}

func TestRoomInfoMergesParticipants(t *testing.T) {
	server, _, bodies := newTestServer(t, map[string]string{
		"ListRooms":        `{"rooms":[{"sid":"RM_x","name":"standup","maxParticipants":10,"numParticipants":1}]}`,
		"ListParticipants": `{"participants":[{"identity":"42","name":"alice","metadata":"user_id:42","permission":{"canSubscribe":true,"canPublish":true,"canPublishData":true},"tracks":[{},{}]}]}`,
	})
	defer server.Close()

	client, err := NewRoomClient(testKey, testSecret, server.URL)
	require.NoError(t, err)

	details := client.RoomInfo(context.Background(), "standup")

	require.NotNil(t, details)
	assert.Equal(t, "standup", details.Room.Name)
	require.Len(t, details.Participants, 1)

	p := details.Participants[0]
	assert.Equal(t, "42", p.Identity)
	assert.Equal(t, "alice", p.Name)
	assert.True(t, p.Permission.CanPublish)
	assert.Len(t, p.Tracks, 2)

	require.Len(t, *bodies, 2)
	assert.Equal(t, []interface{}{"standup"}, (*bodies)[0]["names"])
	assert.Equal(t, "standup", (*bodies)[1]["room"])
}

func TestRoomInfoUnknownRoom(t *testing.T) {
	server, _, _ := newTestServer(t, map[string]string{
		"ListRooms": `{"rooms":[]}`,
	})
	defer server.Close()

	client, err := NewRoomClient(testKey, testSecret, server.URL)
	require.NoError(t, err)

	assert.Nil(t, client.RoomInfo(context.Background(), "ghost"))
}

// The media server being down must degrade to nil/false results; no error
// reaches the caller and local state stays authoritative.
func TestUnreachableServerDegrades(t *testing.T) {
	client, err := NewRoomClient(testKey, testSecret, "ws://127.0.0.1:1")
	require.NoError(t, err)

	ctx := context.Background()
	assert.Nil(t, client.CreateRoom(ctx, "standup", 10))
	assert.False(t, client.DeleteRoom(ctx, "standup"))
	assert.Nil(t, client.RoomInfo(ctx, "standup"))
}

// One transport failure is retried once; the second attempt carries the full
// request again.
func TestRetriesOnceOnTransportError(t *testing.T) {
	var calls int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			hj, ok := w.(http.Hijacker)
			require.True(t, ok)
			conn, _, err := hj.Hijack()
			require.NoError(t, err)
			conn.Close()
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"sid":"RM_x","name":"standup","maxParticipants":10,"numParticipants":0}`))
	}))
	defer server.Close()

	client, err := NewRoomClient(testKey, testSecret, server.URL)
	require.NoError(t, err)

	room := client.CreateRoom(context.Background(), "standup", 10)

	require.NotNil(t, room)
	assert.Equal(t, "standup", room.Name)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestServerErrorDegrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":"internal"}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := NewRoomClient(testKey, testSecret, server.URL)
	require.NoError(t, err)

	assert.Nil(t, client.CreateRoom(context.Background(), "standup", 10))
}

func TestWebsocketURLPreserved(t *testing.T) {
	client, err := NewRoomClient(testKey, testSecret, "wss://media.example.com")
	require.NoError(t, err)

	assert.Equal(t, "wss://media.example.com", client.URL())
}
