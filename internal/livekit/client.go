package livekit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const requestTimeout = 10 * time.Second

// RoomClient forwards room lifecycle calls to the LiveKit server's Twirp API.
// Local state stays authoritative: every method degrades to a nil/false
// result on upstream failure and logs a warning instead of returning an
// error, so callers never fail a request because the media server is down.
type RoomClient struct {
	httpURL string
	wsURL   string
	minter  *TokenMinter
	client  *http.Client
}

// RoomInfo is the subset of the server's Room message this service reads.
type RoomInfo struct {
	SID             string `json:"sid"`
	Name            string `json:"name"`
	MaxParticipants int    `json:"maxParticipants"`
	NumParticipants int    `json:"numParticipants"`
}

type ParticipantPermission struct {
	CanSubscribe   bool `json:"canSubscribe"`
	CanPublish     bool `json:"canPublish"`
	CanPublishData bool `json:"canPublishData"`
}

type ParticipantInfo struct {
	Identity   string                `json:"identity"`
	Name       string                `json:"name"`
	Metadata   string                `json:"metadata"`
	Permission ParticipantPermission `json:"permission"`
	Tracks     []json.RawMessage     `json:"tracks"`
}

// RoomDetails combines room metadata with its live participants.
type RoomDetails struct {
	Room         *RoomInfo
	Participants []ParticipantInfo
}

// NewRoomClient builds a client for the server behind url. The URL is the
// websocket URL handed to media clients; API calls go to its http(s)
// equivalent.
func NewRoomClient(apiKey, apiSecret, url string) (*RoomClient, error) {
	minter, err := NewTokenMinter(apiKey, apiSecret)
	if err != nil {
		return nil, err
	}
	if url == "" {
		return nil, fmt.Errorf("livekit: server url is required")
	}

	httpURL := strings.Replace(url, "wss://", "https://", 1)
	httpURL = strings.Replace(httpURL, "ws://", "http://", 1)

	return &RoomClient{
		httpURL: strings.TrimRight(httpURL, "/"),
		wsURL:   url,
		minter:  minter,
		client:  &http.Client{Timeout: requestTimeout},
	}, nil
}

// URL returns the websocket URL media clients should connect to.
func (c *RoomClient) URL() string {
	return c.wsURL
}

// Minter exposes the token minter sharing this client's credentials.
func (c *RoomClient) Minter() *TokenMinter {
	return c.minter
}

func (c *RoomClient) CreateRoom(ctx context.Context, name string, maxParticipants int) *RoomInfo {
	req := map[string]interface{}{
		"name":            name,
		"maxParticipants": maxParticipants,
	}

	var room RoomInfo
	if err := c.twirp(ctx, "CreateRoom", req, &room); err != nil {
		logrus.WithError(err).WithField("room", name).Warn("livekit: create room failed, continuing with local state")
		return nil
	}
	return &room
}

func (c *RoomClient) DeleteRoom(ctx context.Context, name string) bool {
	req := map[string]interface{}{"room": name}

	if err := c.twirp(ctx, "DeleteRoom", req, &struct{}{}); err != nil {
		logrus.WithError(err).WithField("room", name).Warn("livekit: delete room failed, continuing with local state")
		return false
	}
	return true
}

// RoomInfo fetches room metadata and live participants. Returns nil when the
// server does not know the room or is unreachable.
func (c *RoomClient) RoomInfo(ctx context.Context, name string) *RoomDetails {
	listReq := map[string]interface{}{"names": []string{name}}
	var listResp struct {
		Rooms []RoomInfo `json:"rooms"`
	}
	if err := c.twirp(ctx, "ListRooms", listReq, &listResp); err != nil {
		logrus.WithError(err).WithField("room", name).Warn("livekit: list rooms failed")
		return nil
	}
	if len(listResp.Rooms) == 0 {
		return nil
	}

	partReq := map[string]interface{}{"room": name}
	var partResp struct {
		Participants []ParticipantInfo `json:"participants"`
	}
	if err := c.twirp(ctx, "ListParticipants", partReq, &partResp); err != nil {
		logrus.WithError(err).WithField("room", name).Warn("livekit: list participants failed")
		return &RoomDetails{Room: &listResp.Rooms[0]}
	}

	return &RoomDetails{Room: &listResp.Rooms[0], Participants: partResp.Participants}
}

// twirp POSTs one RoomService RPC, retrying once on transport errors. The
// bearer credential is a fresh admin grant; the server checks its roomCreate/
// roomList/roomAdmin capability bits.
func (c *RoomClient) twirp(ctx context.Context, method string, reqBody interface{}, out interface{}) error {
	token, err := c.minter.AdminToken("roomgate-server")
	if err != nil {
		return fmt.Errorf("mint admin token: %w", err)
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	url := c.httpURL + "/twirp/livekit.RoomService/" + method

	var resp *http.Response
	for attempt := 0; attempt < 2; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err = c.client.Do(req)
		if err == nil {
			break
		}
		if attempt == 1 || ctx.Err() != nil {
			return fmt.Errorf("%s: %w", method, err)
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s returned status %d: %s", method, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
