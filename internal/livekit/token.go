package livekit

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL matches the LiveKit default; the server enforces expiry,
// this service does not.
const DefaultTokenTTL = 6 * time.Hour

// VideoGrant mirrors the grant object the LiveKit verifier expects. Field
// names are part of the wire contract and must not change. The can* fields
// are pointers so an unset capability is omitted rather than sent as false.
type VideoGrant struct {
	RoomCreate bool   `json:"roomCreate,omitempty"`
	RoomList   bool   `json:"roomList,omitempty"`
	RoomAdmin  bool   `json:"roomAdmin,omitempty"`
	RoomJoin   bool   `json:"roomJoin,omitempty"`
	Room       string `json:"room,omitempty"`

	CanPublish     *bool `json:"canPublish,omitempty"`
	CanSubscribe   *bool `json:"canSubscribe,omitempty"`
	CanPublishData *bool `json:"canPublishData,omitempty"`
}

// GrantClaims is the full claim set of a LiveKit access token.
type GrantClaims struct {
	jwt.RegisteredClaims

	Name     string      `json:"name,omitempty"`
	Video    *VideoGrant `json:"video,omitempty"`
	Metadata string      `json:"metadata,omitempty"`
}

// TokenMinter signs LiveKit access tokens with the API key/secret pair shared
// with the media server. It holds no other state and is safe for concurrent
// use.
type TokenMinter struct {
	apiKey    string
	apiSecret string
}

func NewTokenMinter(apiKey, apiSecret string) (*TokenMinter, error) {
	if apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("livekit: api key and secret are required")
	}
	return &TokenMinter{apiKey: apiKey, apiSecret: apiSecret}, nil
}

// RoomJoinToken mints a token letting identity join roomName with publish,
// subscribe and publish-data capability, and nothing broader. name and
// metadata are optional and passed through opaquely.
func (m *TokenMinter) RoomJoinToken(roomName, identity, name, metadata string) (string, error) {
	yes := true
	return m.sign(identity, name, metadata, &VideoGrant{
		RoomJoin:       true,
		Room:           roomName,
		CanPublish:     &yes,
		CanSubscribe:   &yes,
		CanPublishData: &yes,
	})
}

// AdminToken mints a token with room-create, room-list and room-admin
// capability and no room scoping. It is consumed internally as the bearer
// credential for server API calls and must never be handed to end users.
func (m *TokenMinter) AdminToken(identity string) (string, error) {
	return m.sign(identity, "", "", &VideoGrant{
		RoomCreate: true,
		RoomList:   true,
		RoomAdmin:  true,
	})
}

func (m *TokenMinter) sign(identity, name, metadata string, grant *VideoGrant) (string, error) {
	if identity == "" {
		return "", fmt.Errorf("livekit: token identity is required")
	}

	now := time.Now()
	claims := GrantClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.apiKey,
			Subject:   identity,
			ID:        identity,
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(DefaultTokenTTL)),
		},
		Name:     name,
		Video:    grant,
		Metadata: metadata,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.apiSecret))
}
