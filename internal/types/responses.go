package types

import "time"

type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type RoomResponse struct {
	ID               uint      `json:"id"`
	Name             string    `json:"name"`
	DisplayName      string    `json:"display_name"`
	Description      string    `json:"description"`
	CreatorID        uint      `json:"creator_id"`
	IsActive         bool      `json:"is_active"`
	MaxParticipants  int       `json:"max_participants"`
	CreatedAt        time.Time `json:"created_at"`
	ParticipantCount int       `json:"participant_count"`
}

type RoomParticipant struct {
	Identity   string                `json:"identity"`
	Name       string                `json:"name"`
	Metadata   string                `json:"metadata"`
	NumTracks  int                   `json:"num_tracks"`
	Permission ParticipantPermission `json:"permission"`
}

type ParticipantPermission struct {
	CanPublish     bool `json:"can_publish"`
	CanSubscribe   bool `json:"can_subscribe"`
	CanPublishData bool `json:"can_publish_data"`
}

type RoomWithParticipants struct {
	RoomResponse
	Participants []RoomParticipant `json:"participants"`
}

type TokenResponse struct {
	Token               string `json:"token"`
	RoomName            string `json:"room_name"`
	ParticipantIdentity string `json:"participant_identity"`
	LiveKitURL          string `json:"livekit_url"`
}
