package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/roomgate-dev/roomgate/db"
	"github.com/roomgate-dev/roomgate/internal/livekit"
	"github.com/roomgate-dev/roomgate/internal/models"
	"github.com/roomgate-dev/roomgate/internal/types"
	"github.com/roomgate-dev/roomgate/internal/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type CreateRoomRequest struct {
	Name            string `json:"name" binding:"required"`
	DisplayName     string `json:"display_name" binding:"required"`
	Description     string `json:"description"`
	MaxParticipants int    `json:"max_participants" binding:"omitempty,min=1"`
}

// RoomHandler serves the room lifecycle endpoints. The LiveKit client is
// injected so the remote collaborator can be swapped out in tests.
type RoomHandler struct {
	lk *livekit.RoomClient
}

func NewRoomHandler(lk *livekit.RoomClient) *RoomHandler {
	return &RoomHandler{lk: lk}
}

func (h *RoomHandler) Create(ctx *gin.Context) {
	var req CreateRoomRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if req.MaxParticipants == 0 {
		req.MaxParticipants = 50
	}

	room := models.Room{
		Name:            req.Name,
		DisplayName:     req.DisplayName,
		Description:     req.Description,
		CreatorID:       userID,
		IsActive:        true,
		MaxParticipants: req.MaxParticipants,
	}

	if err := db.DB.Create(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Room with this name already exists"})
			return
		}
		logrus.WithError(err).Error("Failed to create room")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	// Local row is committed first; the remote create is best effort and a
	// failure here is logged inside the client, never surfaced.
	h.lk.CreateRoom(ctx.Request.Context(), room.Name, room.MaxParticipants)

	logrus.WithFields(logrus.Fields{"room_id": room.ID, "room": room.Name, "creator_id": userID}).Info("Room created")

	ctx.JSON(http.StatusCreated, roomResponse(room, 0))
}

func (h *RoomHandler) List(ctx *gin.Context) {
	var rooms []models.Room

	if err := db.DB.Where("is_active = ?", true).Find(&rooms).Error; err != nil {
		logrus.WithError(err).Error("Failed to list rooms")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	response := make([]types.RoomResponse, 0, len(rooms))

	for _, room := range rooms {
		count, err := activeMemberCount(room.ID)
		if err != nil {
			logrus.WithError(err).WithField("room_id", room.ID).Error("Failed to count members")
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		response = append(response, roomResponse(room, count))
	}

	ctx.JSON(http.StatusOK, response)
}

func (h *RoomHandler) Get(ctx *gin.Context) {
	room, ok := findRoom(ctx, false)
	if !ok {
		return
	}

	// Live participants come from the media server; when it is unreachable
	// the response degrades to an empty list.
	participants := []types.RoomParticipant{}

	if details := h.lk.RoomInfo(ctx.Request.Context(), room.Name); details != nil {
		for _, p := range details.Participants {
			participants = append(participants, types.RoomParticipant{
				Identity:  p.Identity,
				Name:      p.Name,
				Metadata:  p.Metadata,
				NumTracks: len(p.Tracks),
				Permission: types.ParticipantPermission{
					CanPublish:     p.Permission.CanPublish,
					CanSubscribe:   p.Permission.CanSubscribe,
					CanPublishData: p.Permission.CanPublishData,
				},
			})
		}
	}

	ctx.JSON(http.StatusOK, types.RoomWithParticipants{
		RoomResponse: roomResponse(*room, len(participants)),
		Participants: participants,
	})
}

func (h *RoomHandler) Join(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	room, ok := findRoom(ctx, true)
	if !ok {
		return
	}

	if err := recordJoin(currentUser.ID, room.ID); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{"user_id": currentUser.ID, "room_id": room.ID}).Error("Failed to record membership")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	// The media server de-duplicates simultaneous connections by identity,
	// so the stable numeric user id is used rather than the username.
	identity := strconv.FormatUint(uint64(currentUser.ID), 10)

	token, err := h.lk.Minter().RoomJoinToken(room.Name, identity, currentUser.Username, fmt.Sprintf("user_id:%d", currentUser.ID))

	if err != nil {
		logrus.WithError(err).Error("Failed to mint room join token")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	logrus.WithFields(logrus.Fields{"user_id": currentUser.ID, "room": room.Name}).Info("User joined room")

	ctx.JSON(http.StatusOK, types.TokenResponse{
		Token:               token,
		RoomName:            room.Name,
		ParticipantIdentity: identity,
		LiveKitURL:          h.lk.URL(),
	})
}

func (h *RoomHandler) Leave(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	roomID := ctx.Param("id")

	now := time.Now()
	result := db.DB.Model(&models.RoomMembership{}).
		Where("user_id = ? AND room_id = ? AND is_active = ?", userID, roomID, true).
		Updates(map[string]interface{}{"is_active": false, "left_at": now})

	if result.Error != nil {
		logrus.WithError(result.Error).Error("Failed to leave room")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	// Leaving a room one is not in is a no-op, matching join idempotence.
	ctx.JSON(http.StatusOK, gin.H{"message": "Left room successfully"})
}

func (h *RoomHandler) Delete(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	room, ok := findRoom(ctx, false)
	if !ok {
		return
	}

	if room.CreatorID != userID {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Only room creator can delete the room"})
		return
	}

	now := time.Now()
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(room).Update("is_active", false).Error; err != nil {
			return err
		}
		// Every membership for the room goes inactive, already-inactive rows
		// included, so the cascade is idempotent.
		return tx.Model(&models.RoomMembership{}).
			Where("room_id = ?", room.ID).
			Updates(map[string]interface{}{"is_active": false, "left_at": now}).Error
	})

	if err != nil {
		logrus.WithError(err).WithField("room_id", room.ID).Error("Failed to delete room")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	h.lk.DeleteRoom(ctx.Request.Context(), room.Name)

	logrus.WithFields(logrus.Fields{"room_id": room.ID, "room": room.Name}).Info("Room deleted")

	ctx.JSON(http.StatusOK, gin.H{"message": "Room deleted successfully"})
}

// findRoom resolves the :id path parameter, writing a 404 response and
// returning ok=false when the room does not exist. activeOnly additionally
// hides soft-deleted rooms, used by join so a deleted room cannot be entered.
func findRoom(ctx *gin.Context, activeOnly bool) (*models.Room, bool) {
	var room models.Room

	query := db.DB.Where("id = ?", ctx.Param("id"))
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	if err := query.First(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
		} else {
			logrus.WithError(err).Error("Failed to retrieve room")
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return nil, false
	}

	return &room, true
}

// recordJoin ensures an active membership row exists for (userID, roomID).
// The check-then-insert is backstopped by the partial unique index from
// db.MigrateDatabase: losing the race surfaces as a duplicate-key error,
// which means another request already created the row and the join succeeded.
func recordJoin(userID, roomID uint) error {
	var existing models.RoomMembership

	err := db.DB.Where("user_id = ? AND room_id = ? AND is_active = ?", userID, roomID, true).
		First(&existing).Error

	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	membership := models.RoomMembership{
		UserID:   userID,
		RoomID:   roomID,
		IsActive: true,
	}

	if err := db.DB.Create(&membership).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return err
	}

	return nil
}

func activeMemberCount(roomID uint) (int, error) {
	var count int64

	err := db.DB.Model(&models.RoomMembership{}).
		Where("room_id = ? AND is_active = ?", roomID, true).
		Count(&count).Error

	return int(count), err
}

func roomResponse(room models.Room, participantCount int) types.RoomResponse {
	return types.RoomResponse{
		ID:               room.ID,
		Name:             room.Name,
		DisplayName:      room.DisplayName,
		Description:      room.Description,
		CreatorID:        room.CreatorID,
		IsActive:         room.IsActive,
		MaxParticipants:  room.MaxParticipants,
		CreatedAt:        room.CreatedAt,
		ParticipantCount: participantCount,
	}
}
