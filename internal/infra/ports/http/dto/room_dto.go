package dto

import "github.com/rolltable/rolltable/internal/domain"

type CreateRoomRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type CreateRoomResponse struct {
	ID string `json:"id"`
}

type RoomResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	HasPassword    bool   `json:"has_password"`
	CreatedAt      int64  `json:"created_at"`
	UpdatedAt      *int64 `json:"updated_at,omitempty"`
	EmptySince     *int64 `json:"empty_since"`
	UsersConnected int    `json:"users_connected"`
}

// NewRoomResponseFromModel maps a registry room to its API shape. The stored
// password never leaves the service; only its presence does.
func NewRoomResponseFromModel(room domain.Room) RoomResponse {
	return RoomResponse{
		ID:             room.ID,
		Name:           room.Name,
		HasPassword:    room.HasPassword(),
		CreatedAt:      room.CreatedAt,
		UpdatedAt:      room.UpdatedAt,
		EmptySince:     room.EmptySince,
		UsersConnected: room.UsersConnected,
	}
}

type ListRoomsResponse struct {
	Rooms []RoomResponse `json:"rooms"`
}

type MarkEmptyRequest struct {
	Empty bool `json:"empty"`
}

type VerifyRequest struct {
	Password string `json:"password"`
}

type VerifyResponse struct {
	OK    bool   `json:"ok"`
	Token string `json:"token,omitempty"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}

type TimeResponse struct {
	TS int64 `json:"ts"`
}
