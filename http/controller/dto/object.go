package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/tnqbao/gau-drive-service/entity"
)

type UserSummary struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	FullName string    `json:"full_name"`
}

type ObjectResponse struct {
	ObjectKey  uuid.UUID     `json:"object_key"`
	Name       string        `json:"name"`
	OwnerID    *uuid.UUID    `json:"owner_id"`
	Size       int64         `json:"size"`
	MimeType   string        `json:"mime_type"`
	FileType   string        `json:"file_type"`
	UploadedAt time.Time     `json:"uploaded_at"`
	IsOwner    bool          `json:"is_owner"`
	SharedWith []UserSummary `json:"shared_with"`
}

type ListObjectsResponse struct {
	Objects  []ObjectResponse `json:"objects"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Total    int64            `json:"total"`
}

type UpdateAccessRequest struct {
	UserIDs []uuid.UUID `json:"user_ids" binding:"required"`
}

type UpdateAccessResponse struct {
	ObjectKey  uuid.UUID     `json:"object_key"`
	SharedWith []UserSummary `json:"shared_with"`
	Notified   int           `json:"notified"`
}

type RosterEntry struct {
	User      UserSummary `json:"user"`
	IsOwner   bool        `json:"is_owner"`
	HasAccess bool        `json:"has_access"`
}

type RosterResponse struct {
	ObjectKey uuid.UUID     `json:"object_key"`
	Roster    []RosterEntry `json:"roster"`
}

func NewUserSummary(u entity.User) UserSummary {
	return UserSummary{
		ID:       u.ID,
		Username: u.Username,
		FullName: u.FullName,
	}
}

func NewUserSummaries(users []entity.User) []UserSummary {
	summaries := make([]UserSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, NewUserSummary(u))
	}
	return summaries
}

// NewObjectResponse shapes an object for the requesting principal; is_owner
// is evaluated per request, never stored.
func NewObjectResponse(object *entity.Object, principal uuid.UUID) ObjectResponse {
	return ObjectResponse{
		ObjectKey:  object.ObjectKey,
		Name:       object.Name,
		OwnerID:    object.OwnerID,
		Size:       object.Size,
		MimeType:   object.MimeType,
		FileType:   object.FileType,
		UploadedAt: object.UploadedAt,
		IsOwner:    object.IsOwner(principal),
		SharedWith: NewUserSummaries(object.SharedWith),
	}
}
