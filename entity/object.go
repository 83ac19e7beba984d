package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// File type classification buckets, derived once at upload time.
const (
	FileTypeMusic  = "music"
	FileTypePDF    = "pdf"
	FileTypeVideo  = "video"
	FileTypeImage  = "image"
	FileTypeOthers = "others"
)

type Object struct {
	ObjectKey  uuid.UUID      `json:"object_key" gorm:"type:uuid;primaryKey"`
	Name       string         `json:"name" gorm:"type:varchar(512);not null"`
	OwnerID    *uuid.UUID     `json:"owner_id" gorm:"type:uuid;index"`
	SharedWith []User         `json:"shared_with,omitempty" gorm:"many2many:object_shares;constraint:OnDelete:CASCADE"`
	Size       int64          `json:"size" gorm:"not null"`
	MimeType   string         `json:"mime_type" gorm:"type:varchar(255);not null"`
	FileType   string         `json:"file_type" gorm:"type:varchar(20);not null"`
	Metadata   datatypes.JSON `json:"metadata,omitempty"`
	UploadedAt time.Time      `json:"uploaded_at" gorm:"not null;autoCreateTime;index:idx_objects_uploaded_at,sort:desc"`

	// Owner is nullable: when the owning account is removed the object
	// becomes ownerless but is not deleted.
	Owner *User `json:"owner,omitempty" gorm:"foreignKey:OwnerID;constraint:OnDelete:SET NULL"`
}

// IsOwner reports whether the given principal owns the object. An ownerless
// object has no owner, so this is false for everyone.
func (o *Object) IsOwner(userID uuid.UUID) bool {
	return o.OwnerID != nil && *o.OwnerID == userID
}

// IsSharedWith reports whether the principal is a member of the shared set.
func (o *Object) IsSharedWith(userID uuid.UUID) bool {
	for _, u := range o.SharedWith {
		if u.ID == userID {
			return true
		}
	}
	return false
}
