package entity

import "github.com/google/uuid"

// User mirrors the identity provider's directory. Rows are written by the
// account service; this gateway only reads them.
type User struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Username string    `json:"username" gorm:"type:varchar(150);uniqueIndex;not null"`
	Email    string    `json:"email" gorm:"type:varchar(255);not null"`
	FullName string    `json:"full_name" gorm:"type:varchar(255)"`
}
