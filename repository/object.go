package repository

import (
	"errors"

	"github.com/google/uuid"
	"github.com/tnqbao/gau-drive-service/entity"
	"gorm.io/gorm"
)

type ObjectRepository struct {
	db *gorm.DB
}

func NewObjectRepository(db *gorm.DB) *ObjectRepository {
	return &ObjectRepository{db: db}
}

func (r *ObjectRepository) Create(object *entity.Object) error {
	return r.db.Create(object).Error
}

// FindByKey loads the object with its shared set. A missing row is reported
// as (nil, nil), never as an error.
func (r *ObjectRepository) FindByKey(key uuid.UUID) (*entity.Object, error) {
	var object entity.Object
	err := r.db.Preload("SharedWith").Where("object_key = ?", key).First(&object).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &object, nil
}

// ListForUser returns every object the user owns or has been granted, newest
// upload first. The owner∪shared union is deduplicated in SQL: an object
// shared back to its own owner must still appear exactly once.
func (r *ObjectRepository) ListForUser(userID uuid.UUID, limit, offset int) ([]entity.Object, int64, error) {
	base := r.db.Model(&entity.Object{}).
		Joins("LEFT JOIN object_shares ON object_shares.object_object_key = objects.object_key").
		Where("objects.owner_id = ? OR object_shares.user_id = ?", userID, userID)

	var total int64
	if err := base.Session(&gorm.Session{}).Distinct("objects.object_key").Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var objects []entity.Object
	err := base.Session(&gorm.Session{}).
		Distinct("objects.*").
		Order("objects.uploaded_at DESC").
		Limit(limit).
		Offset(offset).
		Preload("SharedWith").
		Find(&objects).Error
	if err != nil {
		return nil, 0, err
	}

	return objects, total, nil
}

// ReplaceSharedWith swaps the whole shared set in one transaction. Concurrent
// updates on the same object serialize on the row; last write wins.
func (r *ObjectRepository) ReplaceSharedWith(key uuid.UUID, users []entity.User) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var object entity.Object
		if err := tx.Where("object_key = ?", key).First(&object).Error; err != nil {
			return err
		}
		return tx.Model(&object).Association("SharedWith").Replace(users)
	})
}

func (r *ObjectRepository) DeleteByKey(key uuid.UUID) error {
	return r.db.Select("SharedWith").Delete(&entity.Object{ObjectKey: key}).Error
}
