package models

import (
	"time"

	"gorm.io/gorm"
)

type Like struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"index" json:"user_id"`
	User      User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	MemeID    uint           `gorm:"index" json:"meme_id"`
	Meme      Meme           `gorm:"foreignKey:MemeID" json:"meme,omitempty"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// ToggleLike creates or removes a like
func ToggleLike(db *gorm.DB, userID, memeID uint) error {
	var like Like
	result := db.Where("user_id = ? AND meme_id = ?", userID, memeID).First(&like)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			// Like does not exist yet, create it
			newLike := Like{
				UserID: userID,
				MemeID: memeID,
			}
			return db.Create(&newLike).Error
		}
		return result.Error
	}

	// Like exists, remove it
	return db.Delete(&like).Error
}

// CountLikes returns the number of likes for a meme
func CountLikes(db *gorm.DB, memeID uint) (int64, error) {
	var count int64
	err := db.Model(&Like{}).Where("meme_id = ?", memeID).Count(&count).Error
	return count, err
}
