package models

import (
	"time"

	"gorm.io/gorm"
)

type WatchlistItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index:ux_watchlist_user_meme,unique,priority:1" json:"user_id"`
	MemeID    uint      `gorm:"index:ux_watchlist_user_meme,unique,priority:2" json:"meme_id"`
	Meme      Meme      `gorm:"foreignKey:MemeID" json:"meme,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// ToggleWatchlist adds or removes a meme from the user's watchlist and reports
// whether the meme is on the list afterwards.
func ToggleWatchlist(db *gorm.DB, userID, memeID uint) (bool, error) {
	var item WatchlistItem
	result := db.Where("user_id = ? AND meme_id = ?", userID, memeID).First(&item)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			newItem := WatchlistItem{
				UserID: userID,
				MemeID: memeID,
			}
			return true, db.Create(&newItem).Error
		}
		return false, result.Error
	}

	return false, db.Delete(&item).Error
}
