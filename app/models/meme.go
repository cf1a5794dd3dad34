package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Meme is a submitted content item. Featuring ("Tuzemoon") is only ever set by
// the payment verifier after an on-chain payment has been independently
// confirmed; IsFeatured must never be true without a completed TuzemoonPayment.
type Meme struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	UUID          string         `gorm:"type:varchar(36);uniqueIndex" json:"uuid"`
	UserID        uint           `gorm:"index" json:"user_id"`
	User          User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Title         string         `gorm:"type:varchar(200)" json:"title" validate:"required,min=3,max=200"`
	Description   string         `gorm:"type:text" json:"description" validate:"max=2000"`
	ImageURL      string         `gorm:"type:varchar(500)" json:"image_url" validate:"required,max=500"`
	IsFeatured    bool           `gorm:"default:false;index" json:"is_featured"`
	TuzemoonUntil *time.Time     `gorm:"type:timestamp;default:null" json:"tuzemoon_until,omitempty"`
	LikesCount    int64          `gorm:"-" json:"likes_count"`
	CreatedAt     time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate assigns a public UUID so API clients never see numeric IDs.
func (m *Meme) BeforeCreate(tx *gorm.DB) error {
	if m.UUID == "" {
		m.UUID = uuid.New().String()
	}
	return nil
}

// IsTuzemoonActive reports whether the paid featured window is still running.
func (m *Meme) IsTuzemoonActive(now time.Time) bool {
	return m.IsFeatured && m.TuzemoonUntil != nil && m.TuzemoonUntil.After(now)
}
