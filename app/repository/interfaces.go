package repository

import (
	"github.com/memecahq/memeca/app/models"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
}

// MemeRepository defines the interface for meme-related database operations
type MemeRepository interface {
	Create(meme *models.Meme) error
	GetByID(id uint) (*models.Meme, error)
	GetByUUID(uuid string) (*models.Meme, error)
	GetByUserID(userID uint, offset, limit int) ([]models.Meme, error)
	List(offset, limit int) ([]models.Meme, error)
	ListFeatured(limit int) ([]models.Meme, error)
	Delete(id uint) error
	Count() (int64, error)
}

// WatchlistRepository defines the interface for watchlist database operations
type WatchlistRepository interface {
	ListByUserID(userID uint) ([]models.WatchlistItem, error)
}

// Repositories bundles all repository instances
type Repositories struct {
	User      UserRepository
	Meme      MemeRepository
	Watchlist WatchlistRepository
}
