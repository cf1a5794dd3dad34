package repository

import (
	"time"

	"github.com/memecahq/memeca/app/models"
	"gorm.io/gorm"
)

type memeRepository struct {
	db *gorm.DB
}

// NewMemeRepository creates a meme repository backed by GORM.
func NewMemeRepository(db *gorm.DB) MemeRepository {
	return &memeRepository{db: db}
}

func (r *memeRepository) Create(meme *models.Meme) error {
	return r.db.Create(meme).Error
}

func (r *memeRepository) GetByID(id uint) (*models.Meme, error) {
	var meme models.Meme
	if err := r.db.First(&meme, id).Error; err != nil {
		return nil, err
	}
	return &meme, nil
}

func (r *memeRepository) GetByUUID(uuid string) (*models.Meme, error) {
	var meme models.Meme
	if err := r.db.Where("uuid = ?", uuid).First(&meme).Error; err != nil {
		return nil, err
	}
	return &meme, nil
}

func (r *memeRepository) GetByUserID(userID uint, offset, limit int) ([]models.Meme, error) {
	var memes []models.Meme
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&memes).Error
	return memes, err
}

func (r *memeRepository) List(offset, limit int) ([]models.Meme, error) {
	var memes []models.Meme
	err := r.db.Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&memes).Error
	return memes, err
}

func (r *memeRepository) ListFeatured(limit int) ([]models.Meme, error) {
	var memes []models.Meme
	err := r.db.Where("is_featured = ? AND tuzemoon_until > ?", true, time.Now()).
		Order("tuzemoon_until DESC").
		Limit(limit).
		Find(&memes).Error
	return memes, err
}

func (r *memeRepository) Delete(id uint) error {
	return r.db.Delete(&models.Meme{}, id).Error
}

func (r *memeRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Meme{}).Count(&count).Error
	return count, err
}

type watchlistRepository struct {
	db *gorm.DB
}

// NewWatchlistRepository creates a watchlist repository backed by GORM.
func NewWatchlistRepository(db *gorm.DB) WatchlistRepository {
	return &watchlistRepository{db: db}
}

func (r *watchlistRepository) ListByUserID(userID uint) ([]models.WatchlistItem, error) {
	var items []models.WatchlistItem
	err := r.db.Preload("Meme").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}
