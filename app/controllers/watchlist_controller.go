package controllers

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/memecahq/memeca/app/models"
	"github.com/memecahq/memeca/app/repository"
	"github.com/memecahq/memeca/internal/pkg/cache"
	"github.com/memecahq/memeca/internal/pkg/database"
	"github.com/memecahq/memeca/internal/pkg/usercontext"
)

const watchlistCacheTTL = 5 * time.Minute

// The watchlist is cached per user; every toggle invalidates the entry so
// readers never see ambient stale state.
func watchlistCacheKey(userID uint) string {
	return fmt.Sprintf("watchlist:user:%d", userID)
}

// HandleGetWatchlist returns the user's watchlist, cache-first.
func HandleGetWatchlist(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)

	if cached, err := cache.Get(watchlistCacheKey(userID)); err == nil && cached != "" {
		var items []models.WatchlistItem
		if err := json.Unmarshal([]byte(cached), &items); err == nil {
			return c.JSON(fiber.Map{"watchlist": items, "cached": true})
		}
	}

	items, err := repository.GetGlobalFactory().GetWatchlistRepository().ListByUserID(userID)
	if err != nil {
		log.Printf("watchlist: list failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load watchlist",
		})
	}

	if payload, err := json.Marshal(items); err == nil {
		if err := cache.Set(watchlistCacheKey(userID), payload, watchlistCacheTTL); err != nil {
			log.Printf("watchlist: cache write failed: %v", err)
		}
	}

	return c.JSON(fiber.Map{"watchlist": items})
}

// HandleToggleWatchlist adds or removes a meme from the user's watchlist.
func HandleToggleWatchlist(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)

	meme, err := repository.GetGlobalFactory().GetMemeRepository().GetByUUID(c.Params("uuid"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "meme not found",
		})
	}

	watching, err := models.ToggleWatchlist(database.GetDB(), userID, meme.ID)
	if err != nil {
		log.Printf("watchlist: toggle failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to toggle watchlist",
		})
	}

	if err := cache.Delete(watchlistCacheKey(userID)); err != nil {
		log.Printf("watchlist: cache invalidation failed: %v", err)
	}

	return c.JSON(fiber.Map{"success": true, "watching": watching})
}
