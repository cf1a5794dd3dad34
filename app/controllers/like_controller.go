package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/memecahq/memeca/app/models"
	"github.com/memecahq/memeca/app/repository"
	"github.com/memecahq/memeca/internal/pkg/database"
	"github.com/memecahq/memeca/internal/pkg/usercontext"
)

// HandleToggleLike creates or removes the user's like on a meme.
func HandleToggleLike(c *fiber.Ctx) error {
	meme, err := repository.GetGlobalFactory().GetMemeRepository().GetByUUID(c.Params("uuid"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "meme not found",
		})
	}

	db := database.GetDB()
	if err := models.ToggleLike(db, usercontext.GetUserID(c), meme.ID); err != nil {
		log.Printf("likes: toggle failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to toggle like",
		})
	}

	count, _ := models.CountLikes(db, meme.ID)
	return c.JSON(fiber.Map{"success": true, "likes_count": count})
}
