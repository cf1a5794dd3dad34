package controllers

import (
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/memecahq/memeca/app/models"
	"github.com/memecahq/memeca/app/repository"
	"github.com/memecahq/memeca/internal/pkg/database"
	"github.com/memecahq/memeca/internal/pkg/usercontext"
)

const defaultPageSize = 24

type createMemeRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=200"`
	Description string `json:"description" validate:"max=2000"`
	ImageURL    string `json:"image_url" validate:"required,url,max=500"`
}

// HandleListMemes returns a page of memes, newest first.
func HandleListMemes(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}

	repo := repository.GetGlobalFactory().GetMemeRepository()
	memes, err := repo.List((page-1)*defaultPageSize, defaultPageSize)
	if err != nil {
		log.Printf("memes: list failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load memes",
		})
	}

	attachLikeCounts(memes)
	return c.JSON(fiber.Map{"memes": memes, "page": page})
}

// HandleListFeaturedMemes returns memes inside an active Tuzemoon window.
func HandleListFeaturedMemes(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetMemeRepository()
	memes, err := repo.ListFeatured(defaultPageSize)
	if err != nil {
		log.Printf("memes: featured list failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load featured memes",
		})
	}

	attachLikeCounts(memes)
	return c.JSON(fiber.Map{"memes": memes})
}

// HandleGetMeme returns one meme by public UUID.
func HandleGetMeme(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetMemeRepository()
	meme, err := repo.GetByUUID(c.Params("uuid"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "meme not found",
			})
		}
		log.Printf("memes: lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load meme",
		})
	}

	if count, err := models.CountLikes(database.GetDB(), meme.ID); err == nil {
		meme.LikesCount = count
	}
	return c.JSON(fiber.Map{"meme": meme})
}

// HandleCreateMeme submits a new meme for the authenticated user.
func HandleCreateMeme(c *fiber.Ctx) error {
	var req createMemeRequest
	if err := parseAndValidate(c, &req); err != nil {
		return badRequest(c, "invalid meme payload")
	}

	meme := &models.Meme{
		UserID:      usercontext.GetUserID(c),
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	}
	if err := repository.GetGlobalFactory().GetMemeRepository().Create(meme); err != nil {
		log.Printf("memes: create failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to create meme",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"meme": meme})
}

// HandleDeleteMeme removes a meme; owners and admins only.
func HandleDeleteMeme(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetMemeRepository()
	meme, err := repo.GetByUUID(c.Params("uuid"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "meme not found",
		})
	}

	if meme.UserID != usercontext.GetUserID(c) && !usercontext.IsAdmin(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "not allowed",
		})
	}

	if err := repo.Delete(meme.ID); err != nil {
		log.Printf("memes: delete failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to delete meme",
		})
	}
	return c.JSON(fiber.Map{"success": true})
}

func attachLikeCounts(memes []models.Meme) {
	db := database.GetDB()
	for i := range memes {
		if count, err := models.CountLikes(db, memes[i].ID); err == nil {
			memes[i].LikesCount = count
		}
	}
}
