package controllers

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"sync"

	"auraapi/models"
	"auraapi/services"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// Request structs for validation
type CreateItemIn struct {
	ImageData   string  `json:"imageData" validate:"required"`
	MimeType    string  `json:"mimetype" validate:"required"`
	Category    string  `json:"category" validate:"required,category"`
	Color       string  `json:"color" validate:"required,max=100"`
	Pattern     *string `json:"pattern" validate:"omitempty,pattern"`
	Style       string  `json:"style" validate:"required,style"`
	Season      string  `json:"season" validate:"required,season"`
	Description string  `json:"description" validate:"required,max=500"`
}

// Response structs
type ItemResponse struct {
	ID          uint    `json:"id"`
	ImageUrl    string  `json:"imageurl"`
	MimeType    string  `json:"mimetype"`
	Category    string  `json:"category"`
	Color       string  `json:"color"`
	Pattern     *string `json:"pattern"`
	Style       string  `json:"style"`
	Season      string  `json:"season"`
	Description string  `json:"description"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

type WardrobeController struct {
	AWSService services.AWSServiceProvider
	URLCache   services.URLCacheServiceProvider
}

func (controller *WardrobeController) ItemRoutes(g *echo.Group) {
	g.GET("", controller.ListItems)
	g.POST("", controller.CreateItem)
	g.DELETE("/:id", controller.DeleteItem)
}

func (controller *WardrobeController) CreateItem(c echo.Context) error {
	var req CreateItemIn
	if err := c.Bind(&req); err != nil {
		log.Printf("Failed to bind item request: %v", err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Database connection error"})
	}

	imageBytes, err := base64.StdEncoding.DecodeString(req.ImageData)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Image data is not valid base64"})
	}
	if len(imageBytes) == 0 {
		sentry.CaptureException(fmt.Errorf("Image was not provided when creating wardrobe item, user %v", user.ID))
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Sorry, it seems image was not provided, please try again"})
	}

	item := models.WardrobeItem{
		OwnerID:     user.ID,
		MimeType:    req.MimeType,
		Category:    req.Category,
		Color:       req.Color,
		Pattern:     req.Pattern,
		Style:       req.Style,
		Season:      req.Season,
		Description: req.Description,
	}

	// Save to database first, the row ID names the blob key
	if err := db.Create(&item).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save item, please try again"})
	}

	var bucketName = services.GetEnv("R2_BUCKET_NAME", "")
	objectKey := fmt.Sprintf("wardrobe/%d.%s", item.ID, services.ExtForMime(req.MimeType))
	if err := controller.AWSService.UploadObject(c.Request().Context(), bucketName, objectKey, imageBytes, req.MimeType); err != nil {
		log.Printf("Unable to upload image for item %v!, %s", item.ID, err)
		sentry.CaptureException(err)
		db.Delete(&item)
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"message": "Error while creating item with attachment",
		})
	}
	item.ImageKey = &objectKey
	if err := db.Save(&item).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save item, please try again"})
	}

	response := controller.populatePresignedItemImages(c.Request().Context(), []models.WardrobeItem{item})
	return c.JSON(http.StatusCreated, response[0])
}

// populatePresignedItemImages takes raw wardrobe models and enriches them with presigned URLs concurrently.
// This version includes a failsafe for when the cache system itself fails.
func (controller *WardrobeController) populatePresignedItemImages(ctx context.Context, items []models.WardrobeItem) []ItemResponse {
	if len(items) == 0 {
		return []ItemResponse{}
	}

	var wg sync.WaitGroup
	processedResponses := make([]ItemResponse, len(items))
	bucketName := services.GetEnv("R2_BUCKET_NAME", "")

	for i, wardrobeItem := range items {
		wg.Add(1)
		go func(index int, item models.WardrobeItem) {
			defer wg.Done()

			var imageUrl string
			if item.ImageKey != nil && *item.ImageKey != "" {
				objectKey := *item.ImageKey

				url, err := controller.URLCache.GetReadURL(ctx, objectKey)
				if err == nil {
					imageUrl = url
				} else {
					// The cache system itself failed, an exceptional event.
					log.Printf("CACHE WARNING: Cache system failed for key '%s': %v. Triggering manual R2 fallback.", objectKey, err)

					sentry.WithScope(func(scope *sentry.Scope) {
						scope.SetTag("failure_type", "cache_system")
						scope.SetExtra("objectKey", objectKey)
						sentry.CaptureException(err)
					})

					fallbackUrl, fallbackErr := controller.AWSService.GetPresignedReadURL(ctx, bucketName, objectKey)
					if fallbackErr != nil {
						log.Printf("CRITICAL: Manual R2 fallback also failed for key '%s': %v", objectKey, fallbackErr)
						sentry.CaptureException(fallbackErr)
						// imageUrl remains empty, but we don't fail the entire request.
					} else {
						imageUrl = fallbackUrl
					}
				}
			}
			processedResponses[index] = ItemResponse{
				ID:          item.ID,
				ImageUrl:    imageUrl,
				MimeType:    item.MimeType,
				Category:    item.Category,
				Color:       item.Color,
				Pattern:     item.Pattern,
				Style:       item.Style,
				Season:      item.Season,
				Description: item.Description,
				CreatedAt:   item.CreatedAt.Format("2006-01-02T15:04:05Z"),
				UpdatedAt:   item.UpdatedAt.Format("2006-01-02T15:04:05Z"),
			}
		}(i, wardrobeItem)
	}

	wg.Wait()
	return processedResponses
}

func (controller *WardrobeController) ListItems(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Database connection error"})
	}

	var items []models.WardrobeItem
	if err := db.Where("owner_id = ?", user.ID).Order("created_at").Find(&items).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch items"})
	}

	processedResponses := controller.populatePresignedItemImages(c.Request().Context(), items)
	return c.JSON(http.StatusOK, processedResponses)
}

func (controller *WardrobeController) DeleteItem(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Database connection error"})
	}

	var item models.WardrobeItem
	result := db.Limit(1).Find(&item, "id = ?", c.Param("id"))
	if result.Error != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch item"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Item not found"})
	}
	if item.OwnerID != user.ID {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "You do not own this item"})
	}

	if err := db.Delete(&item).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete item"})
	}

	// Blob removal is best effort, the reaper picks up anything left behind.
	if item.ImageKey != nil && *item.ImageKey != "" {
		var bucketName = services.GetEnv("R2_BUCKET_NAME", "")
		if err := controller.AWSService.DeleteObject(c.Request().Context(), bucketName, *item.ImageKey); err != nil {
			log.Printf("Unable to delete image %s for item %v: %s", *item.ImageKey, item.ID, err)
			sentry.CaptureException(err)
		}
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Item deleted successfully"})
}
