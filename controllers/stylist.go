package controllers

import (
	"encoding/base64"
	"errors"
	"log"
	"net/http"
	"strconv"

	"auraapi/models"
	"auraapi/services"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type AnalyzeIn struct {
	ImageData string `json:"imageData" validate:"required"`
	MimeType  string `json:"mimetype" validate:"required"`
}

type ComposeOutfitsIn struct {
	Occasion    string `json:"occasion" validate:"required,max=200"`
	Constraints string `json:"constraints" validate:"omitempty,max=500"`
}

type OutfitOfTheDayIn struct {
	Weather        string `json:"weather" validate:"omitempty,max=200"`
	CalendarEvents string `json:"calendar_events" validate:"omitempty,max=500"`
}

type ChatIn struct {
	Message string `json:"message" validate:"required,max=1000"`
}

type ChatOut struct {
	Reply string `json:"reply"`
}

type StyleboardIn struct {
	ItemIds []string `json:"itemIds" validate:"required,min=1,max=10"`
}

type StyleboardOut struct {
	ImageData string `json:"imageData"`
	MimeType  string `json:"mimetype"`
}

type StylistController struct {
	Stylist    services.StylistProvider
	AWSService services.AWSServiceProvider
	URLCache   services.URLCacheServiceProvider
}

func (controller *StylistController) StylistRoutes(g *echo.Group) {
	g.POST("/outfits", controller.ComposeOutfits)
	g.POST("/ootd", controller.OutfitOfTheDay)
	g.POST("/critique", controller.CritiqueOutfit)
	g.POST("/chat", controller.Chat)
	g.POST("/styleboard", controller.Styleboard)
}

// Analyze classifies a single garment photo. It needs no session, the AI
// credential lives server-side only.
func (controller *StylistController) Analyze(c echo.Context) error {
	var req AnalyzeIn
	if err := c.Bind(&req); err != nil {
		log.Printf("Failed to bind analyze request: %v", err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Missing imageData or mimetype"})
	}

	imageBytes, err := base64.StdEncoding.DecodeString(req.ImageData)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Image data is not valid base64"})
	}

	analysis, err := controller.Stylist.AnalyzeItem(c.Request().Context(), imageBytes, req.MimeType)
	if err != nil {
		if errors.Is(err, services.ErrNoCredential) {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Server missing GENAI_API_KEY environment variable"})
		}
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to analyze image, please try again"})
	}

	return c.JSON(http.StatusOK, analysis)
}

// wardrobeContext loads the caller's items as the descriptive summary the
// model prompts work from.
func wardrobeContext(c echo.Context) ([]services.ItemContext, error) {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return nil, echo.ErrUnauthorized
	}
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return nil, echo.ErrInternalServerError
	}

	var items []models.WardrobeItem
	if err := db.Where("owner_id = ?", user.ID).Order("created_at").Find(&items).Error; err != nil {
		return nil, err
	}

	contexts := make([]services.ItemContext, 0, len(items))
	for _, item := range items {
		contexts = append(contexts, services.ItemContext{
			ID:          UIntToStr(item.ID),
			Description: item.Description,
			Category:    item.Category,
			Color:       item.Color,
			Style:       item.Style,
		})
	}
	return contexts, nil
}

func stylistError(c echo.Context, err error) error {
	if errors.Is(err, services.ErrNoCredential) {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Server missing GENAI_API_KEY environment variable"})
	}
	sentry.CaptureException(err)
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "The stylist is unavailable right now, please try again"})
}

func (controller *StylistController) ComposeOutfits(c echo.Context) error {
	var req ComposeOutfitsIn
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	items, err := wardrobeContext(c)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Your wardrobe is empty, add some items first"})
	}

	ideas, err := controller.Stylist.ComposeOutfits(c.Request().Context(), items, req.Occasion, req.Constraints)
	if err != nil {
		return stylistError(c, err)
	}
	return c.JSON(http.StatusOK, ideas)
}

func (controller *StylistController) OutfitOfTheDay(c echo.Context) error {
	var req OutfitOfTheDayIn
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	items, err := wardrobeContext(c)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Your wardrobe is empty, add some items first"})
	}

	suggestion, err := controller.Stylist.OutfitOfTheDay(c.Request().Context(), items, req.Weather, req.CalendarEvents)
	if err != nil {
		return stylistError(c, err)
	}
	return c.JSON(http.StatusOK, suggestion)
}

func (controller *StylistController) CritiqueOutfit(c echo.Context) error {
	var req AnalyzeIn
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Missing imageData or mimetype"})
	}

	imageBytes, err := base64.StdEncoding.DecodeString(req.ImageData)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Image data is not valid base64"})
	}

	critique, err := controller.Stylist.CritiqueOutfit(c.Request().Context(), imageBytes, req.MimeType)
	if err != nil {
		return stylistError(c, err)
	}
	return c.JSON(http.StatusOK, critique)
}

// Styleboard renders the selected wardrobe items on a synthetic model. The
// item photos are pulled back out of the blob store through the same
// presigned-URL path the listing uses.
func (controller *StylistController) Styleboard(c echo.Context) error {
	var req StyleboardIn
	if err := c.Bind(&req); err != nil {
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

	ids := make([]uint64, 0, len(req.ItemIds))
	for _, raw := range req.ItemIds {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	var items []models.WardrobeItem
	if len(ids) > 0 {
		if err := db.Where("owner_id = ? AND id IN ?", user.ID, ids).Find(&items).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch items"})
		}
	}
	if len(items) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "None of the requested items are in your wardrobe"})
	}

	bucketName := services.GetEnv("R2_BUCKET_NAME", "")
	boardItems := make([]services.StyleboardItem, 0, len(items))
	for _, item := range items {
		if item.ImageKey == nil || *item.ImageKey == "" {
			continue
		}
		url, err := controller.URLCache.GetReadURL(c.Request().Context(), *item.ImageKey)
		if err != nil {
			url, err = controller.AWSService.GetPresignedReadURL(c.Request().Context(), bucketName, *item.ImageKey)
		}
		if err != nil {
			sentry.CaptureException(err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load item images"})
		}
		imageBytes, err := services.ReadFileFromUrl(url)
		if err != nil {
			log.Printf("Failed to download image %s for styleboard: %v", *item.ImageKey, err)
			sentry.CaptureException(err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load item images"})
		}
		boardItems = append(boardItems, services.StyleboardItem{
			Data:        imageBytes,
			MimeType:    item.MimeType,
			Description: item.Description,
		})
	}
	if len(boardItems) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "The requested items have no stored images"})
	}

	imageBytes, mimeType, err := controller.Stylist.Styleboard(c.Request().Context(), boardItems)
	if err != nil {
		return stylistError(c, err)
	}

	return c.JSON(http.StatusOK, StyleboardOut{
		ImageData: base64.StdEncoding.EncodeToString(imageBytes),
		MimeType:  mimeType,
	})
}

func (controller *StylistController) Chat(c echo.Context) error {
	var req ChatIn
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	items, err := wardrobeContext(c)
	if err != nil {
		return err
	}

	reply, err := controller.Stylist.Chat(c.Request().Context(), req.Message, items)
	if err != nil {
		return stylistError(c, err)
	}
	return c.JSON(http.StatusOK, ChatOut{Reply: reply})
}
