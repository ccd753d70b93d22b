package controllers

import (
	"auraapi/models"
	"auraapi/services"
	"context"
	"log"
	"net/http"
	"os"

	"github.com/go-playground/validator"
	echojwt "github.com/labstack/echo-jwt"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func SetupServer(
	db *gorm.DB,
	googleService services.GoogleServiceProvider,
	awsService services.AWSServiceProvider,
	stylist services.StylistProvider,
	urlCache services.URLCacheServiceProvider,
) *echo.Echo {

	err := awsService.InitClient(context.Background())
	if err != nil {
		log.Fatal("Failed to initialize AWS provider: S3")
	}

	e := echo.New()
	v := validator.New()
	v.RegisterValidation("category", models.ValidateCategory)
	v.RegisterValidation("pattern", models.ValidatePattern)
	v.RegisterValidation("style", models.ValidateStyle)
	v.RegisterValidation("season", models.ValidateSeason)
	e.Validator = &CustomValidator{validator: v}

	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("__db", db)
			return next(c)
		}
	})

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	authController := AuthController{Google: googleService}
	authGroup := e.Group("/auth")
	authController.AuthRoutes(authGroup)

	wardrobeController := WardrobeController{AWSService: awsService, URLCache: urlCache}
	itemsGroup := e.Group("/items", echojwt.JWT([]byte(os.Getenv("JWT_SECRET"))), UserMiddleware)
	wardrobeController.ItemRoutes(itemsGroup)

	stylistController := StylistController{Stylist: stylist, AWSService: awsService, URLCache: urlCache}
	// classification holds the AI credential server-side and needs no session
	e.POST("/analyze", stylistController.Analyze)

	stylistGroup := e.Group("/stylist", echojwt.JWT([]byte(os.Getenv("JWT_SECRET"))), UserMiddleware)
	stylistController.StylistRoutes(stylistGroup)

	return e
}
