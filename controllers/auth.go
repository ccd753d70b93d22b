package controllers

import (
	"auraapi/models"
	"auraapi/services"
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthController struct {
	Google services.GoogleServiceProvider
}

func (m *AuthController) AuthRoutes(g *echo.Group) {
	g.POST("/signup", m.SignUp)
	g.POST("/login", m.Login)
	g.POST("/google", m.GoogleSignIn)
}

func (m *AuthController) SignUp(c echo.Context) error {
	var req models.SignUpIn
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	db := c.Get("__db").(*gorm.DB)

	var existing models.UserAccount
	r := db.Where("email = ?", req.Email).Limit(1).Find(&existing)
	if r.Error != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	if r.RowsAffected > 0 {
		return c.JSON(http.StatusConflict, map[string]string{"error": "An account with this email already exists"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	user := models.UserAccount{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashed),
		Status:   "FINISHED_AUTH",
		LastIp:   c.RealIP(),
	}
	if err := db.Create(&user).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create account"})
	}

	return c.JSON(http.StatusCreated, models.SessionOut{
		Id:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		New:         true,
		AccessToken: GenerateUserToken(UIntToStr(user.ID), c, 72),
	})
}

func (m *AuthController) Login(c echo.Context) error {
	var req models.LoginIn
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	db := c.Get("__db").(*gorm.DB)

	var user models.UserAccount
	r := db.Where("email = ?", req.Email).Limit(1).Find(&user)
	if r.Error != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	if r.RowsAffected == 0 {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid email or password"})
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid email or password"})
	}
	if user.Banned {
		return echo.ErrForbidden
	}

	user.LastIp = c.RealIP()
	db.Save(&user)

	return c.JSON(http.StatusOK, models.SessionOut{
		Id:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Avatar:      user.AvatarURL,
		AccessToken: GenerateUserToken(UIntToStr(user.ID), c, 72),
	})
}

func (m *AuthController) GoogleSignIn(c echo.Context) error {
	var req models.GoogleAuthSignIn
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	payload, err := m.Google.ValidateIdToken(context.Background(), req.IdToken, os.Getenv("GOOGLE_CLIENT_ID"))
	if err != nil {
		log.Printf("Failed to validate Google id token: %v", err)
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Couldn't verify credentials"})
	}
	sub, ok := payload.Claims["sub"]
	if !ok {
		sentry.CaptureMessage(fmt.Sprintf("Error when fetching user data %s", payload.Claims))
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Couldn't verify credentials"})
	}
	googleId := sub.(string)
	email, _ := payload.Claims["email"].(string)
	picture, _ := payload.Claims["picture"].(string)
	name, _ := payload.Claims["name"].(string)

	db := c.Get("__db").(*gorm.DB)
	var user models.UserAccount
	r := db.Where("google_id = ?", googleId).Limit(1).Find(&user)
	if r.Error != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	isNew := r.RowsAffected == 0
	if isNew {
		user = models.UserAccount{
			Name:      name,
			Email:     email,
			GoogleID:  googleId,
			AvatarURL: picture,
			Status:    "FINISHED_AUTH",
			LastIp:    c.RealIP(),
		}
		if err := db.Create(&user).Error; err != nil {
			sentry.CaptureException(err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create account"})
		}
	} else if user.Banned {
		return echo.ErrForbidden
	}

	return c.JSON(http.StatusOK, models.SessionOut{
		Id:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Avatar:      user.AvatarURL,
		New:         isNew,
		AccessToken: GenerateUserToken(UIntToStr(user.ID), c, 72),
	})
}
