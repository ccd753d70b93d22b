package test

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"time"

	"auraapi/models"
	"auraapi/services"

	"github.com/golang-jwt/jwt/v4"
	"google.golang.org/api/idtoken"
	"gorm.io/gorm"
)

func JsonString(model interface{}) string {
	bytes, _ := json.Marshal(model)
	return string(bytes)
}

func NewJSONRequest(method string, target string, param interface{}) *http.Request {

	req := httptest.NewRequest(method, target, strings.NewReader(JsonString(param)))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	return req
}

func GenerateUserToken(userPk string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userPk,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 72)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	t, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		log.Fatalf("Error when signing user token for %s. Error %s ", userPk, err)
	}
	return t
}

func NewJSONAuthRequest(method string, target string, userPk string, param interface{}) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(JsonString(param)))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	token := GenerateUserToken(userPk)
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", token))
	return req
}

func NewJSONAuthRequestCustomAuth(method string, target string, authorizationString string, param interface{}) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(JsonString(param)))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	req.Header.Add("Authorization", authorizationString)
	return req
}

func NewRefString(data string) *string {
	return &data
}

func FakeUser(db *gorm.DB) *models.UserAccount {
	user := &models.UserAccount{
		Name:      "OurName",
		Email:     "email@example.com",
		GoogleID:  "12232",
		LastIp:    "123.122.122.122",
		Status:    "FINISHED_AUTH",
		AvatarURL: "pictureurl",
	}
	db.Create(&user)
	return user
}

func FakeUserV2(db *gorm.DB, userName string, email string) *models.UserAccount {
	if email == "" {
		email = "email@example.com"
	}
	user := &models.UserAccount{
		Name:      userName,
		Email:     email,
		GoogleID:  fmt.Sprintf("google-%s", email),
		LastIp:    "123.122.122.122",
		Status:    "FINISHED_AUTH",
		AvatarURL: "pictureurl",
	}
	db.Create(&user)
	return user
}

type GoogleServiceMock struct{}

func (gsm GoogleServiceMock) ValidateIdToken(ctx context.Context, idToken string, audience string) (*idtoken.Payload, error) {

	return &idtoken.Payload{Issuer: "Issue", Audience: "AAA", Expires: 119919191919, IssuedAt: 12312321321, Subject: "fake@example.com", Claims: map[string]interface{}{
		"email":   "fake@example.com",
		"picture": "pictureurl",
		"name":    "Fake User",
		"sub":     "123googleid",
	}}, nil

}

// AWSProviderMock records uploads and deletes so tests can assert on blob
// store traffic without touching R2.
type AWSProviderMock struct {
	MockUrl string

	mu          sync.Mutex
	Uploaded    map[string][]byte
	Deleted     []string
	ListedKeys  []string
	FailUpload  bool
	FailDelete  bool
	FailPresign bool
}

func (awsService *AWSProviderMock) InitClient(ctx context.Context) error {
	return nil
}

func (awsService *AWSProviderMock) UploadObject(ctx context.Context, bucketName, key string, data []byte, contentType string) error {
	awsService.mu.Lock()
	defer awsService.mu.Unlock()
	if awsService.FailUpload {
		return fmt.Errorf("mock upload failure for %s", key)
	}
	if awsService.Uploaded == nil {
		awsService.Uploaded = map[string][]byte{}
	}
	awsService.Uploaded[key] = data
	return nil
}

func (awsService *AWSProviderMock) DeleteObject(ctx context.Context, bucketName, key string) error {
	awsService.mu.Lock()
	defer awsService.mu.Unlock()
	if awsService.FailDelete {
		return fmt.Errorf("mock delete failure for %s", key)
	}
	awsService.Deleted = append(awsService.Deleted, key)
	return nil
}

func (awsService *AWSProviderMock) ListObjectKeys(ctx context.Context, bucketName, prefix string, modifiedBefore time.Time) ([]string, error) {
	awsService.mu.Lock()
	defer awsService.mu.Unlock()
	return awsService.ListedKeys, nil
}

func (awsService *AWSProviderMock) GetPresignedReadURL(ctx context.Context, bucketName, key string) (string, error) {
	awsService.mu.Lock()
	defer awsService.mu.Unlock()
	if awsService.FailPresign {
		return "", fmt.Errorf("mock presign failure for %s", key)
	}
	if awsService.MockUrl != "" {
		return awsService.MockUrl, nil
	}
	return fmt.Sprintf("https://fakebucketurl.com/%s", key), nil
}

// URLCacheMock hands back deterministic URLs without a backing cache.
// BaseURL lets a test point reads at an httptest server.
type URLCacheMock struct {
	FailGet bool
	BaseURL string
}

func (m *URLCacheMock) GetReadURL(ctx context.Context, objectKey string) (string, error) {
	if m.FailGet {
		return "", fmt.Errorf("mock cache failure for %s", objectKey)
	}
	if objectKey == "" {
		return "", nil
	}
	base := m.BaseURL
	if base == "" {
		base = "https://fakecache.com"
	}
	return fmt.Sprintf("%s/%s", base, objectKey), nil
}

// StylistMock returns canned advisory responses and counts calls so tests
// can assert the cache actually short-circuits.
type StylistMock struct {
	mu              sync.Mutex
	AnalyzeCalls    int
	ComposeCalls    int
	OOTDCalls       int
	CritiqueCalls   int
	ChatCalls       int
	StyleboardCalls int

	AnalyzeErr    error
	OOTDErr       error
	StyleboardErr error

	OOTDItemIds     []string
	StyleboardItems []services.StyleboardItem
}

func (m *StylistMock) AnalyzeItem(ctx context.Context, imageBytes []byte, mimeType string) (*services.ItemAnalysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AnalyzeCalls++
	if m.AnalyzeErr != nil {
		return nil, m.AnalyzeErr
	}
	return &services.ItemAnalysis{
		Category:    "tops",
		Color:       "Navy Blue",
		Pattern:     "solid",
		Style:       "casual",
		Season:      "all-season",
		Description: "Navy Cotton T-Shirt",
	}, nil
}

func (m *StylistMock) ComposeOutfits(ctx context.Context, items []services.ItemContext, occasion string, constraints string) (*services.OutfitIdeas, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ComposeCalls++
	itemIds := []string{}
	if len(items) > 0 {
		itemIds = append(itemIds, items[0].ID)
	}
	return &services.OutfitIdeas{
		Outfits: []services.Outfit{
			{
				Name:        "Weekend Wanderer",
				ItemIds:     itemIds,
				Reasoning:   "Relaxed pieces that still read put-together.",
				StylingTips: "Roll the sleeves once.",
				Accessories: "A simple leather watch.",
				Vibe:        "effortless casual",
			},
		},
	}, nil
}

func (m *StylistMock) OutfitOfTheDay(ctx context.Context, items []services.ItemContext, weather string, calendarEvents string) (*services.DaySuggestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OOTDCalls++
	if m.OOTDErr != nil {
		return nil, m.OOTDErr
	}
	itemIds := m.OOTDItemIds
	if itemIds == nil {
		for _, item := range items {
			itemIds = append(itemIds, item.ID)
		}
	}
	return &services.DaySuggestion{
		ItemIds:   itemIds,
		Reasoning: "Comfortable layers for a mild day.",
	}, nil
}

func (m *StylistMock) CritiqueOutfit(ctx context.Context, imageBytes []byte, mimeType string) (*services.OutfitCritique, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CritiqueCalls++
	return &services.OutfitCritique{
		Headline:      "Clean and confident",
		OverallRating: 8.5,
		WhatWorks:     []string{"Color balance"},
		WhatToImprove: []string{"Try a bolder shoe"},
	}, nil
}

func (m *StylistMock) Styleboard(ctx context.Context, items []services.StyleboardItem) ([]byte, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StyleboardCalls++
	m.StyleboardItems = items
	if m.StyleboardErr != nil {
		return nil, "", m.StyleboardErr
	}
	return []byte("fake-styleboard-image"), "image/png", nil
}

func (m *StylistMock) Chat(ctx context.Context, message string, items []services.ItemContext) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ChatCalls++
	return "Love that idea! Pair it with your white sneakers. ✨", nil
}
