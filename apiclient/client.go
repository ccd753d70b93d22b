package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ClothingItem is the canonical client-side garment record. IDs are strings
// regardless of how the server encodes them, and ImageRef holds whatever
// image reference the server handed back (a presigned URL in practice).
type ClothingItem struct {
	ID          string  `json:"id"`
	ImageRef    string  `json:"imageurl"`
	MimeType    string  `json:"mimetype"`
	Category    string  `json:"category"`
	Color       string  `json:"color"`
	Pattern     *string `json:"pattern"`
	Style       string  `json:"style"`
	Season      string  `json:"season"`
	Description string  `json:"description"`
}

// ItemDraft is a new garment about to be catalogued. ImageData is the raw
// base64 payload of the photo.
type ItemDraft struct {
	ImageData   string  `json:"imageData"`
	MimeType    string  `json:"mimetype"`
	Category    string  `json:"category"`
	Color       string  `json:"color"`
	Pattern     *string `json:"pattern"`
	Style       string  `json:"style"`
	Season      string  `json:"season"`
	Description string  `json:"description"`
}

// Analysis is the structured classification the server returns for a photo.
type Analysis struct {
	Category    string `json:"category"`
	Color       string `json:"color"`
	Pattern     string `json:"pattern"`
	Style       string `json:"style"`
	Season      string `json:"season"`
	Description string `json:"description"`
}

// TokenSource supplies the bearer token for authenticated calls. An empty
// token means no session is available.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource for a fixed token string.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

type Client struct {
	BaseURL    string
	Tokens     TokenSource
	HTTPClient *http.Client
}

func New(baseURL string, tokens TokenSource) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Tokens:     tokens,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// itemRecord tolerates the wire variants different server builds have used:
// numeric or quoted ids, and imageurl / image_url / imageData for the image
// reference.
type itemRecord struct {
	ID          json.RawMessage `json:"id"`
	ImageUrl    string          `json:"imageurl"`
	ImageURLAlt string          `json:"image_url"`
	ImageData   string          `json:"imageData"`
	MimeType    string          `json:"mimetype"`
	Category    string          `json:"category"`
	Color       string          `json:"color"`
	Pattern     *string         `json:"pattern"`
	Style       string          `json:"style"`
	Season      string          `json:"season"`
	Description string          `json:"description"`
}

func (r itemRecord) toItem() ClothingItem {
	imageRef := r.ImageUrl
	if imageRef == "" {
		imageRef = r.ImageURLAlt
	}
	if imageRef == "" {
		imageRef = r.ImageData
	}
	return ClothingItem{
		ID:          strings.Trim(string(r.ID), `"`),
		ImageRef:    imageRef,
		MimeType:    r.MimeType,
		Category:    r.Category,
		Color:       r.Color,
		Pattern:     r.Pattern,
		Style:       r.Style,
		Season:      r.Season,
		Description: r.Description,
	}
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	token := ""
	if c.Tokens != nil {
		token = c.Tokens.Token()
	}
	if token == "" {
		return nil, &AuthError{Reason: "no access token available"}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("apiclient: failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("apiclient: failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// serverMessage pulls the human-readable message out of an error body.
func serverMessage(body []byte) string {
	var wrapper struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &wrapper); err == nil {
		if wrapper.Error != "" {
			return wrapper.Error
		}
		if wrapper.Message != "" {
			return wrapper.Message
		}
	}
	return strings.TrimSpace(string(body))
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return &AuthError{Reason: "server rejected the access token"}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &RemoteError{StatusCode: resp.StatusCode, Message: serverMessage(body)}
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("apiclient: failed to decode response: %w", err)
		}
	}
	return nil
}

// FetchAll returns every catalogued item for the current session.
func (c *Client) FetchAll(ctx context.Context) ([]ClothingItem, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/items", nil)
	if err != nil {
		return nil, err
	}

	var records []itemRecord
	if err := c.do(req, &records); err != nil {
		return nil, err
	}

	items := make([]ClothingItem, 0, len(records))
	for _, record := range records {
		items = append(items, record.toItem())
	}
	return items, nil
}

// Create catalogues a new item and returns the server's canonical record.
func (c *Client) Create(ctx context.Context, draft ItemDraft) (*ClothingItem, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/items", draft)
	if err != nil {
		return nil, err
	}

	var record itemRecord
	if err := c.do(req, &record); err != nil {
		return nil, err
	}
	item := record.toItem()
	return &item, nil
}

// Delete removes an item by id.
func (c *Client) Delete(ctx context.Context, id string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/items/"+id, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// Analyze submits a garment photo for classification. The endpoint is open,
// so a missing token is fine here; 5xx responses map to ServiceUnavailable
// so callers can fall back to manual entry.
func (c *Client) Analyze(ctx context.Context, imageData, mimeType string) (*Analysis, error) {
	payload := map[string]string{
		"imageData": imageData,
		"mimetype":  mimeType,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("apiclient: failed to encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("apiclient: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, &ServiceUnavailable{Message: serverMessage(respBody)}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &RemoteError{StatusCode: resp.StatusCode, Message: serverMessage(respBody)}
	}

	var analysis Analysis
	if err := json.Unmarshal(respBody, &analysis); err != nil {
		return nil, fmt.Errorf("apiclient: failed to decode response: %w", err)
	}
	return &analysis, nil
}
