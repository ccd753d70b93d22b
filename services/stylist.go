package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"
)

// ErrNoCredential is returned when the Gemini API key is not configured on
// the server. Callers should degrade gracefully (manual form entry, empty
// advisory result) instead of failing the whole flow.
var ErrNoCredential = errors.New("stylist: GENAI_API_KEY is not configured")

const stylistModel = "gemini-2.5-flash"
const styleboardModel = "gemini-2.5-flash-image"

// ItemContext is the wardrobe summary handed to the model. Only descriptive
// fields go into prompts, never image bytes, except for the two image-based
// operations which carry the image inline.
type ItemContext struct {
	ID          string
	Description string
	Category    string
	Color       string
	Style       string
}

// ItemAnalysis is the structured classification for a single garment photo.
// Pattern uses the literal "null" for pattern-less items, matching the
// response schema enum.
type ItemAnalysis struct {
	Category    string `json:"category"`
	Color       string `json:"color"`
	Pattern     string `json:"pattern"`
	Style       string `json:"style"`
	Season      string `json:"season"`
	Description string `json:"description"`
}

type Outfit struct {
	Name        string   `json:"name"`
	ItemIds     []string `json:"itemIds"`
	Reasoning   string   `json:"reasoning"`
	StylingTips string   `json:"stylingTips"`
	Accessories string   `json:"accessories"`
	Vibe        string   `json:"vibe"`
}

type OutfitIdeas struct {
	Outfits   []Outfit `json:"outfits"`
	MustHaves []string `json:"mustHaves,omitempty"`
}

type DaySuggestion struct {
	ItemIds   []string `json:"itemIds"`
	Reasoning string   `json:"reasoning"`
}

type OutfitCritique struct {
	Headline      string   `json:"headline"`
	OverallRating float64  `json:"overall_rating"`
	WhatWorks     []string `json:"what_works"`
	WhatToImprove []string `json:"what_to_improve"`
}

// StyleboardItem carries one garment photo into the styleboard prompt.
type StyleboardItem struct {
	Data        []byte
	MimeType    string
	Description string
}

type StylistProvider interface {
	AnalyzeItem(ctx context.Context, imageBytes []byte, mimeType string) (*ItemAnalysis, error)
	ComposeOutfits(ctx context.Context, items []ItemContext, occasion string, constraints string) (*OutfitIdeas, error)
	OutfitOfTheDay(ctx context.Context, items []ItemContext, weather string, calendarEvents string) (*DaySuggestion, error)
	CritiqueOutfit(ctx context.Context, imageBytes []byte, mimeType string) (*OutfitCritique, error)
	Chat(ctx context.Context, message string, items []ItemContext) (string, error)
	Styleboard(ctx context.Context, items []StyleboardItem) ([]byte, string, error)
}

// GoogleStylist talks to the Gemini API with structured response schemas.
type GoogleStylist struct{}

func newStylistClient(ctx context.Context) (*genai.Client, error) {
	apiKey := GetEnv("GENAI_API_KEY", os.Getenv("GOOGLE_API_KEY"))
	if apiKey == "" {
		return nil, ErrNoCredential
	}
	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
}

func itemLines(items []ItemContext) string {
	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, "ID %s: %s (%s, %s, %s)\n", item.ID, item.Description, item.Category, item.Color, item.Style)
	}
	return b.String()
}

func generateJSON(ctx context.Context, parts []*genai.Part, schema *genai.Schema, out any) error {
	client, err := newStylistClient(ctx)
	if err != nil {
		return err
	}

	result, err := client.Models.GenerateContent(ctx, stylistModel, []*genai.Content{{Parts: parts}}, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		CandidateCount:   1,
		ResponseSchema:   schema,
	})
	if err != nil {
		return fmt.Errorf("stylist: model call failed: %v", err)
	}
	if result.PromptFeedback != nil {
		return fmt.Errorf("stylist: content blocked: %s", result.PromptFeedback.BlockReasonMessage)
	}
	if err := json.Unmarshal([]byte(result.Text()), out); err != nil {
		return fmt.Errorf("stylist: unexpected model response: %v", err)
	}
	return nil
}

var stringArraySchema = &genai.Schema{Type: "array", Items: &genai.Schema{Type: "string"}}

func (GoogleStylist) AnalyzeItem(ctx context.Context, imageBytes []byte, mimeType string) (*ItemAnalysis, error) {
	parts := []*genai.Part{
		{Text: "You are an expert fashion cataloging AI. Your sole task is to analyze the provided image of a clothing item and return a single, valid JSON object with the specified schema. Do not include any text before or after the JSON. Analyze the user-provided image and return *only* the JSON object."},
		{InlineData: &genai.Blob{Data: imageBytes, MIMEType: mimeType}},
	}
	schema := &genai.Schema{
		Type: "object",
		Properties: map[string]*genai.Schema{
			"category":    {Type: "string", Enum: []string{"tops", "bottoms", "dress", "shoes", "accessories", "outerwear"}},
			"color":       {Type: "string", Description: "The dominant color of the item (e.g., 'Navy Blue', 'Red', 'Beige')"},
			"pattern":     {Type: "string", Enum: []string{"solid", "striped", "floral", "plaid", "graphic", "polka dot", "null"}},
			"style":       {Type: "string", Enum: []string{"casual", "formal", "business", "athletic", "streetwear", "bohemian", "minimalist"}},
			"season":      {Type: "string", Enum: []string{"spring", "summer", "fall", "winter", "all-season"}},
			"description": {Type: "string", Description: "A 2-5 word description (e.g., 'Blue Denim Jeans', 'Floral Off-Shoulder Top')"},
		},
		Required: []string{"category", "color", "pattern", "style", "season", "description"},
	}

	var analysis ItemAnalysis
	if err := generateJSON(ctx, parts, schema, &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}

func (GoogleStylist) ComposeOutfits(ctx context.Context, items []ItemContext, occasion string, constraints string) (*OutfitIdeas, error) {
	constraintLine := ""
	if constraints != "" {
		constraintLine = "Constraints: " + constraints
	}
	prompt := fmt.Sprintf(`You are a creative professional fashion stylist with deep knowledge of color theory, cultural backgrounds, and traditional attire. Given the available wardrobe, think smartly about color combinations and the user's culture to suggest outfits suitable for "%s".

Available wardrobe items:
%s

%s

Create exactly 2 outfit suggestions in JSON format, choosing *only* from the best options available in the provided wardrobe. **Do not suggest any items the user does not own.**

Your response must be *only* a single valid JSON object that matches the provided schema. Do not include any introductory text, markdown, or backticks.`, occasion, itemLines(items), constraintLine)

	schema := &genai.Schema{
		Type: "object",
		Properties: map[string]*genai.Schema{
			"outfits": {
				Type: "array",
				Items: &genai.Schema{
					Type: "object",
					Properties: map[string]*genai.Schema{
						"name":        {Type: "string", Description: "distinct outfit name"},
						"itemIds":     stringArraySchema,
						"reasoning":   {Type: "string", Description: "reflects how color, culture, or tradition fit the occasion"},
						"stylingTips": {Type: "string", Description: "concise, actionable advice for wearing and combining pieces"},
						"accessories": {Type: "string", Description: "suggest specific accessories to elevate the look"},
						"vibe":        {Type: "string", Description: "clear description of the overall effect"},
					},
					Required: []string{"name", "itemIds", "reasoning", "stylingTips", "accessories", "vibe"},
				},
			},
			"mustHaves": {Type: "array", Items: &genai.Schema{Type: "string"}, Description: "essential wardrobe items if the current wardrobe is lacking"},
		},
		Required: []string{"outfits"},
	}

	var ideas OutfitIdeas
	if err := generateJSON(ctx, []*genai.Part{{Text: prompt}}, schema, &ideas); err != nil {
		return nil, err
	}
	return &ideas, nil
}

func (GoogleStylist) OutfitOfTheDay(ctx context.Context, items []ItemContext, weather string, calendarEvents string) (*DaySuggestion, error) {
	prompt := fmt.Sprintf(`You are a proactive and helpful AI personal stylist named Aura. Your task is to suggest a single, complete, and stylish "Outfit of the Day" based on the user's available wardrobe, the weather, and their schedule.

**Today's Weather:**
%s

**Today's Schedule:**
%s

**User's Wardrobe:**
%s

Based on all this information, create one perfect outfit. Return your suggestion as a single, valid JSON object matching the provided schema. Do not include any text before or after the JSON. The reasoning should be a short, encouraging sentence explaining why this outfit is a great choice for today.`, weather, calendarEvents, itemLines(items))

	schema := &genai.Schema{
		Type: "object",
		Properties: map[string]*genai.Schema{
			"itemIds":   {Type: "array", Items: &genai.Schema{Type: "string"}, Description: "An array of IDs of the clothing items that make up the outfit."},
			"reasoning": {Type: "string", Description: "A 1-2 sentence explanation of why this outfit is perfect for today's weather and events."},
		},
		Required: []string{"itemIds", "reasoning"},
	}

	var suggestion DaySuggestion
	if err := generateJSON(ctx, []*genai.Part{{Text: prompt}}, schema, &suggestion); err != nil {
		return nil, err
	}
	return &suggestion, nil
}

func (GoogleStylist) CritiqueOutfit(ctx context.Context, imageBytes []byte, mimeType string) (*OutfitCritique, error) {
	prompt := `You are a professional, constructive, and encouraging fashion critic. Your goal is to provide helpful feedback on the user's outfit. Analyze the provided image and return a detailed, constructive critique as a single, valid JSON object.

The critique should include:
- A catchy, descriptive headline.
- An overall rating out of 10 (can be a decimal, e.g., 8.5).
- A list of specific things that work well.
- A list of specific, actionable suggestions for improvement.

Return *only* the JSON object.`

	parts := []*genai.Part{
		{Text: prompt},
		{InlineData: &genai.Blob{Data: imageBytes, MIMEType: mimeType}},
	}
	schema := &genai.Schema{
		Type: "object",
		Properties: map[string]*genai.Schema{
			"headline":        {Type: "string", Description: "A catchy, descriptive headline for the outfit review."},
			"overall_rating":  {Type: "number", Description: "A numerical rating for the outfit out of 10."},
			"what_works":      {Type: "array", Items: &genai.Schema{Type: "string"}, Description: "A list of positive aspects of the outfit."},
			"what_to_improve": {Type: "array", Items: &genai.Schema{Type: "string"}, Description: "A list of constructive suggestions for improvement."},
		},
		Required: []string{"headline", "overall_rating", "what_works", "what_to_improve"},
	}

	var critique OutfitCritique
	if err := generateJSON(ctx, parts, schema, &critique); err != nil {
		return nil, err
	}
	return &critique, nil
}

// Styleboard renders a synthetic model wearing the given garments and
// returns the generated image bytes with their mime type.
func (GoogleStylist) Styleboard(ctx context.Context, items []StyleboardItem) ([]byte, string, error) {
	client, err := newStylistClient(ctx)
	if err != nil {
		return nil, "", err
	}

	parts := []*genai.Part{
		{Text: "You are an AI fashion art director. Your task is to generate one, clean, photorealistic image of an AI-generated mannequin or model wearing all the clothing items I provide. The model should be standing on a plain white studio background. Show the full body. This is for a 'Styleboard' or 'mockup'. Do *not* use a real person. Generate a synthetic model."},
	}
	for _, item := range items {
		description := item.Description
		if description == "" {
			description = "item"
		}
		parts = append(parts,
			&genai.Part{Text: fmt.Sprintf("Here is a clothing item (%s):", description)},
			&genai.Part{InlineData: &genai.Blob{Data: item.Data, MIMEType: item.MimeType}},
		)
	}
	parts = append(parts, &genai.Part{Text: "Now, generate the single, complete image of the AI model wearing all of these items. Return only the image."})

	result, err := client.Models.GenerateContent(ctx, styleboardModel, []*genai.Content{{Parts: parts}}, &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE"},
	})
	if err != nil {
		return nil, "", fmt.Errorf("stylist: styleboard call failed: %v", err)
	}
	if result.PromptFeedback != nil {
		return nil, "", fmt.Errorf("stylist: content blocked: %s", result.PromptFeedback.BlockReasonMessage)
	}
	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && strings.HasPrefix(part.InlineData.MIMEType, "image/") {
				return part.InlineData.Data, part.InlineData.MIMEType, nil
			}
		}
	}
	return nil, "", errors.New("stylist: no image in styleboard response")
}

func (GoogleStylist) Chat(ctx context.Context, message string, items []ItemContext) (string, error) {
	client, err := newStylistClient(ctx)
	if err != nil {
		return "", err
	}

	wardrobeContext := ""
	if len(items) > 0 {
		var descriptions []string
		for _, item := range items {
			descriptions = append(descriptions, fmt.Sprintf("%s (%s in %s)", item.Description, item.Category, item.Color))
		}
		wardrobeContext = "\n\nUser's wardrobe includes: " + strings.Join(descriptions, ", ")
	}

	prompt := fmt.Sprintf(`You are "Aura," an AI personal stylist. Your personality is warm, encouraging, knowledgeable, and slightly playful. You are an expert in color theory, body types, and modern trends. Your goal is to make the user feel confident and stylish.

**Your Rules:**
1.  **Be Friendly & Concise:** Keep your answers short and conversational (2-3 sentences max). Use an emoji where it feels natural.
2.  **Stay On-Topic (Eligibility):** Only provide fashion and style advice. If the user asks for advice *outside* of fashion (like medical, financial, or serious personal problems), you MUST gently redirect them back to styling.
3.  **Be Practical:** If their wardrobe is missing items for their request, you can politely suggest 1-2 key pieces that would help.
4.  **Use Context:** Use the user's wardrobe context if it's provided.%s

**CONVERSATION:**
User: %s
Aura:`, wardrobeContext, message)

	result, err := client.Models.GenerateContent(ctx, stylistModel, []*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}}, &genai.GenerateContentConfig{
		CandidateCount: 1,
	})
	if err != nil {
		return "", fmt.Errorf("stylist: chat failed: %v", err)
	}
	return result.Text(), nil
}
