package ootd

import (
	"context"

	"auraapi/apiclient"
	"auraapi/services"
)

// StylistAdvisor adapts the Gemini stylist into the cache's Advisor,
// carrying the day's weather and schedule context into the prompt.
type StylistAdvisor struct {
	Stylist        services.StylistProvider
	Weather        string
	CalendarEvents string
}

func (a *StylistAdvisor) SuggestOutfit(ctx context.Context, items []apiclient.ClothingItem) (*Entry, error) {
	contexts := make([]services.ItemContext, 0, len(items))
	for _, item := range items {
		contexts = append(contexts, services.ItemContext{
			ID:          item.ID,
			Description: item.Description,
			Category:    item.Category,
			Color:       item.Color,
			Style:       item.Style,
		})
	}

	suggestion, err := a.Stylist.OutfitOfTheDay(ctx, contexts, a.Weather, a.CalendarEvents)
	if err != nil {
		return nil, err
	}
	return &Entry{ItemIds: suggestion.ItemIds, Reasoning: suggestion.Reasoning}, nil
}
