package closet

import "auraapi/apiclient"

func strPtr(s string) *string { return &s }

// seedItems is the starter wardrobe shown before any remote data arrives,
// and kept when the remote load fails or comes back empty.
func seedItems() []apiclient.ClothingItem {
	return []apiclient.ClothingItem{
		{
			ID:          "1",
			ImageRef:    "https://images.unsplash.com/photo-1576566588028-4147f3842f27?w=400&h=400&fit=crop",
			Category:    "tops",
			Color:       "Black",
			Pattern:     strPtr("graphic"),
			Style:       "streetwear",
			Season:      "all-season",
			Description: "Black Graphic T-Shirt",
		},
		{
			ID:          "2",
			ImageRef:    "https://images.unsplash.com/photo-1542272604-787c3835535d?w=400&h=400&fit=crop",
			Category:    "bottoms",
			Color:       "Blue",
			Pattern:     strPtr("solid"),
			Style:       "casual",
			Season:      "all-season",
			Description: "Blue Denim Jeans",
		},
		{
			ID:          "3",
			ImageRef:    "https://images.unsplash.com/photo-1549298916-b41d501d3772?w=400&h=400&fit=crop",
			Category:    "shoes",
			Color:       "White",
			Pattern:     strPtr("solid"),
			Style:       "casual",
			Season:      "all-season",
			Description: "White Sneakers",
		},
		{
			ID:          "4",
			ImageRef:    "https://images.unsplash.com/photo-1551028719-00167b16eac5?w=400&h=400&fit=crop",
			Category:    "outerwear",
			Color:       "Brown",
			Pattern:     strPtr("solid"),
			Style:       "casual",
			Season:      "fall",
			Description: "Brown Leather Jacket",
		},
	}
}
