package models

import "github.com/go-playground/validator"

// WardrobeItem is a catalogued garment. The image itself lives in the blob
// store under ImageKey; only the key is persisted.
type WardrobeItem struct {
	JsonModel
	Owner       UserAccount `json:"-"`
	OwnerID     uint        `json:"-"`
	MimeType    string      `json:"mimetype"`
	Category    string      `json:"category"` // tops, bottoms, dress, shoes, accessories, outerwear
	Color       string      `json:"color"`
	Pattern     *string     `json:"pattern"` // nullable: plain items carry no pattern
	Style       string      `json:"style"`
	Season      string      `json:"season"`
	Description string      `gorm:"type:text" json:"description"`
	ImageKey    *string     `json:"-"`
}

var Categories = []string{"tops", "bottoms", "dress", "shoes", "accessories", "outerwear"}
var Patterns = []string{"solid", "striped", "floral", "plaid", "graphic", "polka dot", "null"}
var Styles = []string{"casual", "formal", "business", "athletic", "streetwear", "bohemian", "minimalist"}
var Seasons = []string{"spring", "summer", "fall", "winter", "all-season"}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func ValidateCategory(fl validator.FieldLevel) bool {
	return contains(Categories, fl.Field().String())
}

// ValidatePattern accepts the literal "null" too, the classifier returns it
// for pattern-less items.
func ValidatePattern(fl validator.FieldLevel) bool {
	return contains(Patterns, fl.Field().String())
}

func ValidateStyle(fl validator.FieldLevel) bool {
	return contains(Styles, fl.Field().String())
}

func ValidateSeason(fl validator.FieldLevel) bool {
	return contains(Seasons, fl.Field().String())
}
