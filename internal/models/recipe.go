package models

import "encoding/json"

// Ingredient is one entry of a recipe request. Clients send either plain
// strings or raw inventory items, so both forms unmarshal.
type Ingredient struct {
	ItemName   string `json:"item_name"`
	Quantity   int    `json:"quantity"`
	Unit       string `json:"unit"`
	ExpiryDate string `json:"expiry_date"`
}

func (i *Ingredient) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		i.ItemName = name
		return nil
	}
	type plain Ingredient
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*i = Ingredient(p)
	return nil
}

// RecipeRequest is the JSON body for the generate-recipe routes. The
// preference fields are only read by /api/generate-custom-recipe.
type RecipeRequest struct {
	Ingredients         []Ingredient `json:"ingredients"`
	DietaryRestrictions []string     `json:"dietary_restrictions"`
	Cuisine             string       `json:"cuisine"`
	SpecialRequests     string       `json:"special_requests"`
}

// ChatTurn is one message of a recipe conversation.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the JSON body for POST /api/chat-recipe. The recipe fields
// carry the context of the recipe being discussed; no conversation state is
// kept server-side, so the full history is resent each turn.
type ChatRequest struct {
	Messages    []ChatTurn `json:"messages"`
	RecipeName  string     `json:"recipe_name"`
	Description string     `json:"description"`
	Ingredients []string   `json:"ingredients"`
	Steps       []string   `json:"steps"`
}

// ExtractRequest is the JSON body for POST /api/extract-info.
type ExtractRequest struct {
	Image string `json:"image"`
}

// ExtractedItem is the shape the vision model is instructed to return.
type ExtractedItem struct {
	ItemName  string   `json:"item_name"`
	Quantity  int      `json:"quantity,omitempty"`
	Unit      string   `json:"unit,omitempty"`
	Allergens []string `json:"allergens"`
}

// ItemInfoRequest is the JSON body for POST /api/get-item-info.
type ItemInfoRequest struct {
	ItemName string `json:"item_name"`
}
