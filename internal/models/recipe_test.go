package models

import (
	"encoding/json"
	"testing"
)

func TestIngredientUnmarshalForms(t *testing.T) {
	var req RecipeRequest
	payload := `{"ingredients":[
		"milk",
		{"item_name":"Eggs","quantity":6,"unit":"piece","expiry_date":"2025-01-05"}
	]}`
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(req.Ingredients) != 2 {
		t.Fatalf("got %d ingredients, want 2", len(req.Ingredients))
	}
	if req.Ingredients[0].ItemName != "milk" {
		t.Errorf("string form: %+v", req.Ingredients[0])
	}
	if req.Ingredients[1].ItemName != "Eggs" || req.Ingredients[1].Quantity != 6 {
		t.Errorf("object form: %+v", req.Ingredients[1])
	}
}

func TestIngredientUnmarshalInvalid(t *testing.T) {
	var req RecipeRequest
	if err := json.Unmarshal([]byte(`{"ingredients":[42]}`), &req); err == nil {
		t.Error("expected error for numeric ingredient")
	}
}
