package recipes

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/grocify/backend/internal/models"
)

const extractInstruction = `You are an assistant that identifies grocery items from a photo. ` +
	`Respond with a single JSON object with keys "item_name" (string), "quantity" (number), ` +
	`"unit" (string) and "allergens" (array of strings naming common allergens the item may contain). ` +
	`Use an empty array when no allergens apply.`

const recipeInstruction = `You are a chef creating a recipe from a user's pantry, preferring ` +
	`ingredients closest to their expiry date. Respond with a single JSON object with keys ` +
	`"recipe_name" (string), "description" (string), "ingredients" (array of strings), ` +
	`"steps" (array of strings) and "missing_ingredients" (array of strings for anything ` +
	`essential the user does not have).`

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Completer sends a conversation to the language model and returns the reply.
type Completer interface {
	Complete(ctx context.Context, messages []ChatMessage, jsonOnly bool) (string, error)
}

// UserInfo looks up stored user profile data.
type UserInfo interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// Handler holds the vision-extraction, recipe and chat HTTP handlers.
type Handler struct {
	ai    Completer
	users UserInfo
}

func NewHandler(ai Completer, users UserInfo) *Handler {
	return &Handler{ai: ai, users: users}
}

// ExtractInfo sends a photographed item to the vision model and returns the
// extracted name, quantity, unit and allergens.
func (h *Handler) ExtractInfo(w http.ResponseWriter, r *http.Request) {
	var req models.ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	if req.Image == "" {
		http.Error(w, `{"error":"image is required"}`, http.StatusBadRequest)
		return
	}

	dataURI, ok := normalizeDataURI(req.Image)
	if !ok {
		http.Error(w, `{"error":"image must be a base64 data URI"}`, http.StatusBadRequest)
		return
	}

	messages := []ChatMessage{
		{Role: "user", Content: []contentPart{
			textPart(extractInstruction),
			imagePart(dataURI),
		}},
	}
	reply, err := h.ai.Complete(r.Context(), messages, true)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	var extracted models.ExtractedItem
	if err := json.Unmarshal([]byte(reply), &extracted); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": fmt.Sprintf("model returned malformed JSON: %v", err)})
		return
	}
	writeJSON(w, http.StatusCreated, extracted)
}

// GenerateRecipe builds a recipe from the supplied ingredient list.
func (h *Handler) GenerateRecipe(w http.ResponseWriter, r *http.Request) {
	h.generateRecipe(w, r, false)
}

// GenerateCustomRecipe additionally honors dietary restrictions, cuisine and
// special requests.
func (h *Handler) GenerateCustomRecipe(w http.ResponseWriter, r *http.Request) {
	h.generateRecipe(w, r, true)
}

func (h *Handler) generateRecipe(w http.ResponseWriter, r *http.Request, custom bool) {
	var req models.RecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	if len(req.Ingredients) == 0 {
		http.Error(w, `{"error":"no ingredients provided"}`, http.StatusBadRequest)
		return
	}

	instruction := recipeInstruction
	if custom {
		if len(req.DietaryRestrictions) > 0 {
			instruction += fmt.Sprintf(" The recipe must respect these dietary restrictions: %s.", strings.Join(req.DietaryRestrictions, ", "))
		}
		if req.Cuisine != "" {
			instruction += fmt.Sprintf(" The recipe should be %s cuisine.", req.Cuisine)
		}
		if req.SpecialRequests != "" {
			instruction += fmt.Sprintf(" Special requests: %s.", req.SpecialRequests)
		}
	}

	messages := []ChatMessage{
		{Role: "system", Content: instruction},
		{Role: "user", Content: "My inventory:\n" + ingredientLines(req.Ingredients)},
	}
	reply, err := h.ai.Complete(r.Context(), messages, true)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	// The model's JSON object is returned verbatim; it is parsed only to
	// prove it is well-formed.
	var recipe map[string]any
	if err := json.Unmarshal([]byte(reply), &recipe); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": fmt.Sprintf("model returned malformed JSON: %v", err)})
		return
	}
	writeJSON(w, http.StatusOK, json.RawMessage(reply))
}

// ChatRecipe forwards a recipe conversation to the model. The fixed recipe
// context is prepended as a system turn on every call.
func (h *Handler) ChatRecipe(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	if len(req.Messages) == 0 {
		http.Error(w, `{"error":"messages are required"}`, http.StatusBadRequest)
		return
	}

	system := fmt.Sprintf(
		"You are a cooking assistant answering questions about this recipe.\nRecipe: %s\nDescription: %s\nIngredients: %s\nSteps: %s",
		req.RecipeName, req.Description,
		strings.Join(req.Ingredients, "; "),
		strings.Join(req.Steps, " | "),
	)
	messages := []ChatMessage{{Role: "system", Content: system}}
	for _, m := range req.Messages {
		messages = append(messages, ChatMessage{Role: m.Role, Content: m.Content})
	}

	reply, err := h.ai.Complete(r.Context(), messages, false)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"response": reply})
}

// GetItemInfo asks the model whether an item suits the caller's stored
// dietary restrictions and for a typical use-by date.
func (h *Handler) GetItemInfo(w http.ResponseWriter, r *http.Request) {
	username := r.Context().Value("username").(string)

	var req models.ItemInfoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	if req.ItemName == "" {
		http.Error(w, `{"error":"item_name is required"}`, http.StatusBadRequest)
		return
	}

	restrictions := "none"
	user, err := h.users.GetUserByUsername(r.Context(), username)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if len(user.DietaryRestrictions) > 0 {
		restrictions = strings.Join(user.DietaryRestrictions, ", ")
	}

	instruction := fmt.Sprintf(
		`You judge grocery items. The user's dietary restrictions: %s. Today is %s. `+
			`Respond with a single JSON object with keys "dietary_compatible" (boolean: whether `+
			`the item suits the restrictions) and "estimated_expiry_date" (string, YYYY-MM-DD, `+
			`a typical use-by date for the item bought today).`,
		restrictions, time.Now().Format("2006-01-02"),
	)
	messages := []ChatMessage{
		{Role: "system", Content: instruction},
		{Role: "user", Content: req.ItemName},
	}
	reply, err := h.ai.Complete(r.Context(), messages, true)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	var info map[string]any
	if err := json.Unmarshal([]byte(reply), &info); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": fmt.Sprintf("model returned malformed JSON: %v", err)})
		return
	}
	writeJSON(w, http.StatusOK, json.RawMessage(reply))
}

// ingredientLines renders the tolerant ingredient list as prompt lines.
func ingredientLines(ingredients []models.Ingredient) string {
	var b strings.Builder
	for _, ing := range ingredients {
		b.WriteString("- ")
		if ing.Quantity > 0 && ing.Unit != "" {
			fmt.Fprintf(&b, "%d %s ", ing.Quantity, ing.Unit)
		}
		b.WriteString(ing.ItemName)
		if ing.ExpiryDate != "" {
			fmt.Fprintf(&b, " (expires %s)", ing.ExpiryDate)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// normalizeDataURI validates a "data:<mime>;base64,<payload>" image and
// re-encodes it so the model always receives canonical base64.
func normalizeDataURI(s string) (string, bool) {
	if !strings.HasPrefix(s, "data:") {
		return "", false
	}
	meta, payload, found := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
	if !found || !strings.HasSuffix(meta, ";base64") {
		return "", false
	}
	mime := strings.TrimSuffix(meta, ";base64")
	if !strings.HasPrefix(mime, "image/") {
		return "", false
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		return "", false
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data)), true
}
