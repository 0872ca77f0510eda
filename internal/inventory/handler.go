package inventory

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/grocify/backend/internal/models"
	"github.com/grocify/backend/internal/store"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ItemStore defines the interface for inventory persistence.
type ItemStore interface {
	Insert(ctx context.Context, item *models.Item) (string, error)
	ListByOwner(ctx context.Context, username string) ([]models.Item, error)
	GetOwned(ctx context.Context, id, username string) (*models.Item, error)
	DeleteOwned(ctx context.Context, id, username string) error
}

// FileStore defines the interface for image object storage.
type FileStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, string, error)
	Remove(ctx context.Context, key string) error
}

// ProductLookup resolves a barcode to product metadata.
type ProductLookup interface {
	Lookup(ctx context.Context, barcode string) (*Product, error)
}

// Handler holds inventory HTTP handlers.
type Handler struct {
	items   ItemStore
	images  FileStore
	barcode ProductLookup
}

func NewHandler(items ItemStore, images FileStore, barcode ProductLookup) *Handler {
	return &Handler{items: items, images: images, barcode: barcode}
}

// AddItem inserts an inventory record tagged with the caller's identity.
// Data-URI images are offloaded to object storage and replaced with a
// served path; plain URLs pass through untouched.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	username := r.Context().Value("username").(string)

	var req models.AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Image == "" || req.ExpiryDate == "" {
		http.Error(w, `{"error":"missing data"}`, http.StatusBadRequest)
		return
	}

	item := &models.Item{
		Username:   username,
		ItemName:   req.Name,
		Image:      req.Image,
		Barcode:    req.Barcode,
		Quantity:   1,
		Unit:       "piece",
		ExpiryDate: req.ExpiryDate,
	}

	if mime, data, ok := parseDataURI(req.Image); ok {
		key := fmt.Sprintf("items/%s%s", uuid.New().String(), extForMime(mime))
		if err := h.images.Upload(r.Context(), key, data, mime); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": fmt.Sprintf("image upload failed: %v", err)})
			return
		}
		item.ImageKey = key
		item.Image = "/api/images/" + key
	}

	if _, err := h.items.Insert(r.Context(), item); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

// List returns all items owned by the caller.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	username := r.Context().Value("username").(string)

	items, err := h.items.ListByOwner(r.Context(), username)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if items == nil {
		items = []models.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

// Delete removes an item the caller owns. A foreign or unknown id is a 404
// either way, so existence never leaks.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	username := r.Context().Value("username").(string)
	id := chi.URLParam(r, "id")

	item, err := h.items.GetOwned(r.Context(), id, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, `{"error":"item not found"}`, http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if err := h.items.DeleteOwned(r.Context(), id, username); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, `{"error":"item not found"}`, http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	// Clean up the stored image, if this item carried one.
	if item.ImageKey != "" {
		if err := h.images.Remove(r.Context(), item.ImageKey); err != nil {
			log.Printf("image remove error (non-fatal): %v", err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// LookupBarcode proxies a barcode to the product database.
func (h *Handler) LookupBarcode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	product, err := h.barcode.Lookup(r.Context(), code)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			http.Error(w, `{"error":"product not found"}`, http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// ServeImage streams a stored item image.
func (h *Handler) ServeImage(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")

	data, contentType, err := h.images.Download(r.Context(), key)
	if err != nil {
		http.Error(w, `{"error":"image not found"}`, http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

// parseDataURI splits a "data:<mime>;base64,<payload>" string into its mime
// type and decoded bytes.
func parseDataURI(s string) (string, []byte, bool) {
	if !strings.HasPrefix(s, "data:") {
		return "", nil, false
	}
	rest := strings.TrimPrefix(s, "data:")
	meta, payload, found := strings.Cut(rest, ",")
	if !found || !strings.HasSuffix(meta, ";base64") {
		return "", nil, false
	}
	mime := strings.TrimSuffix(meta, ";base64")
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, false
	}
	return mime, data, true
}

func extForMime(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
