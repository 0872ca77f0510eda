package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Item is a single inventory record stored in MongoDB. Records are tagged
// with the owning username and every query filters on it.
type Item struct {
	ID         primitive.ObjectID `json:"_id"               bson:"_id,omitempty"`
	Username   string             `json:"-"                 bson:"username"`
	ItemName   string             `json:"item_name"         bson:"item_name"`
	Image      string             `json:"image"             bson:"image"`
	ImageKey   string             `json:"-"                 bson:"image_key,omitempty"`
	Barcode    string             `json:"barcode,omitempty" bson:"barcode,omitempty"`
	Quantity   int                `json:"quantity"          bson:"quantity"`
	Unit       string             `json:"unit"              bson:"unit"`
	ExpiryDate string             `json:"expiry_date"       bson:"expiry_date"`
	CreatedAt  time.Time          `json:"created_at"        bson:"created_at"`
}

// AddItemRequest is the JSON body for POST /api/add-item.
type AddItemRequest struct {
	Barcode    string `json:"barcode"`
	Name       string `json:"name"`
	Image      string `json:"image"`
	ExpiryDate string `json:"expiry_date"`
}
