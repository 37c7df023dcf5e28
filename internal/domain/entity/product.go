package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product statuses. Non-admins can only create and keep products in draft.
const (
	StatusDraft    = "draft"
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Categories is the fixed catalog list.
var Categories = []string{
	"electronics",
	"clothing",
	"books",
	"home",
	"sports",
	"beauty",
	"toys",
	"automotive",
}

const (
	MaxImages = 10
	MaxTags   = 10
)

type ProductImage struct {
	URL       string `json:"url" bson:"url"`
	Thumbnail string `json:"thumbnail,omitempty" bson:"thumbnail,omitempty"`
	Alt       string `json:"alt" bson:"alt"`
	Size      int64  `json:"size" bson:"size"`
	IsPrimary bool   `json:"isPrimary" bson:"isPrimary"`
}

type Product struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name          string             `json:"name" bson:"name"`
	Description   string             `json:"description" bson:"description"`
	Images        []ProductImage     `json:"images" bson:"images"`
	Price         float64            `json:"price" bson:"price"`
	OriginalPrice float64            `json:"originalPrice" bson:"originalPrice"`
	Category      string             `json:"category" bson:"category"`
	SKU           string             `json:"sku,omitempty" bson:"sku,omitempty"`
	Supplier      string             `json:"supplier,omitempty" bson:"supplier,omitempty"`
	Stock         int                `json:"stock" bson:"stock"`
	Status        string             `json:"status" bson:"status"`
	Tags          []string           `json:"tags" bson:"tags"`
	Rating        float64            `json:"rating" bson:"rating"`
	ReviewCount   int                `json:"reviewCount" bson:"reviewCount"`
	CreatedBy     primitive.ObjectID `json:"createdBy" bson:"createdBy"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// NormalizePrimary enforces the single-primary invariant before persist:
// if no image is marked primary the first one becomes primary, and any
// extra primary flags after the first are cleared.
func (p *Product) NormalizePrimary() {
	if len(p.Images) == 0 {
		return
	}

	hasPrimary := false
	for i := range p.Images {
		if p.Images[i].IsPrimary {
			if hasPrimary {
				p.Images[i].IsPrimary = false
				continue
			}
			hasPrimary = true
		}
	}
	if !hasPrimary {
		p.Images[0].IsPrimary = true
	}
}

// PrimaryImage returns the image flagged for list views, falling back to
// the first image.
func (p *Product) PrimaryImage() *ProductImage {
	for i := range p.Images {
		if p.Images[i].IsPrimary {
			return &p.Images[i]
		}
	}
	if len(p.Images) > 0 {
		return &p.Images[0]
	}
	return nil
}

func ValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

func ValidStatus(status string) bool {
	return status == StatusDraft || status == StatusActive || status == StatusInactive
}
