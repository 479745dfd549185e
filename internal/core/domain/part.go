package domain

import "strings"

// Part is a catalog item. Active is the only visibility flag; parts are never deleted.
type Part struct {
	ID          int64    `json:"id" bson:"_id"`
	Name        *string  `json:"name" bson:"name"`
	Brand       *string  `json:"brand" bson:"brand"`
	Description *string  `json:"description" bson:"description"`
	Price       *float64 `json:"price" bson:"price"`
	ImageRef    *string  `json:"image_ref" bson:"image_ref"`
	Active      bool     `json:"active" bson:"active"`
}

// PartFields is an optional patch over the editable attributes of a Part.
// A nil field means "not supplied".
type PartFields struct {
	Name        *string
	Brand       *string
	Description *string
	Price       *float64
	ImageRef    *string
}

// Normalize drops blank text values so they count as not supplied.
func (f PartFields) Normalize() PartFields {
	f.Name = nonBlank(f.Name)
	f.Brand = nonBlank(f.Brand)
	f.Description = nonBlank(f.Description)
	f.ImageRef = nonBlank(f.ImageRef)
	return f
}

// IsEmpty reports whether the patch carries no supplied field.
func (f PartFields) IsEmpty() bool {
	return f.Name == nil && f.Brand == nil && f.Description == nil && f.Price == nil && f.ImageRef == nil
}

// Apply merges the supplied fields onto p, leaving the rest untouched.
func (f PartFields) Apply(p *Part) {
	if f.Name != nil {
		p.Name = f.Name
	}
	if f.Brand != nil {
		p.Brand = f.Brand
	}
	if f.Description != nil {
		p.Description = f.Description
	}
	if f.Price != nil {
		p.Price = f.Price
	}
	if f.ImageRef != nil {
		p.ImageRef = f.ImageRef
	}
}

// StatusMessage describes the visibility state after a toggle.
func (p Part) StatusMessage() string {
	if p.Active {
		return "part activated"
	}
	return "part deactivated"
}

func nonBlank(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}
