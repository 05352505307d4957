package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Product corresponds to the 'products' table in the database.
type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:32;not null" json:"title"`
	Description string    `gorm:"size:1024;not null" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateProductInput is the payload for creating a product. Both fields
// are required and length-bounded.
type CreateProductInput struct {
	Title       string `json:"title" validate:"required,min=6,max=32"`
	Description string `json:"description" validate:"required,min=32,max=1024"`
}

// UpdateProductInput is the payload for partially updating a product.
// The constraints mirror CreateProductInput, but a nil field means
// "leave the current value unchanged".
type UpdateProductInput struct {
	Title       *string `json:"title" validate:"omitempty,min=6,max=32"`
	Description *string `json:"description" validate:"omitempty,min=32,max=1024"`
}

// FieldError describes one constraint violation on one input field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationErrors is the error returned when an input payload fails
// its declared constraints. It always carries at least one violation.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	reasons := make([]string, len(v))
	for i, fe := range v {
		reasons[i] = fmt.Sprintf("%s: %s", fe.Field, fe.Reason)
	}
	return "validation failed: " + strings.Join(reasons, "; ")
}

var validate = validator.New()

// Validate checks the create payload against its schema.
func (in *CreateProductInput) Validate() error {
	return translate(validate.Struct(in))
}

// Validate checks the update payload. Absent fields are skipped.
func (in *UpdateProductInput) Validate() error {
	return translate(validate.Struct(in))
}

// Apply merges the present fields of the input onto the product.
// Absent fields, CreatedAt and ID are left untouched.
func (in *UpdateProductInput) Apply(p *Product) {
	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
}

// translate converts validator failures into ValidationErrors so the
// boundary layer never has to understand validator internals.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(ValidationErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:  strings.ToLower(fe.Field()),
			Reason: reason(fe),
		})
	}
	return out
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("too short (min %s)", fe.Param())
	case "max":
		return fmt.Sprintf("too long (max %s)", fe.Param())
	default:
		return fmt.Sprintf("failed %s constraint", fe.Tag())
	}
}
