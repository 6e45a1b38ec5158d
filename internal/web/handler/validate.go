package handler

import (
	"github.com/go-playground/validator/v10"

	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/gedcom"
)

// NewValidator returns a form validator that also knows the "xref" tag.
func NewValidator() *validator.Validate {
	v := validator.New()

	if err := v.RegisterValidation("xref", func(fl validator.FieldLevel) bool {
		return gedcom.IsXref(fl.Field().String())
	}); err != nil {
		panic(err)
	}

	return v
}
