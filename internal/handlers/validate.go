// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"riseup/internal/ai"
)

// sponsorRequest is the public sponsor submission form.
type sponsorRequest struct {
	Name         string `json:"name" validate:"required,max=200"`
	ContactName  string `json:"contact_name" validate:"required,max=200"`
	ContactEmail string `json:"contact_email" validate:"required,email,max=320"`
	WebsiteURL   string `json:"website_url" validate:"omitempty,url,max=500"`
	LogoURL      string `json:"logo_url" validate:"required,url,max=500"`
	Tier         string `json:"tier" validate:"required,oneof=bronze silver gold community"`
	Message      string `json:"message" validate:"max=2000"`
}

// chatRequest is the body of POST /admin/chat.
type chatRequest struct {
	Messages []ai.Message `json:"messages" validate:"required,min=1,max=50,dive"`
}

// fieldLabels maps JSON field names to human-readable labels.
var fieldLabels = map[string]string{
	"name":          "Business name",
	"contact_name":  "Contact name",
	"contact_email": "Contact email",
	"website_url":   "Website",
	"logo_url":      "Logo URL",
	"tier":          "Tier",
	"message":       "Message",
	"messages":      "Messages",
	"role":          "Message role",
	"content":       "Message content",
}

// newValidator returns a validator that reports JSON field names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationMessage turns the first validation failure into a message
// suitable for showing next to a form.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "The submitted data is invalid."
	}

	fe := verrs[0]
	label, ok := fieldLabels[fe.Field()]
	if !ok {
		label = fe.Field()
	}

	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "email":
		return label + " must be a valid email address."
	case "url":
		return label + " must be a valid URL."
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s has too many entries (max %s).", label, fe.Param())
		}
		return fmt.Sprintf("%s is too long (max %s characters).", label, fe.Param())
	case "min":
		return fmt.Sprintf("%s needs at least %s entry.", label, fe.Param())
	default:
		return label + " is invalid."
	}
}
