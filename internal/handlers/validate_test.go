// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"strings"
	"testing"
)

func validSponsorRequest() sponsorRequest {
	return sponsorRequest{
		Name:         "Corner Bakery",
		ContactName:  "Dana",
		ContactEmail: "dana@bakery.example.org",
		LogoURL:      "https://img.example.org/bakery.png",
		Tier:         "community",
	}
}

func TestValidationMessage(t *testing.T) {
	v := newValidator()

	tests := []struct {
		name   string
		modify func(*sponsorRequest)
		want   string
	}{
		{"missing contact", func(r *sponsorRequest) { r.ContactName = "" }, "Contact name is required."},
		{"bad logo", func(r *sponsorRequest) { r.LogoURL = "logo.png" }, "Logo URL must be a valid URL."},
		{"long message", func(r *sponsorRequest) { r.Message = strings.Repeat("x", 2001) }, "Message is too long (max 2000 characters)."},
		{"empty tier", func(r *sponsorRequest) { r.Tier = "" }, "Tier is required."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validSponsorRequest()
			tt.modify(&req)

			err := v.Struct(req)
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if got := validationMessage(err); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidSponsorRequest(t *testing.T) {
	req := validSponsorRequest()
	req.WebsiteURL = ""
	if err := newValidator().Struct(req); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}
}

func TestValidationMessageNonValidatorError(t *testing.T) {
	if got := validationMessage(errors.New("boom")); got != "The submitted data is invalid." {
		t.Errorf("got %q", got)
	}
}
