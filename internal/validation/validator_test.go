// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

package validation

import (
	"strings"
	"testing"
)

type listingForm struct {
	Name  string  `json:"name" validate:"required,max=10"`
	Price float64 `json:"price" validate:"gte=0"`
	Size  string  `json:"size" validate:"omitempty,plant_level"`
	Notes string  `json:"-" validate:"max=3"`
}

func TestGetValidator_Singleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Error("GetValidator() should return the same instance")
	}
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name       string
		input      listingForm
		wantFields []string
	}{
		{"valid", listingForm{Name: "Pothos", Price: 20, Size: "small"}, nil},
		{"empty size allowed", listingForm{Name: "Pothos"}, nil},
		{"missing name", listingForm{Price: 1}, []string{"name"}},
		{"negative price", listingForm{Name: "x", Price: -1}, []string{"price"}},
		{"bad level", listingForm{Name: "x", Size: "huge"}, []string{"size"}},
		{"json dash keeps go name", listingForm{Name: "x", Notes: "long"}, []string{"Notes"}},
		{"multiple", listingForm{Name: "way too long name", Price: -2}, []string{"name", "price"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := ValidateStruct(&tt.input)
			if len(tt.wantFields) == 0 {
				if verr != nil {
					t.Fatalf("unexpected error: %v", verr)
				}
				return
			}
			if verr == nil {
				t.Fatal("expected validation error")
			}
			got := verr.Errors()
			if len(got) != len(tt.wantFields) {
				t.Fatalf("got %d errors (%v), want %d", len(got), verr, len(tt.wantFields))
			}
			for i, f := range tt.wantFields {
				if got[i].Field() != f {
					t.Errorf("field[%d] = %q, want %q", i, got[i].Field(), f)
				}
			}
		})
	}
}

func TestRequestValidationError_ToAPIError(t *testing.T) {
	verr := ValidateStruct(&listingForm{Price: -1})
	if verr == nil {
		t.Fatal("expected error")
	}

	apiErr := verr.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q", apiErr.Code)
	}
	if !strings.Contains(apiErr.Message, "name is required") {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if !strings.Contains(apiErr.Message, "price must be greater than or equal to 0") {
		t.Errorf("Message = %q", apiErr.Message)
	}
	fields, ok := apiErr.Details["fields"].([]string)
	if !ok || len(fields) != 2 {
		t.Errorf("Details[fields] = %v", apiErr.Details["fields"])
	}
}
