// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

package validation

import (
	"strings"
	"sync"
	"testing"
)

type sentimentRequest struct {
	Text string `validate:"required,max=100"`
}

type reviewBatchRequest struct {
	Source  string   `validate:"required,oneof=twitter playstore appstore internal csv"`
	Texts   []string `validate:"required,min=1,dive,required"`
	Page    int      `validate:"gte=0"`
	PerPage int      `validate:"gte=1,lte=100"`
}

func TestGetValidatorSingleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 != v2 {
		t.Error("expected GetValidator to return the same instance")
	}
}

func TestGetValidatorConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if GetValidator() == nil {
				t.Error("expected non-nil validator")
			}
		}()
	}
	wg.Wait()
}

func TestValidateStructPasses(t *testing.T) {
	req := sentimentRequest{Text: "great app, love the new design"}

	if verr := ValidateStruct(&req); verr != nil {
		t.Errorf("expected validation to pass, got: %v", verr)
	}
}

func TestValidateStructRequired(t *testing.T) {
	req := sentimentRequest{}

	verr := ValidateStruct(&req)
	if verr == nil {
		t.Fatal("expected validation error for missing text")
	}

	errs := verr.Errors()
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d", len(errs))
	}
	if errs[0].Field() != "Text" {
		t.Errorf("expected field 'Text', got %q", errs[0].Field())
	}
	if errs[0].Tag() != "required" {
		t.Errorf("expected tag 'required', got %q", errs[0].Tag())
	}
	if !strings.Contains(errs[0].Error(), "required") {
		t.Errorf("expected message to mention 'required', got %q", errs[0].Error())
	}
}

func TestValidateStructMaxString(t *testing.T) {
	req := sentimentRequest{Text: strings.Repeat("x", 101)}

	verr := ValidateStruct(&req)
	if verr == nil {
		t.Fatal("expected validation error for oversized text")
	}
	if !strings.Contains(verr.Error(), "at most 100 characters") {
		t.Errorf("expected character-count message, got %q", verr.Error())
	}
}

func TestValidateStructOneOf(t *testing.T) {
	req := reviewBatchRequest{
		Source:  "reddit",
		Texts:   []string{"slow sync"},
		PerPage: 20,
	}

	verr := ValidateStruct(&req)
	if verr == nil {
		t.Fatal("expected validation error for bad source")
	}
	if !strings.Contains(verr.Error(), "must be one of") {
		t.Errorf("expected oneof message, got %q", verr.Error())
	}
}

func TestValidateStructMultipleErrors(t *testing.T) {
	req := reviewBatchRequest{
		Source:  "",
		Texts:   nil,
		Page:    -1,
		PerPage: 0,
	}

	verr := ValidateStruct(&req)
	if verr == nil {
		t.Fatal("expected validation errors")
	}
	if len(verr.Errors()) < 3 {
		t.Errorf("expected at least 3 errors, got %d: %v", len(verr.Errors()), verr)
	}
}

func TestToAPIErrorSingle(t *testing.T) {
	verr := ValidateStruct(&sentimentRequest{})
	if verr == nil {
		t.Fatal("expected validation error")
	}

	apiErr := verr.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("expected code VALIDATION_ERROR, got %q", apiErr.Code)
	}
	if apiErr.Details["field"] != "Text" {
		t.Errorf("expected field detail 'Text', got %v", apiErr.Details["field"])
	}
}

func TestToAPIErrorMultiple(t *testing.T) {
	verr := ValidateStruct(&reviewBatchRequest{Page: -1})
	if verr == nil {
		t.Fatal("expected validation errors")
	}

	apiErr := verr.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("expected code VALIDATION_ERROR, got %q", apiErr.Code)
	}

	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok {
		t.Fatalf("expected fields detail, got %T", apiErr.Details["fields"])
	}
	if len(fields) < 2 {
		t.Errorf("expected at least 2 field entries, got %d", len(fields))
	}
}

func TestValidateStructNonStruct(t *testing.T) {
	verr := ValidateStruct("not a struct")
	if verr == nil {
		t.Fatal("expected error for non-struct input")
	}
	if len(verr.Errors()) != 1 {
		t.Errorf("expected 1 wrapped error, got %d", len(verr.Errors()))
	}
}
