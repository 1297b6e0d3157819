package validator

import (
	"errors"
	"testing"
)

type signUpBody struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

func TestValidatePasses(t *testing.T) {
	v := New()

	body := signUpBody{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "long-enough-password",
	}
	if err := v.Validate(body); err != nil {
		t.Fatalf("valid body should pass, got %v", err)
	}
}

func TestValidateReportsJSONFieldNames(t *testing.T) {
	v := New()

	err := v.Validate(signUpBody{Name: "Ada", Email: "not-an-email", Password: "short"})
	if err == nil {
		t.Fatal("expected validation error")
	}

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}

	if _, ok := verr.Details["email"]; !ok {
		t.Errorf("details should be keyed by JSON name %q, got %v", "email", verr.Details)
	}
	if _, ok := verr.Details["password"]; !ok {
		t.Errorf("details should include %q, got %v", "password", verr.Details)
	}
}

func TestValidateOptionalFields(t *testing.T) {
	v := New()

	type patchBody struct {
		Name   *string `json:"name" validate:"omitempty,min=1,max=100"`
		Avatar *string `json:"avatar" validate:"omitempty,url"`
	}

	// Nil pointers are skipped entirely
	if err := v.Validate(patchBody{}); err != nil {
		t.Errorf("empty patch should pass, got %v", err)
	}

	bad := "not a url"
	err := v.Validate(patchBody{Avatar: &bad})
	if err == nil {
		t.Fatal("non-URL avatar should fail")
	}

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if _, ok := verr.Details["avatar"]; !ok {
		t.Errorf("details should include %q, got %v", "avatar", verr.Details)
	}
}
