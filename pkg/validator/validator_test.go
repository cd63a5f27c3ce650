package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brandRequest struct {
	Name       string   `json:"name" validate:"required,max=255"`
	PrimaryHex string   `json:"primary_hex" validate:"omitempty,hexcolor"`
	Type       string   `json:"type" validate:"omitempty,oneof=downloadable deliverable"`
	BrandID    string   `json:"brand_id" validate:"omitempty,uuid"`
	IDs        []string `json:"ids" validate:"omitempty,min=1"`
	Internal   string   `json:"-" validate:"omitempty,max=1"`
}

func TestValidate_Success(t *testing.T) {
	s := brandRequest{Name: "Acme", PrimaryHex: "#1a2b3c", Type: "deliverable"}
	assert.NoError(t, Validate(s))
}

func TestValidate_ReportsJSONFieldNames(t *testing.T) {
	err := Validate(brandRequest{PrimaryHex: "red", BrandID: "nope"})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Equal(t, "is required", fields["name"])
	assert.Equal(t, "must be a hex colour such as #1a2b3c", fields["primary_hex"])
	assert.Equal(t, "must be a valid UUID", fields["brand_id"])
	assert.Equal(t, "name", valErr.FirstField())
}

func TestValidate_OneOf(t *testing.T) {
	err := Validate(brandRequest{Name: "x", Type: "physical"})

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "must be one of: downloadable deliverable", valErr.Fields()["type"])
}

func TestValidate_DashTagFallsBackToStructName(t *testing.T) {
	err := Validate(brandRequest{Name: "x", Internal: "too long"})

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Fields(), "Internal")
}

func TestValidationError_ErrorString(t *testing.T) {
	err := Validate(brandRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'name' is required")
}

func TestDecodeAndValidate_Success(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Acme","primary_hex":"#000000"}`))
	var dst brandRequest
	require.NoError(t, DecodeAndValidate(r, &dst))
	assert.Equal(t, "Acme", dst.Name)
}

func TestDecodeAndValidate_InvalidJSON(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
	var dst brandRequest
	err := DecodeAndValidate(r, &dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request body")
}

func TestDecodeAndValidate_UnknownField(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Acme","colour":"red"}`))
	var dst brandRequest
	err := DecodeAndValidate(r, &dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request body")
}

func TestDecodeAndValidate_ValidationFails(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"primary_hex":"#zzz"}`))
	var dst brandRequest
	err := DecodeAndValidate(r, &dst)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Fields(), "name")
	assert.Contains(t, valErr.Fields(), "primary_hex")
}
