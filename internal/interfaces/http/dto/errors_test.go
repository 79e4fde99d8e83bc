package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeBadRequest, http.StatusBadRequest},
		{ErrCodeInvalidInput, http.StatusBadRequest},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeAlreadyExists, http.StatusConflict},
		{ErrCodeConcurrencyConflict, http.StatusConflict},
		{ErrCodeInsufficientStock, http.StatusConflict},
		{ErrCodeSequenceConflict, http.StatusConflict},
		{ErrCodeDuplicateInvoice, http.StatusConflict},
		{ErrCodeInvalidTransition, http.StatusUnprocessableEntity},
		{ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{ErrCodeConfirmationRequired, http.StatusUnprocessableEntity},
		{"INVALID_QUANTITY", http.StatusBadRequest},
		// Unmapped domain codes are business rule violations
		{"NO_ITEMS", http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestListRequestNormalize(t *testing.T) {
	r := ListRequest{}
	r.Normalize()
	assert.Equal(t, 1, r.Page)
	assert.Equal(t, 20, r.PageSize)

	r = ListRequest{Page: 3, PageSize: 50}
	r.Normalize()
	assert.Equal(t, 3, r.Page)
	assert.Equal(t, 50, r.PageSize)
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]int{1, 2, 3}, 41, 1, 20)
	assert.True(t, resp.Success)
	assert.Equal(t, 3, resp.Meta.TotalPages)

	resp = NewSuccessResponseWithMeta([]int{}, 40, 1, 20)
	assert.Equal(t, 2, resp.Meta.TotalPages)
}
