package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseInt(t *testing.T) {
	assert.Equal(t, 5, ParseInt("", 5))
	assert.Equal(t, 5, ParseInt("abc", 5))
	assert.Equal(t, 5, ParseInt("0", 5))
	assert.Equal(t, 12, ParseInt("12", 5))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "jane@example.com", NormalizeEmail("  Jane@Example.COM "))
	assert.Equal(t, "jane@example.com", NormalizeEmail("Jane <jane@example.com>"))
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "j***@example.com", MaskEmail("jane@example.com"))
	assert.Equal(t, "***", MaskEmail("invalid"))
}

func TestValidateStruct(t *testing.T) {
	type payload struct {
		Email string `validate:"required,email"`
		Code  string `validate:"required,len=6,numeric"`
	}

	assert.Nil(t, ValidateStruct(payload{Email: "a@b.co", Code: "123456"}))

	errs := ValidateStruct(payload{Email: "nope", Code: "12"})
	assert.Equal(t, "Invalid email format", errs["Email"])
	assert.Equal(t, "Must be exactly 6 characters", errs["Code"])
	assert.Equal(t, "Code: Must be exactly 6 characters; Email: Invalid email format", FormatValidationErrors(errs))
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	assert.NoError(t, err)
	assert.True(t, CheckPasswordHash("s3cret-pass", hash))
	assert.False(t, CheckPasswordHash("other", hash))
}

func TestPagination(t *testing.T) {
	page, perPage := NormalizePage(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, DefaultPerPage, perPage)

	_, perPage = NormalizePage(2, 500)
	assert.Equal(t, MaxPerPage, perPage)

	assert.Equal(t, 20, CalculateOffset(3, 10))
	assert.Equal(t, 0, CalculateOffset(-1, 10))
	assert.Equal(t, 3, CalculateTotalPages(21, 10))
	assert.Equal(t, 0, CalculateTotalPages(0, 10))
}
