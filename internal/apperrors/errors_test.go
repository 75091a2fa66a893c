package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"required", Required("name"), http.StatusBadRequest},
		{"range", OutOfRange("cooking_time", "must be between 1 and 2880"), http.StatusBadRequest},
		{"format", Malformed("email", "must be a valid email address"), http.StatusBadRequest},
		{"reference", &ReferenceError{Field: "tags", IDs: []uint{9}}, http.StatusBadRequest},
		{"duplicate", &DuplicateError{Field: "ingredients", IDs: []uint{1}}, http.StatusBadRequest},
		{"invalid", Invalid("cannot follow yourself"), http.StatusBadRequest},
		{"conflict", Conflict("favorite", ""), http.StatusConflict},
		{"not found", NotFound("recipe", 7), http.StatusNotFound},
		{"forbidden", Forbidden("not the author"), http.StatusForbidden},
		{"unauthorized", Unauthorized("bad token"), http.StatusUnauthorized},
		{"wrapped", fmt.Errorf("create: %w", NotFound("tag", 1)), http.StatusNotFound},
		{"internal", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestFromDB(t *testing.T) {
	var notFound *NotFoundError
	assert.ErrorAs(t, FromDB(gorm.ErrRecordNotFound, "recipe"), &notFound)
	assert.Equal(t, "recipe", notFound.Resource)

	var conflict *ConflictError
	assert.ErrorAs(t, FromDB(gorm.ErrDuplicatedKey, "follow"), &conflict)
	assert.ErrorAs(t, FromDB(errors.New("UNIQUE constraint failed: follows.user_id, follows.author_id"), "follow"), &conflict)

	var rng *RangeError
	assert.ErrorAs(t, FromDB(errors.New("CHECK constraint failed: chk_recipes_cooking_time"), "recipe"), &rng)

	other := errors.New("disk full")
	assert.Same(t, other, FromDB(other, "recipe"))
	assert.True(t, IsInternal(FromDB(other, "recipe")))
	assert.NoError(t, FromDB(nil, "recipe"))
}

func TestMessagesSortIDs(t *testing.T) {
	err := &ReferenceError{Field: "ingredients", IDs: []uint{12, 3, 7}}
	assert.Equal(t, "ingredients: unknown ids [3, 7, 12]", err.Error())

	dup := &DuplicateError{Field: "ingredients", IDs: []uint{4}}
	assert.Equal(t, "ingredients: duplicate ids [4]", dup.Error())
	assert.Equal(t, "recipe 5 not found", NotFound("recipe", 5).Error())
	assert.Equal(t, "favorite not found", NotFound("favorite", nil).Error())
}
