package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("bad"), http.StatusBadRequest},
		{Conflict("dup"), http.StatusBadRequest},
		{NotFound("missing"), http.StatusNotFound},
		{Unauthorized("who"), http.StatusUnauthorized},
		{Forbidden("no"), http.StatusForbidden},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, HTTPStatus(tc.err), tc.err.Error())
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("failed to add favorite: %w", Conflict("Recipe is already in favourites"))

	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, "Recipe is already in favourites", MessageOf(err))
	assert.True(t, errors.Is(err, Conflict("Recipe is already in favourites")))
	assert.False(t, errors.Is(err, Conflict("Recipe is not in favourites")))
}

func TestMessageOfHidesInternalErrors(t *testing.T) {
	assert.Equal(t, "Internal server error", MessageOf(errors.New("dial tcp: refused")))
}
