package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, NotFound, KindOf(New(NotFound, "order not found")))
	assert.Equal(t, Internal, KindOf(errors.New("connection reset")))
	assert.Equal(t, Internal, KindOf(nil))
}

func TestWrapKeepsExistingKind(t *testing.T) {
	orig := New(Conflict, "insufficient stock")
	wrapped := Wrap(fmt.Errorf("create order: %w", orig), Internal, "tx failed")

	assert.Equal(t, Conflict, KindOf(wrapped))
}

func TestWrapUntyped(t *testing.T) {
	err := Wrap(errors.New("boom"), Internal, "insert order")
	require.Error(t, err)

	var ae *Error
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, Internal, ae.Kind)
	assert.Equal(t, "insert order: boom", err.Error())
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, Internal, "ignored"))
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{New(Validation, "quantity must be positive"), http.StatusBadRequest},
		{New(NotFound, "product not found"), http.StatusNotFound},
		{New(Unauthorized, "missing credentials"), http.StatusUnauthorized},
		{New(Conflict, "stock would go negative"), http.StatusConflict},
		{errors.New("pq: down"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, HTTPStatus(c.err), c.err.Error())
	}
}
