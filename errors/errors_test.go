package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"No error", nil, http.StatusOK},
		{"Wrapped validation", fmt.Errorf("%w: empty text", ErrInvalidMessage), http.StatusBadRequest},
		{"Validator output", validator.ValidationErrors{}, http.StatusBadRequest},
		{"Missing token", ErrMissingToken, http.StatusUnauthorized},
		{"Outsider", fmt.Errorf("%w: g1", ErrNotGroupMember), http.StatusForbidden},
		{"Empty history", ErrNoMessages, http.StatusNotFound},
		{"Duplicate group", ErrGroupAlreadyExists, http.StatusConflict},
		{"Queue full", ErrBackpressure, http.StatusServiceUnavailable},
		{"Anything else", fmt.Errorf("badger: closed"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestKindOf(t *testing.T) {
	req := require.New(t)

	req.Equal(KindValidation, KindOf(ErrUnknownAction))
	req.Equal(KindNotFound, KindOf(fmt.Errorf("%w: g1", ErrGroupNotFound)))
	req.Equal(KindForbidden, KindOf(ErrSenderMismatch))
	// Unclassified failures invite a retry
	req.Equal(KindUnavailable, KindOf(ErrSlowConsumer))
}
