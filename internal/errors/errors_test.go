package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetCode_ThroughWrapping(t *testing.T) {
	base := MissingColumn("Water Bill (£)")
	wrapped := fmt.Errorf("eda: %w", base)

	assert.Equal(t, CodeMissingColumn, GetCode(wrapped))
	assert.True(t, HasCode(wrapped, CodeMissingColumn))
	assert.False(t, HasCode(wrapped, CodeNoData))
	assert.Equal(t, "UNKNOWN", GetCode(stderrors.New("plain")))
}

func TestWrap_KeepsCode(t *testing.T) {
	err := Wrap(NotFound("upload"), "restore failed")
	assert.Equal(t, CodeNotFound, GetCode(err))
	assert.Contains(t, err.Error(), "restore failed")
	assert.Nil(t, Wrap(nil, "ignored"))
}

func TestGetMessage(t *testing.T) {
	cause := stderrors.New("bad header")
	err := ParseFailure("could not read finance.csv", cause)

	assert.Equal(t, "could not read finance.csv", GetMessage(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "plain", GetMessage(stderrors.New("plain")))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{InvalidInput("bad goal"), http.StatusBadRequest},
		{ParseFailure("could not read", nil), http.StatusBadRequest},
		{MissingColumn("Gas Bill (£)"), http.StatusBadRequest},
		{InsufficientSelection("pick two"), http.StatusBadRequest},
		{NotFound("upload"), http.StatusNotFound},
		{NoData("upload first"), http.StatusNotFound},
		{ModelFailure("LSTM", stderrors.New("diverged")), http.StatusInternalServerError},
		{stderrors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), GetCode(tt.err))
	}
}
