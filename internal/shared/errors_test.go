package shared

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidationErrors_MatchSentinels(t *testing.T) {
	errs := ValidationErrors{
		{Field: "title", Err: ErrFieldTooLong, Limit: 100},
		{Field: "status", Err: ErrInvalidStatus},
	}
	var err error = errs

	require.ErrorIs(t, err, ErrFieldTooLong)
	require.ErrorIs(t, err, ErrInvalidStatus)
	require.NotErrorIs(t, err, ErrPastDueDate)
	require.True(t, IsValidation(err))

	wrapped := fmt.Errorf("create task: %w", err)
	require.ErrorIs(t, wrapped, ErrInvalidStatus)
	require.True(t, IsValidation(wrapped))
}

func TestValidationErrors_Fields(t *testing.T) {
	errs := ValidationErrors{
		{Field: "title", Err: ErrFieldTooShort, Limit: 1},
		{Field: "title", Err: ErrFieldTooLong, Limit: 100},
		{Field: "due_date", Err: ErrMissingField},
	}
	fields := errs.Fields()
	require.Len(t, fields, 2)
	require.Equal(t, "title: must be at least 1 characters", fields["title"])
	require.Equal(t, "due_date: required", fields["due_date"])
}

func TestValidationErrors_OrNil(t *testing.T) {
	var errs ValidationErrors
	require.NoError(t, errs.OrNil())
	errs = append(errs, &FieldError{Field: "x", Err: ErrMissingField})
	require.Error(t, errs.OrNil())
}

func TestPersistence(t *testing.T) {
	require.NoError(t, Persistence("op", nil))

	cause := errors.New("disk full")
	err := Persistence("insert task", cause)
	require.ErrorIs(t, err, ErrPersistence)
	require.ErrorIs(t, err, cause)
	require.False(t, IsValidation(err))
}

func TestSendError(t *testing.T) {
	rec := httptest.NewRecorder()
	SendError(rec, "nope", http.StatusForbidden)

	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.JSONEq(t, `{"error":"nope"}`, rec.Body.String())
}
