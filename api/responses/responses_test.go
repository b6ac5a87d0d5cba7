package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/minimart-backend/pkg/errors"
)

func TestWriteSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccessStatus(w, http.StatusCreated, map[string]string{"hello": "world"})

	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body SuccessEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	require.Equal(t, "world", body.Data.(map[string]any)["hello"])
}

func TestWriteErrorMapsTypedError(t *testing.T) {
	w := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeValidation, "bad input").
		WithDetails(map[string]string{"field": "demo"})
	WriteError(context.Background(), nil, w, err)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body ErrorEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	require.Equal(t, string(pkgerrors.CodeValidation), body.Error.Code)
	require.Equal(t, "bad input", body.Error.Message)
	require.NotNil(t, body.Error.Details)
}

func TestWriteErrorOutOfStockKeepsMessage(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), nil, w, pkgerrors.New(pkgerrors.CodeOutOfStock, "item sold out"))

	require.Equal(t, http.StatusConflict, w.Code)
	var body ErrorEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	require.Equal(t, "item sold out", body.Error.Message)
}

func TestWriteErrorDefaultsToInternalForUntrustedErrors(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), nil, w, errors.New("boom"))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var body ErrorEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	require.Equal(t, string(pkgerrors.CodeInternal), body.Error.Code)
	require.Equal(t, "internal server error", body.Error.Message)
	require.Nil(t, body.Error.Details)
}

func TestWriteErrorMapsConstraintViolations(t *testing.T) {
	cases := []struct {
		constraint string
		status     int
		code       pkgerrors.Code
	}{
		{constraint: "items_stock_number_check", status: http.StatusConflict, code: pkgerrors.CodeOutOfStock},
		{constraint: "cart_items_user_item_option_key", status: http.StatusConflict, code: pkgerrors.CodeConflict},
		{constraint: "orders_status_check", status: http.StatusUnprocessableEntity, code: pkgerrors.CodeStateConflict},
	}
	for _, tc := range cases {
		t.Run(tc.constraint, func(t *testing.T) {
			w := httptest.NewRecorder()
			pgErr := &pgconn.PgError{Code: "23514", ConstraintName: tc.constraint}
			WriteError(context.Background(), nil, w, pkgerrors.Wrap(pkgerrors.CodeDependency, pgErr, "db: write"))

			require.Equal(t, tc.status, w.Code)
			var body ErrorEnvelope
			require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
			require.Equal(t, string(tc.code), body.Error.Code)
		})
	}
}

func TestWriteErrorKeepsTypedCodeOverConstraint(t *testing.T) {
	w := httptest.NewRecorder()
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	WriteError(context.Background(), nil, w, pkgerrors.Wrap(pkgerrors.CodeValidation, pgErr, "bad email"))

	require.Equal(t, http.StatusBadRequest, w.Code)
}
