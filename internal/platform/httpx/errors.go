package httpx

import (
	"errors"
	"net/http"

	"github.com/moneyd/moneyd/internal/ledger/shared"
)

// RespondError maps ledger errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrAccountNotFound), errors.Is(err, shared.ErrTransactionNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrSnapshotConflict):
		Problem(w, http.StatusConflict, "Duplicate Snapshot", err.Error())
	case errors.Is(err, shared.ErrInvalidWindow):
		Problem(w, http.StatusBadRequest, "Invalid Window", err.Error())
	case errors.Is(err, shared.ErrInvalidPeriod), errors.Is(err, shared.ErrTagCycle):
		Problem(w, http.StatusUnprocessableEntity, "Invalid Data", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
