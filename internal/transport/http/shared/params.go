package shared

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	id "medchain/pkg/domain"
	dErrors "medchain/pkg/domain-errors"
)

// RecordIDParam parses the named chi URL parameter as a record ID. The error
// is already coded so callers can hand it straight to WriteError.
func RecordIDParam(r *http.Request, name string) (id.RecordID, error) {
	recordID, err := id.ParseRecordID(chi.URLParam(r, name))
	if err != nil {
		return 0, dErrors.New(dErrors.CodeBadRequest, "invalid record id")
	}
	return recordID, nil
}

// RecordIDQuery parses the named query parameter as a record ID.
func RecordIDQuery(r *http.Request, name string) (id.RecordID, error) {
	recordID, err := id.ParseRecordID(r.URL.Query().Get(name))
	if err != nil {
		return 0, dErrors.New(dErrors.CodeBadRequest, "invalid record id")
	}
	return recordID, nil
}
