package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/utafrali/storefront-admin/pkg/httputil"
	"github.com/utafrali/storefront-admin/pkg/validator"
)

// BulkDeleteRequest is the JSON request body for the bulk-delete endpoints.
type BulkDeleteRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,max=100"`
}

func writeInvalidParameter(w http.ResponseWriter, message string) {
	httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
		Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: message},
	})
}

// queryString returns a trimmed query parameter, or nil when it is absent or
// blank.
func queryString(r *http.Request, name string) *string {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return nil
	}
	return &v
}

// queryBool parses an optional boolean query parameter. On a malformed value
// it writes a 400 and returns false.
func queryBool(w http.ResponseWriter, r *http.Request, name string) (*bool, bool) {
	v := queryString(r, name)
	if v == nil {
		return nil, true
	}
	b, err := strconv.ParseBool(*v)
	if err != nil {
		writeInvalidParameter(w, name+" must be true or false")
		return nil, false
	}
	return &b, true
}

// decode reads and shape-validates a JSON body into dst. On failure it
// writes a 400 and returns false.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	limitBody(w, r)
	if err := validator.DecodeAndValidate(r, dst); err != nil {
		httputil.WriteValidationError(w, r, err)
		return false
	}
	return true
}
