package httpx

import (
	"context"
	"net/http"
	"strconv"

	"github.com/vendamais/orderhub/internal/apperr"
)

// HeaderCompanyID identifies the tenant on every request.
const HeaderCompanyID = "Company-Id"

type ctxKey int

const companyIDKey ctxKey = iota

// RequireCompany rejects requests without a parseable Company-Id header and
// stores the tenant id in the request context for the handlers below it.
func RequireCompany(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(HeaderCompanyID)
		if raw == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Company-Id header is required"})
			return
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Company-Id header must be a positive integer"})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), companyIDKey, id)))
	})
}

func companyID(r *http.Request) (int64, error) {
	id, ok := r.Context().Value(companyIDKey).(int64)
	if !ok {
		return 0, apperr.New(apperr.Unauthorized, "missing tenant context")
	}
	return id, nil
}
