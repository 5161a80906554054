package middleware

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/attendance-review/internal/domain/user"
	"github.com/cmlabs-hris/attendance-review/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

// AuthRequired rejects requests without a verified access token carrying a company
func AuthRequired(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				if errors.Is(err, jwtauth.ErrExpired) {
					response.HandleError(w, user.ErrTokenExpired)
					return
				}
				response.HandleError(w, user.ErrInvalidToken)
				return
			}

			if token == nil {
				response.HandleError(w, user.ErrInvalidToken)
				return
			}

			tokenType, ok := claims["type"].(string)
			if !ok || tokenType != "access" {
				response.HandleError(w, user.ErrInvalidToken)
				return
			}

			companyID, ok := claims["company_id"].(string)
			if !ok || companyID == "" {
				response.HandleError(w, user.ErrCompanyIDRequired)
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(hfn)
	}
}
