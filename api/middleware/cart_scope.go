package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/shopease/shopease-backend/pkg/logger"
)

const cartTokenHeader = "X-Cart-Token"

// CartScope resolves which cart the request operates on. Authenticated users
// get a scope derived from their account so the cart follows them across
// devices; guests are identified by the X-Cart-Token header, minted here on
// first contact and echoed back so the client can persist it.
func CartScope(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			scope := ""
			if userID := UserIDFromContext(ctx); userID != "" {
				scope = UserCartScope(userID)
			} else {
				token := strings.TrimSpace(r.Header.Get(cartTokenHeader))
				if token == "" {
					token = uuid.NewString()
				}
				w.Header().Set(cartTokenHeader, token)
				scope = GuestCartScope(token)
			}

			ctx = WithCartScope(ctx, scope)
			if logg != nil {
				ctx = logg.WithCartScope(ctx, scope)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserCartScope names the cart bound to an account.
func UserCartScope(userID string) string {
	return "user:" + userID
}

// GuestCartScope names the cart bound to an anonymous device token.
func GuestCartScope(token string) string {
	return "guest:" + token
}
