package httpapi

import (
	"context"
	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"net/http"
	"strings"
)

const guestCookieName = "guest_id"

type sessionKey struct{}

func withSession(ctx context.Context, sess domain.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, sess)
}

func sessionFrom(ctx context.Context) domain.Session {
	sess, _ := ctx.Value(sessionKey{}).(domain.Session)
	return sess
}

// session attaches the caller's session. Every visitor gets a guest ID cookie so
// a cart can be kept before sign-in; a valid bearer token adds the identity.
func (s *Server) session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		guestID := ""
		if c, err := r.Cookie(guestCookieName); err == nil {
			if _, err := uuid.Parse(c.Value); err == nil {
				guestID = c.Value
			}
		}
		if guestID == "" {
			guestID = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     guestCookieName,
				Value:    guestID,
				Path:     "/",
				MaxAge:   int(s.GuestCookieTTL.Seconds()),
				HttpOnly: true,
				Secure:   s.SecureCookies,
				SameSite: http.SameSiteLaxMode,
			})
		}

		sess := domain.GuestSession(guestID)
		if token := bearerToken(r); token != "" && s.Probe != nil {
			if identity, ok := s.Probe.Resolve(r.Context(), token); ok {
				sess = domain.AuthenticatedSession(identity, guestID)
			}
		}

		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), sess)))
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
