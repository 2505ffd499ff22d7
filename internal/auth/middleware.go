package auth

import (
	"context"
	"net/http"

	"github.com/lehigh-university-libraries/idealab/internal/session"
)

type viewKey struct{}

// RequireLogin rejects requests without a known session cookie and puts the
// caller's view in the request context.
func (g *Gate) RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		view, ok := g.Lookup(SessionID(r))
		if !ok {
			http.Error(w, "Login required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithView(r.Context(), view)))
	})
}

func WithView(ctx context.Context, v *session.View) context.Context {
	return context.WithValue(ctx, viewKey{}, v)
}

// ViewFrom returns the view stored by RequireLogin, or nil
func ViewFrom(ctx context.Context) *session.View {
	v, _ := ctx.Value(viewKey{}).(*session.View)
	return v
}
