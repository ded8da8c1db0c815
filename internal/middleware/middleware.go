package middleware

import (
	"bufio"
	"compress/gzip"
	"context"
	"io"
	"net"
	"net/http"
	"strings"

	usertype "github.com/antonminaichev/darkstore-dispatch/internal/types/user"
	"github.com/antonminaichev/darkstore-dispatch/internal/user"
	"github.com/golang-jwt/jwt/v4"
)

type ctxKeyUserID struct{}
type ctxKeyRole struct{}

func ContextWithUser(ctx context.Context, id string, role usertype.Role) context.Context {
	ctx = context.WithValue(ctx, ctxKeyUserID{}, id)
	return context.WithValue(ctx, ctxKeyRole{}, role)
}

func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyUserID{}).(string)
	return id
}

func RoleFromContext(ctx context.Context) usertype.Role {
	role, _ := ctx.Value(ctxKeyRole{}).(usertype.Role)
	return role
}

type gzipResponseWriter struct {
	http.ResponseWriter
	Writer io.Writer
}

func (w gzipResponseWriter) Write(b []byte) (int, error) {
	return w.Writer.Write(b)
}

func (w gzipResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, http.ErrNotSupported
	}
	return hj.Hijack()
}

func GzipHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Encoding") == "gzip" {
			gzr, err := gzip.NewReader(r.Body)
			if err != nil {
				http.Error(rw, "failed to create gzip reader", http.StatusBadRequest)
				return
			}
			defer gzr.Close()
			r.Body = io.NopCloser(gzr)
		}

		if strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			rw.Header().Set("Content-Encoding", "gzip")
			gzw := gzip.NewWriter(rw)
			defer gzw.Close()
			next.ServeHTTP(gzipResponseWriter{Writer: gzw, ResponseWriter: rw}, r)
			return
		}
		next.ServeHTTP(rw, r)
	})
}

// JWTMiddleware authenticates the bearer token and stores the caller's id
// and role in the request context. Every operation downstream gets an
// explicit caller identity, never ambient session state.
func JWTMiddleware(secret []byte, repo user.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			tokenStr := strings.TrimPrefix(auth, "Bearer ")

			claims := &user.Claims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
				return secret, nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			u, err := repo.FindByLogin(r.Context(), claims.Subject)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), u.ID, u.Role)))
		})
	}
}

// RequireRole guards a route group behind a single role.
func RequireRole(role usertype.Role) func(http.Handler) http.Handler {
	return RequireAnyRole(role)
}

// RequireAnyRole admits callers holding any of the listed roles.
func RequireAnyRole(roles ...usertype.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := RoleFromContext(r.Context())
			for _, role := range roles {
				if got == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, "forbidden", http.StatusForbidden)
		})
	}
}
