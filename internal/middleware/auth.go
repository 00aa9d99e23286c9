package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// VisitorCookie holds the signed visitor token.
const VisitorCookie = "visitor"

const visitorTTL = 365 * 24 * time.Hour

var ErrInvalidToken = errors.New("invalid visitor token")

// VisitorAuth gives every browser a stable user id carried in a signed
// cookie. There are no accounts; the id only scopes history and views.
type VisitorAuth struct {
	Secret []byte
	// FixedUserID, when set, is assigned to every new visitor.
	FixedUserID string
	Secure      bool
}

func NewVisitorAuth(secret, fixedUserID string, secure bool) *VisitorAuth {
	return &VisitorAuth{Secret: []byte(secret), FixedUserID: fixedUserID, Secure: secure}
}

// GenerateToken signs a visitor token for userID.
func (a *VisitorAuth) GenerateToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(visitorTTL).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.Secret)
}

// ParseToken verifies tokenStr and returns its user id.
func (a *VisitorAuth) ParseToken(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.Secret, nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}

	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return "", ErrInvalidToken
	}
	return userID, nil
}

// Middleware attaches the visitor's user_id to the context, issuing a new
// identity when the cookie is missing or invalid.
func (a *VisitorAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var userID string
		if c, err := r.Cookie(VisitorCookie); err == nil {
			userID, _ = a.ParseToken(c.Value)
		}

		if userID == "" {
			userID = a.FixedUserID
			if userID == "" {
				userID = uuid.NewString()
			}
			token, err := a.GenerateToken(userID)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "INTERNAL", "Could not create visitor session", r)
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     VisitorCookie,
				Value:    token,
				Path:     "/",
				MaxAge:   int(visitorTTL / time.Second),
				HttpOnly: true,
				Secure:   a.Secure,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID extracts user_id from request context
func GetUserID(ctx context.Context) string {
	id, _ := ctx.Value(UserIDKey).(string)
	return id
}

// WithUserID returns a context carrying userID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

func writeError(w http.ResponseWriter, status int, code, message string, r *http.Request) {
	requestID := r.Header.Get("X-Request-ID")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{
			"code":       code,
			"message":    message,
			"request_id": requestID,
		},
	})
}
