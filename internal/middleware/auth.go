package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/lamdang/quizforge/config"
	"github.com/lamdang/quizforge/internal/dto"
	"github.com/lamdang/quizforge/internal/service"
)

const userIDKey = "auth_user_id"

// Authenticate resolves a bearer token to a stable user id on the gin
// context. Requests without a valid token never reach the handlers.
func Authenticate(cfg *config.Config) gin.HandlerFunc {
	secret := []byte(cfg.JWTSecret)
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found || raw == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "missing bearer token"})
			return
		}

		var claims service.AuthClaims
		token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return secret, nil
		})
		if err != nil || !token.Valid {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "invalid or expired token"})
			return
		}

		ctx.Set(userIDKey, claims.UserID)
		ctx.Next()
	}
}

// UserID returns the authenticated user id set by Authenticate.
func UserID(ctx *gin.Context) uint {
	id, _ := ctx.Get(userIDKey)
	uid, _ := id.(uint)
	return uid
}
