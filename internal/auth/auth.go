package auth

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	apiKeyHeader = "X-API-Key"
	apiKeyQuery  = "api_key"
	tokenQuery   = "token"
	// SubjectKey is the gin context key holding the authenticated subject.
	SubjectKey = "auth_subject"
	// APIKeySubject is the subject recorded for requests authenticated by API key.
	APIKeySubject = "api-key"
)

type Options struct {
	APIKey      string
	JWTSecret   string
	JWTAudience string
}

func (o Options) enabled() bool {
	return o.APIKey != "" || o.JWTSecret != ""
}

// Middleware accepts either the X-API-Key header or an HS256 bearer token.
// WebSocket upgrades without credential headers may pass them as the api_key or
// token query parameters, since browsers cannot set headers on the handshake.
// With neither an API key nor a JWT secret configured, authentication is disabled.
func Middleware(opts Options) gin.HandlerFunc {
	opts.APIKey = strings.TrimSpace(opts.APIKey)
	opts.JWTSecret = strings.TrimSpace(opts.JWTSecret)
	opts.JWTAudience = strings.TrimSpace(opts.JWTAudience)

	return func(c *gin.Context) {
		if !opts.enabled() {
			c.Next()
			return
		}

		provided, header := requestCredentials(c)
		if provided != "" && opts.APIKey != "" {
			if subtle.ConstantTimeCompare([]byte(provided), []byte(opts.APIKey)) != 1 {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid API key"})
				return
			}
			c.Set(SubjectKey, APIKeySubject)
			c.Next()
			return
		}

		if header == "" || opts.JWTSecret == "" {
			unauthorized(c, "missing credentials")
			return
		}

		tokenString, err := extractBearerToken(header)
		if err != nil {
			unauthorized(c, err.Error())
			return
		}
		subject, err := verifyToken(tokenString, opts.JWTSecret, opts.JWTAudience)
		if err != nil {
			unauthorized(c, err.Error())
			return
		}

		c.Set(SubjectKey, subject)
		c.Next()
	}
}

// requestCredentials returns the API key and Authorization value for the request.
func requestCredentials(c *gin.Context) (apiKey, authorization string) {
	apiKey = c.GetHeader(apiKeyHeader)
	authorization = c.GetHeader("Authorization")
	if apiKey != "" || authorization != "" || !isWebSocketUpgrade(c.Request) {
		return apiKey, authorization
	}

	apiKey = c.Query(apiKeyQuery)
	if token := strings.TrimSpace(c.Query(tokenQuery)); token != "" {
		authorization = "Bearer " + token
	}
	return apiKey, authorization
}

func isWebSocketUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}

func verifyToken(tokenString, secret, audience string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid token")
	}
	if audience != "" && !containsAudience(claims.Audience, audience) {
		return "", errors.New("invalid audience")
	}
	if claims.Subject == "" {
		return "", errors.New("missing subject")
	}
	return claims.Subject, nil
}

func extractBearerToken(header string) (string, error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization header")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("token missing")
	}
	return token, nil
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message})
}

func containsAudience(claims jwt.ClaimStrings, expected string) bool {
	for _, aud := range claims {
		if aud == expected {
			return true
		}
	}
	return false
}
