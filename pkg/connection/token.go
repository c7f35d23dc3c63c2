package connection

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/quarrydb/quarrydb.go/pkg/logger"
)

// warnIfTokenExpired inspects a bearer token without verifying its signature
// and warns when its expiry has already passed. Opaque (non-JWT) tokens are
// left for the server to judge.
func warnIfTokenExpired(token string, log logger.Logger) {
	if token == "" || log == nil {
		return
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return
	}
	if time.Now().After(exp.Time) {
		log.Warn("auth token is expired, the server will reject it",
			"expired_at", exp.Time)
	}
}
