package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"whisp.dev/chat-widget/internal/config"
)

// Nonce actions. A nonce minted for one action is rejected for the other.
const (
	NonceActionLead    = "lead"
	NonceActionMessage = "message"
)

const adminAudience = "whisp-admin"

// GenerateNonce returns a signed anti-forgery token bound to action.
func GenerateNonce(action string) (string, error) {
	ttl := time.Duration(config.AppConfig.NonceTTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	claims := jwt.MapClaims{
		"act": action,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.AppConfig.NonceSecret))
}

// VerifyNonce checks signature, expiry and the bound action.
func VerifyNonce(tokenString, action string) error {
	claims, err := parse(tokenString)
	if err != nil {
		return err
	}
	if act, _ := claims["act"].(string); act != action {
		return fmt.Errorf("nonce issued for %q, not %q", act, action)
	}
	return nil
}

func GenerateAdminJWT(username string) (string, error) {
	claims := jwt.MapClaims{
		"sub": username,
		"aud": adminAudience,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour * 24).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.AppConfig.NonceSecret))
}

func ValidateAdminJWT(tokenString string) (string, error) {
	claims, err := parse(tokenString, jwt.WithAudience(adminAudience))
	if err != nil {
		return "", err
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", fmt.Errorf("invalid token subject")
	}
	return sub, nil
}

func parse(tokenString string, opts ...jwt.ParserOption) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.AppConfig.NonceSecret), nil
	}, opts...)

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
