package middleware

import (
	"crypto/rsa"
	"errors"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// LocalsUserKey is where the middleware stores the authenticated external
// user id.
const LocalsUserKey = "user_id"

// Verifier checks tokens issued by the identity provider. This service never
// signs anything; it only trusts the subject id it is handed. RS256 against
// the provider's public key in production, HS256 for local development and
// tests.
type Verifier struct {
	pub    *rsa.PublicKey
	secret []byte
}

func NewVerifierFromPEM(pubKeyPath string) (*Verifier, error) {
	b, err := os.ReadFile(pubKeyPath)
	if err != nil {
		return nil, err
	}
	pub, err := jwt.ParseRSAPublicKeyFromPEM(b)
	if err != nil {
		return nil, err
	}
	return &Verifier{pub: pub}, nil
}

func NewHMACVerifier(secret []byte) *Verifier {
	return &Verifier{secret: secret}
}

// VerifyToken returns the external user id carried in the token.
func (v *Verifier) VerifyToken(token string) (string, error) {
	t, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		switch t.Method.(type) {
		case *jwt.SigningMethodRSA:
			if v.pub == nil {
				return nil, errors.New("unexpected signing method")
			}
			return v.pub, nil
		case *jwt.SigningMethodHMAC:
			if v.secret == nil {
				return nil, errors.New("unexpected signing method")
			}
			return v.secret, nil
		default:
			return nil, errors.New("unexpected signing method")
		}
	})
	if err != nil {
		return "", err
	}
	if !t.Valid {
		return "", errors.New("invalid token")
	}
	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}
	if v, ok := claims["user_id"].(string); ok && v != "" {
		return v, nil
	}
	if v, ok := claims["sub"].(string); ok && v != "" {
		return v, nil
	}
	return "", errors.New("user id not found in token")
}

// JWTAuth extracts the bearer token, verifies it, and stores the external user
// id in locals. Websocket upgrades may pass the token as a query parameter.
func JWTAuth(verifier *Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Get("Authorization")
		if strings.HasPrefix(token, "Bearer ") {
			token = strings.TrimPrefix(token, "Bearer ")
		}
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing authorization"})
		}
		userID, err := verifier.VerifyToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
		}
		c.Locals(LocalsUserKey, userID)
		return c.Next()
	}
}
