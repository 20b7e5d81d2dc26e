package kling

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenTTL is how long a signed API token stays valid.
const tokenTTL = 30 * time.Minute

// signToken mints the HS256 JWT Kling expects in the Authorization header.
// The issuer is the access key and the secret key signs the token. The
// not-before claim is backdated slightly to tolerate clock skew.
func signToken(accessKey, secretKey string, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"iss": accessKey,
		"exp": now.Add(tokenTTL).Unix(),
		"nbf": now.Add(-5 * time.Second).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secretKey))
	if err != nil {
		return "", fmt.Errorf("signing api token: %w", err)
	}

	return signed, nil
}
