// sas/credential.go
package sas

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"

	sas_errors "github.com/dev-mohitbeniwal/blobsas/errors"
)

// SharedKeyCredential is the storage account name and its base64 key. It signs
// shared access signatures and the bearer tokens used for account-level calls.
type SharedKeyCredential struct {
	accountName string
	accountKey  []byte
}

// NewSharedKeyCredential decodes a base64 account key.
func NewSharedKeyCredential(accountName, accountKey string) (*SharedKeyCredential, error) {
	if accountName == "" {
		return nil, fmt.Errorf("account name is required")
	}
	key, err := base64.StdEncoding.DecodeString(accountKey)
	if err != nil {
		return nil, fmt.Errorf("decode account key: %w", err)
	}
	if len(key) == 0 {
		return nil, fmt.Errorf("account key is empty")
	}
	return &SharedKeyCredential{accountName: accountName, accountKey: key}, nil
}

func (c *SharedKeyCredential) AccountName() string {
	return c.accountName
}

// ComputeHMACSHA256 returns the base64 HMAC-SHA256 of message under the account key.
func (c *SharedKeyCredential) ComputeHMACSHA256(message string) string {
	h := hmac.New(sha256.New, c.accountKey)
	h.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// AccountClaims are carried by account bearer tokens.
type AccountClaims struct {
	jwt.StandardClaims
	Account string `json:"account"`
}

// BearerToken issues a short-lived HS256 token proving possession of the
// account key.
func (c *SharedKeyCredential) BearerToken(ttl time.Duration) (string, error) {
	now := time.Now()
	claims := AccountClaims{
		StandardClaims: jwt.StandardClaims{
			Subject:   c.accountName,
			IssuedAt:  now.Unix(),
			NotBefore: now.Add(-time.Minute).Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
		Account: c.accountName,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.accountKey)
}

// VerifyBearerToken validates signature, expiry and that the token was minted
// for this account.
func (c *SharedKeyCredential) VerifyBearerToken(tokenString string) (*AccountClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AccountClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.accountKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sas_errors.ErrInvalidBearerToken, err)
	}
	claims, ok := token.Claims.(*AccountClaims)
	if !ok || !token.Valid {
		return nil, sas_errors.ErrInvalidBearerToken
	}
	if claims.Subject != c.accountName || claims.Account != c.accountName {
		return nil, fmt.Errorf("%w: token issued for account %q", sas_errors.ErrInvalidBearerToken, claims.Subject)
	}
	return claims, nil
}
