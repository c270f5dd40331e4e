package apns

import (
	"io/ioutil"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"
)

// https://developer.apple.com/documentation/usernotifications/establishing-a-token-based-connection-to-apns

// SigningAlgorithm is the only algorithm APNs accepts for provider tokens.
const SigningAlgorithm = "ES256"

// Claims are asserted by a provider token.
type Claims struct {
	Issuer   string
	IssuedAt time.Time
}

// Signer produces a compact signed token from claims and a PEM encoded private key.
type Signer interface {
	Sign(claims Claims, key []byte, kid string) (string, error)
}

// ES256Signer signs provider tokens with an ECDSA P-256 key in PKCS#8 (.p8) or SEC 1 form.
type ES256Signer struct{}

// Sign implements Signer.
func (ES256Signer) Sign(claims Claims, key []byte, kid string) (string, error) {
	pk, err := jwt.ParseECPrivateKeyFromPEM(key)
	if err != nil {
		return "", errors.Wrap(err, "parse private key")
	}
	token := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.MapClaims{
		"iss": claims.Issuer,
		"iat": claims.IssuedAt.Unix(),
	})
	token.Header["kid"] = kid
	return token.SignedString(pk)
}

// Credential is a signed provider token and what it was signed for.
type Credential struct {
	Algorithm string
	Issuer    string
	KeyID     string
	Token     string
	IssuedAt  time.Time
}

// Expired reports whether the credential is older than lifetime at now.
func (c *Credential) Expired(lifetime time.Duration, now time.Time) bool {
	if lifetime <= 0 {
		return false
	}
	return !now.Before(c.IssuedAt.Add(lifetime))
}

// CreateJWT reads keyFile and signs a credential for teamID issued at now.
func CreateJWT(signer Signer, keyFile, kid, teamID string, now time.Time) (*Credential, error) {
	key, err := ioutil.ReadFile(keyFile)
	if err != nil {
		return nil, &CredentialError{Err: errors.Wrap(err, "read signing key")}
	}

	token, err := signer.Sign(Claims{Issuer: teamID, IssuedAt: now}, key, kid)
	if err != nil {
		return nil, &CredentialError{Err: errors.Wrap(err, "sign provider token")}
	}

	return &Credential{
		Algorithm: SigningAlgorithm,
		Issuer:    teamID,
		KeyID:     kid,
		Token:     token,
		IssuedAt:  now,
	}, nil
}
