package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/sma-health-api/internal/models"
	appErrors "github.com/noah-isme/sma-health-api/pkg/errors"
)

const consentTokenSubject = "consent-response"

// InvalidConsentLinkMessage is shown to parents whose email link cannot be verified.
const InvalidConsentLinkMessage = "Liên kết không hợp lệ hoặc đã hết hạn"

// ConsentTokenSigner issues and verifies the signed links that let parents answer from email.
type ConsentTokenSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewConsentTokenSigner constructs a signer. A non-positive ttl falls back to 15 minutes.
func NewConsentTokenSigner(secret string, ttl time.Duration) *ConsentTokenSigner {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &ConsentTokenSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token carrying the consent id and the decision it will apply.
func (s *ConsentTokenSigner) Issue(consentID string, status models.ConsentStatus) (string, time.Time, error) {
	if consentID == "" || !status.IsDecision() {
		return "", time.Time{}, fmt.Errorf("consent id and decision required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(s.ttl)
	claims := &models.ConsentTokenClaims{
		ConsentID: consentID,
		Status:    status,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   consentTokenSubject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign consent token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse verifies signature and expiry. Every failure maps to ErrInvalidToken.
func (s *ConsentTokenSigner) Parse(raw string) (*models.ConsentTokenClaims, error) {
	token, err := jwt.ParseWithClaims(raw, &models.ConsentTokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithSubject(consentTokenSubject),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidToken.Code, appErrors.ErrInvalidToken.Status, InvalidConsentLinkMessage)
	}
	claims, ok := token.Claims.(*models.ConsentTokenClaims)
	if !ok || !token.Valid || claims.ConsentID == "" || !claims.Status.IsDecision() {
		return nil, appErrors.Clone(appErrors.ErrInvalidToken, InvalidConsentLinkMessage)
	}
	return claims, nil
}
