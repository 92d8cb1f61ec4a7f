package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-health-api/internal/models"
	appErrors "github.com/noah-isme/sma-health-api/pkg/errors"
)

func TestConsentTokenSignerIssueAndParse(t *testing.T) {
	signer := NewConsentTokenSigner("secret", time.Hour)
	token, expiresAt, err := signer.Issue("consent-1", models.ConsentStatusApproved)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := signer.Parse(token)
	require.NoError(t, err)
	require.Equal(t, "consent-1", claims.ConsentID)
	require.Equal(t, models.ConsentStatusApproved, claims.Status)
}

func TestConsentTokenSignerExpired(t *testing.T) {
	signer := NewConsentTokenSigner("secret", 15*time.Minute)
	signer.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, _, err := signer.Issue("consent-1", models.ConsentStatusRejected)
	require.NoError(t, err)

	signer.now = time.Now
	_, err = signer.Parse(token)
	require.Error(t, err)
	require.True(t, errors.Is(err, appErrors.ErrInvalidToken))
}

func TestConsentTokenSignerRejectsForeignSignature(t *testing.T) {
	token, _, err := NewConsentTokenSigner("other", time.Hour).Issue("consent-1", models.ConsentStatusApproved)
	require.NoError(t, err)

	_, err = NewConsentTokenSigner("secret", time.Hour).Parse(token)
	require.True(t, errors.Is(err, appErrors.ErrInvalidToken))

	_, err = NewConsentTokenSigner("secret", time.Hour).Parse("not-a-token")
	require.True(t, errors.Is(err, appErrors.ErrInvalidToken))
}

func TestConsentTokenSignerRejectsAccessTokens(t *testing.T) {
	claims := &models.JWTClaims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewConsentTokenSigner("secret", time.Hour).Parse(token)
	require.True(t, errors.Is(err, appErrors.ErrInvalidToken))
}

func TestConsentTokenSignerIssueRequiresDecision(t *testing.T) {
	_, _, err := NewConsentTokenSigner("secret", time.Hour).Issue("consent-1", models.ConsentStatusPending)
	require.Error(t, err)
}
