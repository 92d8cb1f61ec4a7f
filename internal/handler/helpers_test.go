package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-health-api/internal/middleware"
	"github.com/noah-isme/sma-health-api/internal/models"
	appErrors "github.com/noah-isme/sma-health-api/pkg/errors"
	"github.com/noah-isme/sma-health-api/pkg/response"
)

type actorStub struct {
	parents map[string]models.Parent
	nurses  map[string]models.Nurse
}

func newActorStub() *actorStub {
	return &actorStub{
		parents: map[string]models.Parent{"u-parent": {ID: "p-1", UserID: "u-parent"}},
		nurses:  map[string]models.Nurse{"u-nurse": {ID: "n-1", UserID: "u-nurse", Active: true}},
	}
}

func (a *actorStub) ParentForUser(ctx context.Context, userID string) (*models.Parent, error) {
	parent, ok := a.parents[userID]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "account is not linked to a parent profile")
	}
	return &parent, nil
}

func (a *actorStub) NurseForUser(ctx context.Context, userID string) (*models.Nurse, error) {
	nurse, ok := a.nurses[userID]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "account is not linked to a nurse profile")
	}
	return &nurse, nil
}

var (
	parentClaims  = &models.JWTClaims{UserID: "u-parent", Role: models.RoleParent}
	nurseClaims   = &models.JWTClaims{UserID: "u-nurse", Role: models.RoleNurse}
	managerClaims = &models.JWTClaims{UserID: "u-manager", Role: models.RoleManager}
)

func newTestContext(method, target, body string, claims *models.JWTClaims, params ...gin.Param) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}
	req, _ := http.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	c.Request = req
	c.Params = params
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	return c, w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}
