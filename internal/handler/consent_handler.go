package handler

import (
	"bytes"
	"context"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-health-api/internal/dto"
	"github.com/noah-isme/sma-health-api/internal/models"
	"github.com/noah-isme/sma-health-api/internal/service"
	appErrors "github.com/noah-isme/sma-health-api/pkg/errors"
	"github.com/noah-isme/sma-health-api/pkg/response"
)

type consentService interface {
	RespondAsParent(ctx context.Context, parentID, consentID string, req dto.RespondConsentRequest) (*models.Consent, error)
	RespondWithToken(ctx context.Context, token string) (*models.Consent, error)
	ListPending(ctx context.Context, parentID string) ([]models.ConsentDetail, error)
	ListHistory(ctx context.Context, parentID string) ([]models.ConsentDetail, error)
}

var consentResultPage = template.Must(template.New("consent-result").Parse(`<!DOCTYPE html>
<html lang="vi">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
<p>{{.Message}}</p>
</body>
</html>`))

// ConsentHandler exposes parent consent endpoints.
type ConsentHandler struct {
	consents consentService
	actors   actorResolver
}

// NewConsentHandler builds a new handler.
func NewConsentHandler(consents consentService, actors actorResolver) *ConsentHandler {
	return &ConsentHandler{consents: consents, actors: actors}
}

// Pending godoc
// @Summary List consents awaiting the parent's decision
// @Tags Consents
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /consents/pending [get]
func (h *ConsentHandler) Pending(c *gin.Context) {
	parent, err := currentParent(c, h.actors)
	if err != nil {
		response.Error(c, err)
		return
	}
	items, err := h.consents.ListPending(c.Request.Context(), parent.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items)
}

// History godoc
// @Summary List consents the parent already answered
// @Tags Consents
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /consents/history [get]
func (h *ConsentHandler) History(c *gin.Context) {
	parent, err := currentParent(c, h.actors)
	if err != nil {
		response.Error(c, err)
		return
	}
	items, err := h.consents.ListHistory(c.Request.Context(), parent.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items)
}

// Respond godoc
// @Summary Approve or reject a consent
// @Tags Consents
// @Accept json
// @Produce json
// @Param id path string true "Consent ID"
// @Param payload body dto.RespondConsentRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Router /consents/{id}/respond [post]
func (h *ConsentHandler) Respond(c *gin.Context) {
	var req dto.RespondConsentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid consent response payload"))
		return
	}
	parent, err := currentParent(c, h.actors)
	if err != nil {
		response.Error(c, err)
		return
	}
	consent, err := h.consents.RespondAsParent(c.Request.Context(), parent.ID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, consent)
}

// RespondPublic godoc
// @Summary Apply a consent decision from an email link
// @Tags Consents
// @Produce html
// @Param token query string true "Signed consent token"
// @Success 200 {string} string "HTML confirmation page"
// @Router /public/consents/respond [get]
func (h *ConsentHandler) RespondPublic(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		h.renderResult(c, http.StatusBadRequest, publicFailureTitle, service.InvalidConsentLinkMessage+".")
		return
	}
	consent, err := h.consents.RespondWithToken(c.Request.Context(), token)
	if err != nil {
		appErr := appErrors.FromError(err)
		if appErr.Status >= http.StatusInternalServerError {
			_ = c.Error(err)
		}
		h.renderResult(c, appErr.Status, publicFailureTitle, publicFailureMessage(appErr))
		return
	}
	message := "Cảm ơn Quý phụ huynh. Nhà trường đã ghi nhận sự đồng ý."
	if consent.Status == models.ConsentStatusRejected {
		message = "Cảm ơn Quý phụ huynh. Nhà trường đã ghi nhận việc từ chối."
	}
	h.renderResult(c, http.StatusOK, "Đã ghi nhận phản hồi", message)
}

const publicFailureTitle = "Không thể ghi nhận phản hồi"

// publicFailureMessage picks the Vietnamese text for the email landing page;
// internal messages are never shown there.
func publicFailureMessage(appErr *appErrors.Error) string {
	if appErr.Status >= http.StatusInternalServerError {
		return "Đã xảy ra lỗi, vui lòng thử lại sau."
	}
	switch appErr.Code {
	case appErrors.ErrInvalidToken.Code:
		return service.InvalidConsentLinkMessage + "."
	case appErrors.ErrConflict.Code:
		return "Phiếu đồng ý này đã được phản hồi trước đó."
	case appErrors.ErrNotFound.Code:
		return "Không tìm thấy phiếu đồng ý. Phiếu có thể đã được thay thế, vui lòng kiểm tra email mới nhất từ nhà trường."
	default:
		return "Yêu cầu không hợp lệ, vui lòng liên hệ phòng y tế của trường."
	}
}

func (h *ConsentHandler) renderResult(c *gin.Context, status int, title, message string) {
	var body bytes.Buffer
	if err := consentResultPage.Execute(&body, map[string]string{"Title": title, "Message": message}); err != nil {
		response.Error(c, appErrors.Internal(err, "failed to render page"))
		return
	}
	response.HTML(c, status, body.String())
}
