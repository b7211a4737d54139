package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rentstack/rentstack/internal/api/dto"
	ierr "github.com/rentstack/rentstack/internal/errors"
	"github.com/rentstack/rentstack/internal/logger"
	"github.com/rentstack/rentstack/internal/service"
	"github.com/rentstack/rentstack/internal/types"
)

type BillingHandler struct {
	service service.BillingService
	log     *logger.Logger
}

func NewBillingHandler(service service.BillingService, log *logger.Logger) *BillingHandler {
	return &BillingHandler{
		service: service,
		log:     log,
	}
}

// actorFrom identifies the employee driving the change from request headers.
func actorFrom(c *gin.Context) types.Actor {
	return types.Actor{
		EmployeeID: types.GetEmployeeID(c.Request.Context()),
		Name:       c.GetHeader(types.HeaderEmployeeName),
	}
}

// @Summary Change subscription tier
// @Description Move the business to another subscription tier with proration
// @Tags Billing
// @Accept json
// @Produce json
// @Param id path string true "Business ID"
// @Param request body dto.ChangeTierRequest true "Target tier"
// @Success 200 {object} dto.BusinessResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 422 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /businesses/{id}/subscription/tier [post]
func (h *BillingHandler) ChangeTier(c *gin.Context) {
	var req dto.ChangeTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ChangeTier(c.Request.Context(), c.Param("id"), req.SubscriptionTier, actorFrom(c))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Change billing cycle
// @Description Switch the subscription between monthly and yearly billing
// @Tags Billing
// @Accept json
// @Produce json
// @Param id path string true "Business ID"
// @Param request body dto.ChangeBillingIntervalRequest true "Target billing interval"
// @Success 200 {object} dto.BusinessResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /businesses/{id}/subscription/billing-interval [post]
func (h *BillingHandler) ChangeBillingInterval(c *gin.Context) {
	var req dto.ChangeBillingIntervalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ChangeBillingInterval(c.Request.Context(), c.Param("id"), req.BillingInterval, actorFrom(c))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Change seat count
// @Description Set the number of paid seats on the subscription
// @Tags Billing
// @Accept json
// @Produce json
// @Param id path string true "Business ID"
// @Param request body dto.UserCountRequest true "Target seat count"
// @Success 200 {object} dto.BusinessResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /businesses/{id}/subscription/user-count [post]
func (h *BillingHandler) ChangeUserCount(c *gin.Context) {
	var req dto.UserCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ChangeUserCount(c.Request.Context(), c.Param("id"), req.AvailableUserCount)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Preview a seat count change
// @Description Compute the prorated charge a seat count change would produce
// @Tags Billing
// @Accept json
// @Produce json
// @Param id path string true "Business ID"
// @Param request body dto.UserCountRequest true "Target seat count"
// @Success 200 {object} gateway.ProrationQuote
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 422 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /businesses/{id}/subscription/user-count/preview [post]
func (h *BillingHandler) PreviewUserCountChange(c *gin.Context) {
	var req dto.UserCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.PreviewUserCountChange(c.Request.Context(), c.Param("id"), req.AvailableUserCount)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Toggle Storefront+
// @Description Enable or disable the Storefront+ add-on
// @Tags Billing
// @Accept json
// @Produce json
// @Param id path string true "Business ID"
// @Param request body dto.StorefrontRequest true "Add-on flag"
// @Success 200 {object} dto.BusinessResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /businesses/{id}/subscription/storefront [post]
func (h *BillingHandler) SetStorefront(c *gin.Context) {
	var req dto.StorefrontRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.SetStorefrontIncluded(c.Request.Context(), c.Param("id"), req.StorefrontIncluded, actorFrom(c))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Request a downgrade
// @Description Record downgrade intent without touching the gateway
// @Tags Billing
// @Accept json
// @Produce json
// @Param id path string true "Business ID"
// @Param request body dto.DowngradeRequest true "Target tier"
// @Success 200 {object} dto.BusinessResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /businesses/{id}/subscription/downgrade-request [post]
func (h *BillingHandler) RequestDowngrade(c *gin.Context) {
	var req dto.DowngradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.RequestDowngrade(c.Request.Context(), c.Param("id"), req.SubscriptionTier, actorFrom(c))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Request cancellation
// @Description Record cancellation intent. Safe to repeat; notifications fire once.
// @Tags Billing
// @Produce json
// @Param id path string true "Business ID"
// @Success 200 {object} dto.BusinessResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /businesses/{id}/subscription/cancellation-request [post]
func (h *BillingHandler) RequestCancellation(c *gin.Context) {
	resp, err := h.service.RequestCancellation(c.Request.Context(), c.Param("id"), actorFrom(c))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Save a credit card
// @Description Store a card as the default funding source, replacing any existing card
// @Tags Billing
// @Accept json
// @Produce json
// @Param id path string true "Business ID"
// @Param request body dto.SaveCreditCardRequest true "Card details or token"
// @Success 200 {object} dto.BusinessResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 422 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /businesses/{id}/payment-methods/card [post]
func (h *BillingHandler) SaveCreditCard(c *gin.Context) {
	var req dto.SaveCreditCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.SaveCreditCard(c.Request.Context(), c.Param("id"), req, actorFrom(c))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Save a bank account
// @Description Resolve a bank link token and store the account as a funding source
// @Tags Billing
// @Accept json
// @Produce json
// @Param id path string true "Business ID"
// @Param request body dto.SaveBankAccountRequest true "Bank link token"
// @Success 200 {object} dto.BusinessResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 422 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /businesses/{id}/payment-methods/bank-account [post]
func (h *BillingHandler) SaveBankAccount(c *gin.Context) {
	var req dto.SaveBankAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.SaveBankAccount(c.Request.Context(), c.Param("id"), req, actorFrom(c))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Reactivate a business
// @Description Store a fresh card, clear cancellation intent and set the business active
// @Tags Billing
// @Accept json
// @Produce json
// @Param id path string true "Business ID"
// @Param request body dto.SaveCreditCardRequest true "Card details or token"
// @Success 200 {object} dto.BusinessResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 422 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /businesses/{id}/reactivate [post]
func (h *BillingHandler) Reactivate(c *gin.Context) {
	var req dto.SaveCreditCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.Reactivate(c.Request.Context(), c.Param("id"), req, actorFrom(c))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
