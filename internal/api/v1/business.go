package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	ierr "github.com/rentstack/rentstack/internal/errors"
	"github.com/rentstack/rentstack/internal/logger"
	"github.com/rentstack/rentstack/internal/service"
)

type BusinessHandler struct {
	service service.BusinessService
	log     *logger.Logger
}

func NewBusinessHandler(service service.BusinessService, log *logger.Logger) *BusinessHandler {
	return &BusinessHandler{
		service: service,
		log:     log,
	}
}

// @Summary Get a business
// @Description Get a business with its subscription and payment method state
// @Tags Businesses
// @Produce json
// @Param id path string true "Business ID"
// @Success 200 {object} dto.BusinessResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /businesses/{id} [get]
func (h *BusinessHandler) GetBusiness(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("business id is required").
			WithHint("Business ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GetBusiness(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary List businesses
// @Description List all businesses with their subscription state
// @Tags Businesses
// @Produce json
// @Success 200 {object} dto.ListBusinessesResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /businesses [get]
func (h *BusinessHandler) ListBusinesses(c *gin.Context) {
	resp, err := h.service.ListBusinesses(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Search business names
// @Description Look up business id and name pairs matching a query
// @Tags Businesses
// @Produce json
// @Param query query string false "Name fragment to match"
// @Success 200 {object} dto.ListBusinessNamesResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /businesses/names [get]
func (h *BusinessHandler) SearchNames(c *gin.Context) {
	resp, err := h.service.SearchNames(c.Request.Context(), c.Query("query"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Get paid employee count
// @Description Get the number of employees occupying a paid seat
// @Tags Businesses
// @Produce json
// @Param id path string true "Business ID"
// @Success 200 {object} dto.PaidEmployeesCountResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /businesses/{id}/paid-employees-count [get]
func (h *BusinessHandler) PaidEmployeesCount(c *gin.Context) {
	resp, err := h.service.PaidEmployeesCount(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
