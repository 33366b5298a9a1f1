package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mcnijman/go-emailaddress"

	"github.com/yeremiapane/storefront-notify/services"
	"github.com/yeremiapane/storefront-notify/utils"
)

type CustomerController struct {
	shopify *services.ShopifyService
}

func NewCustomerController(shopify *services.ShopifyService) *CustomerController {
	return &CustomerController{shopify: shopify}
}

// CheckCustomer reports whether the given e-mail belongs to a registered
// customer.
func (cc *CustomerController) CheckCustomer(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing email"})
		return
	}
	if _, err := emailaddress.Parse(email); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email"})
		return
	}

	registered, err := cc.shopify.FindByEmail(c.Request.Context(), email)
	if err != nil {
		utils.ErrorLogger.Errorf("check customer %q failed: %v", email, err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("internal server error"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"registered": registered})
}
