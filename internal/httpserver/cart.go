package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type addCartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

func getCartHandler(carts CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := carts.Get(c.Request.Context(), currentUser(c).ID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func cartSummaryHandler(carts CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		summary, err := carts.GetSummary(c.Request.Context(), currentUser(c).ID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}

func addCartItemHandler(carts CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addCartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		if req.ProductID == "" {
			badRequest(c, "productId is required")
			return
		}
		view, err := carts.AddItem(c.Request.Context(), currentUser(c).ID, req.ProductID, req.Quantity)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, view)
	}
}

func updateCartItemHandler(carts CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateCartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		view, err := carts.UpdateItemQuantity(c.Request.Context(), currentUser(c).ID, c.Param("productID"), req.Quantity)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func removeCartItemHandler(carts CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := carts.RemoveItem(c.Request.Context(), currentUser(c).ID, c.Param("productID"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func clearCartHandler(carts CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := carts.Clear(c.Request.Context(), currentUser(c).ID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}
