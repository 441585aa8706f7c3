package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type addWishlistItemRequest struct {
	ProductID string `json:"productId"`
}

func getWishlistHandler(wishlists WishlistService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := wishlists.Get(c.Request.Context(), currentUser(c).ID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func addWishlistItemHandler(wishlists WishlistService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addWishlistItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		if req.ProductID == "" {
			badRequest(c, "productId is required")
			return
		}
		list, added, err := wishlists.Add(c.Request.Context(), currentUser(c).ID, req.ProductID)
		if err != nil {
			writeError(c, err)
			return
		}
		// 201 only when the product was not on the list already.
		status := http.StatusOK
		if added {
			status = http.StatusCreated
		}
		c.JSON(status, list)
	}
}

func removeWishlistItemHandler(wishlists WishlistService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := wishlists.Remove(c.Request.Context(), currentUser(c).ID, c.Param("productID"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func clearWishlistHandler(wishlists WishlistService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := wishlists.Clear(c.Request.Context(), currentUser(c).ID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}
