package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SUHAIBCHEMBAN/autozen/internal/domain"
	checkoutsvc "github.com/SUHAIBCHEMBAN/autozen/internal/service/checkout"
)

type cancelOrderRequest struct {
	Notes string `json:"notes"`
}

type updateOrderStatusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

type trackOrderRequest struct {
	OrderNumber string `json:"orderNumber"`
	Email       string `json:"email"`
}

type payOrderRequest struct {
	Gateway string `json:"gateway"`
}

type upsertGatewayRequest struct {
	Gateway       string `json:"gateway" binding:"required"`
	IsActive      bool   `json:"isActive"`
	MerchantID    string `json:"merchantId"`
	PublicKey     string `json:"publicKey"`
	SecretKey     string `json:"secretKey"`
	WebhookSecret string `json:"webhookSecret"`
	Currency      string `json:"currency"`
}

func checkoutHandler(checkout CheckoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in checkoutsvc.Input
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		order, err := checkout.Checkout(c.Request.Context(), currentUser(c).ID, in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"order": order})
	}
}

func listOrdersHandler(orders OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		var (
			list []domain.Order
			err  error
		)
		if user.IsStaff {
			list, err = orders.ListAll(c.Request.Context())
		} else {
			list, err = orders.ListForUser(c.Request.Context(), user.ID)
		}
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": list, "count": len(list)})
	}
}

func getOrderHandler(orders OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := orders.Get(c.Request.Context(), c.Param("orderNumber"))
		if err != nil {
			writeError(c, err)
			return
		}
		user := currentUser(c)
		// Non-staff callers only ever see their own orders; a foreign order
		// number reads as absent, not forbidden.
		if !user.IsStaff && order.UserID != user.ID {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}

func cancelOrderHandler(orders OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req cancelOrderRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				badRequest(c, "invalid request body")
				return
			}
		}
		number := c.Param("orderNumber")
		order, err := orders.Get(c.Request.Context(), number)
		if err != nil {
			writeError(c, err)
			return
		}
		user := currentUser(c)
		if !user.IsStaff && order.UserID != user.ID {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		cancelled, err := orders.Cancel(c.Request.Context(), number, req.Notes)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": cancelled})
	}
}

func updateOrderStatusHandler(orders OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		order, err := orders.UpdateStatus(c.Request.Context(), c.Param("orderNumber"), domain.OrderStatus(req.Status), req.Notes)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}

func trackOrderHandler(orders OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req trackOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		order, err := orders.Track(c.Request.Context(), req.OrderNumber, req.Email)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}

func payOrderHandler(payments PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req payOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		txn, order, err := payments.Pay(c.Request.Context(), currentUser(c).ID, c.Param("orderNumber"), domain.PaymentGateway(req.Gateway))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":     "payment processed successfully",
			"transaction": txn,
			"order":       order,
		})
	}
}

func orderTransactionsHandler(payments PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		txns, err := payments.TransactionsForOrder(c.Request.Context(), user.ID, c.Param("orderNumber"), user.IsStaff)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"transactions": txns, "count": len(txns)})
	}
}

func listGatewaysHandler(payments PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		configs, err := payments.ListConfigs(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"gateways": configs, "count": len(configs)})
	}
}

func upsertGatewayHandler(payments PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req upsertGatewayRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		cfg, err := payments.UpsertConfig(c.Request.Context(), domain.PaymentConfiguration{
			Gateway:       domain.PaymentGateway(req.Gateway),
			IsActive:      req.IsActive,
			MerchantID:    req.MerchantID,
			PublicKey:     req.PublicKey,
			SecretKey:     req.SecretKey,
			WebhookSecret: req.WebhookSecret,
			Currency:      req.Currency,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"gateway": cfg})
	}
}
