package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"quickDeliver/internal/backend"
	"quickDeliver/internal/geo"
	"quickDeliver/models"
)

// Handler serves the v1 HTTP routes on top of backend.Service.
type Handler struct {
	Svc *backend.Service
}

type credentials struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type sessionResp struct {
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        *models.User `json:"user"`
}

func (h *Handler) SignUp(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "email and password are required")
		return
	}
	sess, err := h.Svc.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sessionResp{AccessToken: sess.Token, ExpiresAt: sess.ExpiresAt, User: sess.User})
}

func (h *Handler) SignIn(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "email and password are required")
		return
	}
	sess, err := h.Svc.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResp{AccessToken: sess.Token, ExpiresAt: sess.ExpiresAt, User: sess.User})
}

func (h *Handler) Session(c *gin.Context) {
	u, err := h.Svc.GetSession(c.Request.Context(), principal(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

// ListRestaurants accepts optional lat/lng query parameters for distance labels.
func (h *Handler) ListRestaurants(c *gin.Context) {
	var origin *geo.Point
	latS, lngS := c.Query("lat"), c.Query("lng")
	if latS != "" || lngS != "" {
		lat, err1 := strconv.ParseFloat(latS, 64)
		lng, err2 := strconv.ParseFloat(lngS, 64)
		if err1 != nil || err2 != nil {
			badRequest(c, "lat and lng must both be numbers")
			return
		}
		origin = &geo.Point{Lat: lat, Lng: lng}
		if !origin.Valid() {
			badRequest(c, "coordinates out of range")
			return
		}
	}
	list, err := h.Svc.ListRestaurants(c.Request.Context(), origin)
	if err != nil {
		writeError(c, err)
		return
	}
	if list == nil {
		list = []models.Restaurant{}
	}
	c.JSON(http.StatusOK, gin.H{"restaurants": list})
}

// PlaceOrder takes the idempotency key from X-Idempotency-Key unless the body carries one.
func (h *Handler) PlaceOrder(c *gin.Context) {
	var in models.NewOrder
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid order body")
		return
	}
	if in.IdempotencyKey == "" {
		in.IdempotencyKey = c.GetHeader("X-Idempotency-Key")
	}
	o, err := h.Svc.PlaceOrder(c.Request.Context(), principal(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": o})
}

func (h *Handler) GetOrder(c *gin.Context) {
	o, err := h.Svc.GetOrder(c.Request.Context(), principal(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": o})
}

func (h *Handler) ListOrders(c *gin.Context) {
	size := 0
	if s := c.Query("page_size"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			badRequest(c, "page_size must be a non-negative integer")
			return
		}
		size = n
	}
	list, next, err := h.Svc.ListOrders(c.Request.Context(), principal(c), size, c.Query("page_token"))
	if err != nil {
		writeError(c, err)
		return
	}
	if list == nil {
		list = []models.Order{}
	}
	resp := gin.H{"orders": list}
	if next != "" {
		resp["next_page_token"] = next
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) CreateRestaurant(c *gin.Context) {
	var r models.Restaurant
	if err := c.ShouldBindJSON(&r); err != nil {
		badRequest(c, "invalid restaurant body")
		return
	}
	out, err := h.Svc.CreateRestaurant(c.Request.Context(), principal(c), r)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"restaurant": out})
}

func (h *Handler) AddMenuItem(c *gin.Context) {
	rid, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || rid <= 0 {
		badRequest(c, "restaurant id must be a positive integer")
		return
	}
	var it models.MenuItem
	if err := c.ShouldBindJSON(&it); err != nil {
		badRequest(c, "invalid menu item body")
		return
	}
	it.RestaurantID = rid
	out, err := h.Svc.AddMenuItem(c.Request.Context(), principal(c), it)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"item": out})
}

type statusReq struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	var req statusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "status is required")
		return
	}
	o, err := h.Svc.UpdateOrderStatus(c.Request.Context(), principal(c), c.Param("id"), req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": o})
}

type driverReq struct {
	DriverName        string `json:"driver_name" binding:"required"`
	EstimatedDelivery string `json:"estimated_delivery"`
}

func (h *Handler) AssignDriver(c *gin.Context) {
	var req driverReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "driver_name is required")
		return
	}
	o, err := h.Svc.AssignDriver(c.Request.Context(), principal(c), c.Param("id"), req.DriverName, req.EstimatedDelivery)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": o})
}
