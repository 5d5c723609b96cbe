package quickdeliverv1

import "quickDeliver/models"

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse carries a bearer token for subsequent calls.
type SessionResponse struct {
	AccessToken string       `json:"access_token"`
	ExpiresAt   string       `json:"expires_at"` // RFC3339
	User        *models.User `json:"user"`
}

type GetSessionRequest struct{}

type GetSessionResponse struct {
	User *models.User `json:"user"`
}

// ListRestaurantsRequest optionally carries the caller's location for distance labels.
type ListRestaurantsRequest struct {
	Lat *float64 `json:"lat,omitempty"`
	Lng *float64 `json:"lng,omitempty"`
}

type ListRestaurantsResponse struct {
	Restaurants []models.Restaurant `json:"restaurants"`
}

type PlaceOrderRequest struct {
	Order models.NewOrder `json:"order"`
}

type OrderResponse struct {
	Order *models.Order `json:"order"`
}

type GetOrderRequest struct {
	OrderID string `json:"order_id"`
}

type ListOrdersRequest struct {
	PageSize  int32  `json:"page_size,omitempty"`
	PageToken string `json:"page_token,omitempty"`
}

type ListOrdersResponse struct {
	Orders        []models.Order `json:"orders"`
	NextPageToken string         `json:"next_page_token,omitempty"`
}

type WatchOrderRequest struct {
	OrderID string `json:"order_id"`
}

// OrderEvent is one snapshot on a WatchOrder stream. The first event is the current state.
type OrderEvent struct {
	Order *models.Order `json:"order"`
}

type CreateRestaurantRequest struct {
	Restaurant models.Restaurant `json:"restaurant"`
}

type RestaurantResponse struct {
	Restaurant *models.Restaurant `json:"restaurant"`
}

type AddMenuItemRequest struct {
	Item models.MenuItem `json:"item"`
}

type MenuItemResponse struct {
	Item *models.MenuItem `json:"item"`
}

type UpdateOrderStatusRequest struct {
	OrderID string             `json:"order_id"`
	Status  models.OrderStatus `json:"status"`
}

type AssignDriverRequest struct {
	OrderID           string `json:"order_id"`
	DriverName        string `json:"driver_name"`
	EstimatedDelivery string `json:"estimated_delivery,omitempty"`
}
