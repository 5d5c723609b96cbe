package grpcserver

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	qdv1 "quickDeliver/api/quickdeliver/v1"
	"quickDeliver/internal/auth"
	"quickDeliver/internal/backend"
)

// AdminServer implements quickdeliver.v1.AdminService. The admin role is
// checked against the users table by the backend on every call.
type AdminServer struct {
	Svc *backend.Service
}

func (s *AdminServer) CreateRestaurant(ctx context.Context, req *qdv1.CreateRestaurantRequest) (*qdv1.RestaurantResponse, error) {
	p, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	r, err := s.Svc.CreateRestaurant(ctx, p, req.Restaurant)
	if err != nil {
		return nil, toStatus(err)
	}
	return &qdv1.RestaurantResponse{Restaurant: r}, nil
}

func (s *AdminServer) AddMenuItem(ctx context.Context, req *qdv1.AddMenuItemRequest) (*qdv1.MenuItemResponse, error) {
	p, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	it, err := s.Svc.AddMenuItem(ctx, p, req.Item)
	if err != nil {
		return nil, toStatus(err)
	}
	return &qdv1.MenuItemResponse{Item: it}, nil
}

func (s *AdminServer) UpdateOrderStatus(ctx context.Context, req *qdv1.UpdateOrderStatusRequest) (*qdv1.OrderResponse, error) {
	if req.OrderID == "" {
		return nil, status.Error(codes.InvalidArgument, "order_id is required")
	}
	p, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	o, err := s.Svc.UpdateOrderStatus(ctx, p, req.OrderID, req.Status)
	if err != nil {
		return nil, toStatus(err)
	}
	return &qdv1.OrderResponse{Order: o}, nil
}

func (s *AdminServer) AssignDriver(ctx context.Context, req *qdv1.AssignDriverRequest) (*qdv1.OrderResponse, error) {
	if req.OrderID == "" {
		return nil, status.Error(codes.InvalidArgument, "order_id is required")
	}
	p, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	o, err := s.Svc.AssignDriver(ctx, p, req.OrderID, req.DriverName, req.EstimatedDelivery)
	if err != nil {
		return nil, toStatus(err)
	}
	return &qdv1.OrderResponse{Order: o}, nil
}
