package grpcserver

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	qdv1 "quickDeliver/api/quickdeliver/v1"
	"quickDeliver/internal/auth"
	"quickDeliver/internal/backend"
	"quickDeliver/internal/logging"
	"quickDeliver/internal/realtime"
)

// OrderServer implements quickdeliver.v1.OrderService.
type OrderServer struct {
	Svc *backend.Service
}

// PlaceOrder creates a new order for the authenticated user.
func (s *OrderServer) PlaceOrder(ctx context.Context, req *qdv1.PlaceOrderRequest) (*qdv1.OrderResponse, error) {
	p, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	o, err := s.Svc.PlaceOrder(ctx, p, req.Order)
	if err != nil {
		return nil, toStatus(err)
	}
	return &qdv1.OrderResponse{Order: o}, nil
}

func (s *OrderServer) GetOrder(ctx context.Context, req *qdv1.GetOrderRequest) (*qdv1.OrderResponse, error) {
	if req.OrderID == "" {
		return nil, status.Error(codes.InvalidArgument, "order_id is required")
	}
	p, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	o, err := s.Svc.GetOrder(ctx, p, req.OrderID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &qdv1.OrderResponse{Order: o}, nil
}

// ListOrders retrieves paginated orders for the authenticated user.
func (s *OrderServer) ListOrders(ctx context.Context, req *qdv1.ListOrdersRequest) (*qdv1.ListOrdersResponse, error) {
	p, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	list, next, err := s.Svc.ListOrders(ctx, p, int(req.PageSize), req.PageToken)
	if err != nil {
		return nil, toStatus(err)
	}
	return &qdv1.ListOrdersResponse{Orders: list, NextPageToken: next}, nil
}

// WatchOrder sends the current snapshot, then every newer snapshot until the client goes away.
func (s *OrderServer) WatchOrder(req *qdv1.WatchOrderRequest, stream qdv1.OrderService_WatchOrderServer) error {
	if req.OrderID == "" {
		return status.Error(codes.InvalidArgument, "order_id is required")
	}
	ctx := stream.Context()
	p, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return err
	}
	sub, snap, err := s.Svc.WatchOrder(ctx, p, req.OrderID, realtime.DefaultBuffer)
	if err != nil {
		return toStatus(err)
	}
	defer sub.Close()

	if err := stream.Send(&qdv1.OrderEvent{Order: snap}); err != nil {
		return err
	}
	last := snap.Version
	for {
		select {
		case <-ctx.Done():
			return nil
		case o, ok := <-sub.C:
			if !ok {
				return nil
			}
			if o.Version <= last {
				continue
			}
			last = o.Version
			if err := stream.Send(&qdv1.OrderEvent{Order: &o}); err != nil {
				logging.FromCtx(ctx).Warn("watch send failed", "order_id", o.ID, "err", err)
				return err
			}
		}
	}
}
