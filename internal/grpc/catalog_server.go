package grpcserver

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	qdv1 "quickDeliver/api/quickdeliver/v1"
	"quickDeliver/internal/backend"
	"quickDeliver/internal/geo"
)

// CatalogServer implements quickdeliver.v1.CatalogService.
type CatalogServer struct {
	Svc *backend.Service
}

func (s *CatalogServer) ListRestaurants(ctx context.Context, req *qdv1.ListRestaurantsRequest) (*qdv1.ListRestaurantsResponse, error) {
	var origin *geo.Point
	if req.Lat != nil || req.Lng != nil {
		if req.Lat == nil || req.Lng == nil {
			return nil, status.Error(codes.InvalidArgument, "lat and lng must be set together")
		}
		origin = &geo.Point{Lat: *req.Lat, Lng: *req.Lng}
		if !origin.Valid() {
			return nil, status.Error(codes.InvalidArgument, "coordinates out of range")
		}
	}
	list, err := s.Svc.ListRestaurants(ctx, origin)
	if err != nil {
		return nil, toStatus(err)
	}
	return &qdv1.ListRestaurantsResponse{Restaurants: list}, nil
}
