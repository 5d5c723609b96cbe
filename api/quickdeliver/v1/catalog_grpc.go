package quickdeliverv1

import (
	"context"

	"google.golang.org/grpc"
)

const CatalogService_ListRestaurants_FullMethodName = "/quickdeliver.v1.CatalogService/ListRestaurants"

// CatalogServiceServer serves the public restaurant catalog.
type CatalogServiceServer interface {
	ListRestaurants(context.Context, *ListRestaurantsRequest) (*ListRestaurantsResponse, error)
}

var CatalogService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "quickdeliver.v1.CatalogService",
	HandlerType: (*CatalogServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListRestaurants", Handler: unary(CatalogService_ListRestaurants_FullMethodName, CatalogServiceServer.ListRestaurants)},
	},
	Metadata: "quickdeliver/v1/catalog",
}

func RegisterCatalogServiceServer(s grpc.ServiceRegistrar, srv CatalogServiceServer) {
	s.RegisterService(&CatalogService_ServiceDesc, srv)
}

type CatalogServiceClient interface {
	ListRestaurants(ctx context.Context, in *ListRestaurantsRequest, opts ...grpc.CallOption) (*ListRestaurantsResponse, error)
}

type catalogServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewCatalogServiceClient(cc grpc.ClientConnInterface) CatalogServiceClient {
	return &catalogServiceClient{cc}
}

func (c *catalogServiceClient) ListRestaurants(ctx context.Context, in *ListRestaurantsRequest, opts ...grpc.CallOption) (*ListRestaurantsResponse, error) {
	return invoke[ListRestaurantsResponse](ctx, c.cc, CatalogService_ListRestaurants_FullMethodName, in, opts...)
}
