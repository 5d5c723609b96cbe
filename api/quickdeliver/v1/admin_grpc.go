package quickdeliverv1

import (
	"context"

	"google.golang.org/grpc"
)

const (
	AdminService_CreateRestaurant_FullMethodName  = "/quickdeliver.v1.AdminService/CreateRestaurant"
	AdminService_AddMenuItem_FullMethodName       = "/quickdeliver.v1.AdminService/AddMenuItem"
	AdminService_UpdateOrderStatus_FullMethodName = "/quickdeliver.v1.AdminService/UpdateOrderStatus"
	AdminService_AssignDriver_FullMethodName      = "/quickdeliver.v1.AdminService/AssignDriver"
)

// AdminServiceServer mutates the catalog and drives orders from outside the storefront.
type AdminServiceServer interface {
	CreateRestaurant(context.Context, *CreateRestaurantRequest) (*RestaurantResponse, error)
	AddMenuItem(context.Context, *AddMenuItemRequest) (*MenuItemResponse, error)
	UpdateOrderStatus(context.Context, *UpdateOrderStatusRequest) (*OrderResponse, error)
	AssignDriver(context.Context, *AssignDriverRequest) (*OrderResponse, error)
}

var AdminService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "quickdeliver.v1.AdminService",
	HandlerType: (*AdminServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateRestaurant", Handler: unary(AdminService_CreateRestaurant_FullMethodName, AdminServiceServer.CreateRestaurant)},
		{MethodName: "AddMenuItem", Handler: unary(AdminService_AddMenuItem_FullMethodName, AdminServiceServer.AddMenuItem)},
		{MethodName: "UpdateOrderStatus", Handler: unary(AdminService_UpdateOrderStatus_FullMethodName, AdminServiceServer.UpdateOrderStatus)},
		{MethodName: "AssignDriver", Handler: unary(AdminService_AssignDriver_FullMethodName, AdminServiceServer.AssignDriver)},
	},
	Metadata: "quickdeliver/v1/admin",
}

func RegisterAdminServiceServer(s grpc.ServiceRegistrar, srv AdminServiceServer) {
	s.RegisterService(&AdminService_ServiceDesc, srv)
}

type AdminServiceClient interface {
	CreateRestaurant(ctx context.Context, in *CreateRestaurantRequest, opts ...grpc.CallOption) (*RestaurantResponse, error)
	AddMenuItem(ctx context.Context, in *AddMenuItemRequest, opts ...grpc.CallOption) (*MenuItemResponse, error)
	UpdateOrderStatus(ctx context.Context, in *UpdateOrderStatusRequest, opts ...grpc.CallOption) (*OrderResponse, error)
	AssignDriver(ctx context.Context, in *AssignDriverRequest, opts ...grpc.CallOption) (*OrderResponse, error)
}

type adminServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewAdminServiceClient(cc grpc.ClientConnInterface) AdminServiceClient {
	return &adminServiceClient{cc}
}

func (c *adminServiceClient) CreateRestaurant(ctx context.Context, in *CreateRestaurantRequest, opts ...grpc.CallOption) (*RestaurantResponse, error) {
	return invoke[RestaurantResponse](ctx, c.cc, AdminService_CreateRestaurant_FullMethodName, in, opts...)
}

func (c *adminServiceClient) AddMenuItem(ctx context.Context, in *AddMenuItemRequest, opts ...grpc.CallOption) (*MenuItemResponse, error) {
	return invoke[MenuItemResponse](ctx, c.cc, AdminService_AddMenuItem_FullMethodName, in, opts...)
}

func (c *adminServiceClient) UpdateOrderStatus(ctx context.Context, in *UpdateOrderStatusRequest, opts ...grpc.CallOption) (*OrderResponse, error) {
	return invoke[OrderResponse](ctx, c.cc, AdminService_UpdateOrderStatus_FullMethodName, in, opts...)
}

func (c *adminServiceClient) AssignDriver(ctx context.Context, in *AssignDriverRequest, opts ...grpc.CallOption) (*OrderResponse, error) {
	return invoke[OrderResponse](ctx, c.cc, AdminService_AssignDriver_FullMethodName, in, opts...)
}
