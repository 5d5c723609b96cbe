package quickdeliverv1

import (
	"context"

	"google.golang.org/grpc"
)

const (
	OrderService_PlaceOrder_FullMethodName = "/quickdeliver.v1.OrderService/PlaceOrder"
	OrderService_GetOrder_FullMethodName   = "/quickdeliver.v1.OrderService/GetOrder"
	OrderService_ListOrders_FullMethodName = "/quickdeliver.v1.OrderService/ListOrders"
	OrderService_WatchOrder_FullMethodName = "/quickdeliver.v1.OrderService/WatchOrder"
)

// OrderServiceServer places, reads and streams the caller's orders.
type OrderServiceServer interface {
	PlaceOrder(context.Context, *PlaceOrderRequest) (*OrderResponse, error)
	GetOrder(context.Context, *GetOrderRequest) (*OrderResponse, error)
	ListOrders(context.Context, *ListOrdersRequest) (*ListOrdersResponse, error)
	WatchOrder(*WatchOrderRequest, OrderService_WatchOrderServer) error
}

// OrderService_WatchOrderServer is the server side of a WatchOrder stream.
type OrderService_WatchOrderServer interface {
	Send(*OrderEvent) error
	grpc.ServerStream
}

type orderServiceWatchOrderServer struct {
	grpc.ServerStream
}

func (x *orderServiceWatchOrderServer) Send(m *OrderEvent) error {
	return x.ServerStream.SendMsg(m)
}

func _OrderService_WatchOrder_Handler(srv any, stream grpc.ServerStream) error {
	m := new(WatchOrderRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(OrderServiceServer).WatchOrder(m, &orderServiceWatchOrderServer{stream})
}

var OrderService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "quickdeliver.v1.OrderService",
	HandlerType: (*OrderServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "PlaceOrder", Handler: unary(OrderService_PlaceOrder_FullMethodName, OrderServiceServer.PlaceOrder)},
		{MethodName: "GetOrder", Handler: unary(OrderService_GetOrder_FullMethodName, OrderServiceServer.GetOrder)},
		{MethodName: "ListOrders", Handler: unary(OrderService_ListOrders_FullMethodName, OrderServiceServer.ListOrders)},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "WatchOrder", Handler: _OrderService_WatchOrder_Handler, ServerStreams: true},
	},
	Metadata: "quickdeliver/v1/order",
}

func RegisterOrderServiceServer(s grpc.ServiceRegistrar, srv OrderServiceServer) {
	s.RegisterService(&OrderService_ServiceDesc, srv)
}

type OrderServiceClient interface {
	PlaceOrder(ctx context.Context, in *PlaceOrderRequest, opts ...grpc.CallOption) (*OrderResponse, error)
	GetOrder(ctx context.Context, in *GetOrderRequest, opts ...grpc.CallOption) (*OrderResponse, error)
	ListOrders(ctx context.Context, in *ListOrdersRequest, opts ...grpc.CallOption) (*ListOrdersResponse, error)
	WatchOrder(ctx context.Context, in *WatchOrderRequest, opts ...grpc.CallOption) (OrderService_WatchOrderClient, error)
}

// OrderService_WatchOrderClient is the client side of a WatchOrder stream.
type OrderService_WatchOrderClient interface {
	Recv() (*OrderEvent, error)
	grpc.ClientStream
}

type orderServiceWatchOrderClient struct {
	grpc.ClientStream
}

func (x *orderServiceWatchOrderClient) Recv() (*OrderEvent, error) {
	m := new(OrderEvent)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

type orderServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewOrderServiceClient(cc grpc.ClientConnInterface) OrderServiceClient {
	return &orderServiceClient{cc}
}

func (c *orderServiceClient) PlaceOrder(ctx context.Context, in *PlaceOrderRequest, opts ...grpc.CallOption) (*OrderResponse, error) {
	return invoke[OrderResponse](ctx, c.cc, OrderService_PlaceOrder_FullMethodName, in, opts...)
}

func (c *orderServiceClient) GetOrder(ctx context.Context, in *GetOrderRequest, opts ...grpc.CallOption) (*OrderResponse, error) {
	return invoke[OrderResponse](ctx, c.cc, OrderService_GetOrder_FullMethodName, in, opts...)
}

func (c *orderServiceClient) ListOrders(ctx context.Context, in *ListOrdersRequest, opts ...grpc.CallOption) (*ListOrdersResponse, error) {
	return invoke[ListOrdersResponse](ctx, c.cc, OrderService_ListOrders_FullMethodName, in, opts...)
}

func (c *orderServiceClient) WatchOrder(ctx context.Context, in *WatchOrderRequest, opts ...grpc.CallOption) (OrderService_WatchOrderClient, error) {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(Codec)}, opts...)
	stream, err := c.cc.NewStream(ctx, &OrderService_ServiceDesc.Streams[0], OrderService_WatchOrder_FullMethodName, opts...)
	if err != nil {
		return nil, err
	}
	x := &orderServiceWatchOrderClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}
