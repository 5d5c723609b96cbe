package quickdeliverv1

import (
	"context"

	"google.golang.org/grpc"
)

const (
	AuthService_SignUp_FullMethodName     = "/quickdeliver.v1.AuthService/SignUp"
	AuthService_SignIn_FullMethodName     = "/quickdeliver.v1.AuthService/SignIn"
	AuthService_GetSession_FullMethodName = "/quickdeliver.v1.AuthService/GetSession"
)

// AuthServiceServer manages accounts and sessions.
type AuthServiceServer interface {
	SignUp(context.Context, *SignUpRequest) (*SessionResponse, error)
	SignIn(context.Context, *SignInRequest) (*SessionResponse, error)
	GetSession(context.Context, *GetSessionRequest) (*GetSessionResponse, error)
}

var AuthService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "quickdeliver.v1.AuthService",
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SignUp", Handler: unary(AuthService_SignUp_FullMethodName, AuthServiceServer.SignUp)},
		{MethodName: "SignIn", Handler: unary(AuthService_SignIn_FullMethodName, AuthServiceServer.SignIn)},
		{MethodName: "GetSession", Handler: unary(AuthService_GetSession_FullMethodName, AuthServiceServer.GetSession)},
	},
	Metadata: "quickdeliver/v1/auth",
}

func RegisterAuthServiceServer(s grpc.ServiceRegistrar, srv AuthServiceServer) {
	s.RegisterService(&AuthService_ServiceDesc, srv)
}

type AuthServiceClient interface {
	SignUp(ctx context.Context, in *SignUpRequest, opts ...grpc.CallOption) (*SessionResponse, error)
	SignIn(ctx context.Context, in *SignInRequest, opts ...grpc.CallOption) (*SessionResponse, error)
	GetSession(ctx context.Context, in *GetSessionRequest, opts ...grpc.CallOption) (*GetSessionResponse, error)
}

type authServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewAuthServiceClient(cc grpc.ClientConnInterface) AuthServiceClient {
	return &authServiceClient{cc}
}

func (c *authServiceClient) SignUp(ctx context.Context, in *SignUpRequest, opts ...grpc.CallOption) (*SessionResponse, error) {
	return invoke[SessionResponse](ctx, c.cc, AuthService_SignUp_FullMethodName, in, opts...)
}

func (c *authServiceClient) SignIn(ctx context.Context, in *SignInRequest, opts ...grpc.CallOption) (*SessionResponse, error) {
	return invoke[SessionResponse](ctx, c.cc, AuthService_SignIn_FullMethodName, in, opts...)
}

func (c *authServiceClient) GetSession(ctx context.Context, in *GetSessionRequest, opts ...grpc.CallOption) (*GetSessionResponse, error) {
	return invoke[GetSessionResponse](ctx, c.cc, AuthService_GetSession_FullMethodName, in, opts...)
}
