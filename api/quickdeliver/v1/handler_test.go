package quickdeliverv1

import (
	"context"
	"encoding/json"
	"testing"

	"google.golang.org/grpc"
)

type echoReq struct{ Text string }
type echoResp struct{ Text string }

type echoServer struct{ prefix string }

func (s *echoServer) Echo(_ context.Context, in *echoReq) (*echoResp, error) {
	return &echoResp{Text: s.prefix + in.Text}, nil
}

func TestUnaryHandler(t *testing.T) {
	var h methodHandler = unary[*echoServer, echoReq, echoResp]("/test.Echo/Echo", (*echoServer).Echo)
	desc := grpc.MethodDesc{MethodName: "Echo", Handler: h}
	dec := func(v any) error { return json.Unmarshal([]byte(`{"Text":"hi"}`), v) }

	out, err := desc.Handler(&echoServer{prefix: ">"}, context.Background(), dec, nil)
	if err != nil || out.(*echoResp).Text != ">hi" {
		t.Fatalf("direct call: %v %+v", err, out)
	}

	var seen string
	icpt := func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		seen = info.FullMethod
		return handler(ctx, req)
	}
	out, err = desc.Handler(&echoServer{prefix: "+"}, context.Background(), dec, icpt)
	if err != nil || out.(*echoResp).Text != "+hi" {
		t.Fatalf("intercepted call: %v %+v", err, out)
	}
	if seen != "/test.Echo/Echo" {
		t.Fatalf("interceptor saw method %q", seen)
	}
}
