package grpcserver

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"quickDeliver/internal/logging"
	"quickDeliver/internal/metrics"
)

func requestID(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get("x-request-id"); len(v) > 0 && v[0] != "" {
			return v[0]
		}
	}
	return uuid.NewString()
}

// unaryLogging logs one line per call and stores a request-scoped logger in the context.
func unaryLogging(base *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		l := base.With("req_id", requestID(ctx), "method", info.FullMethod)
		resp, err := handler(logging.WithCtx(ctx, l), req)
		code := status.Code(err)
		metrics.ObserveGRPC(info.FullMethod, code.String())
		attrs := []any{"code", code.String(), "dur_ms", time.Since(start).Milliseconds()}
		if err != nil {
			l.Error("grpc_request", append(attrs, "error", err.Error())...)
		} else {
			l.Info("grpc_request", attrs...)
		}
		return resp, err
	}
}

// streamLogging logs stream open and close.
func streamLogging(base *slog.Logger) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		l := base.With("req_id", requestID(ss.Context()), "method", info.FullMethod)
		l.Info("grpc_stream_open")
		err := handler(srv, &loggedStream{ServerStream: ss, ctx: logging.WithCtx(ss.Context(), l)})
		code := status.Code(err)
		metrics.ObserveGRPC(info.FullMethod, code.String())
		l.Info("grpc_stream_closed", "code", code.String(), "dur_ms", time.Since(start).Milliseconds())
		return err
	}
}

type loggedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *loggedStream) Context() context.Context { return s.ctx }
