package grpcserver

import (
	"context"
	"time"

	qdv1 "quickDeliver/api/quickdeliver/v1"
	"quickDeliver/internal/auth"
	"quickDeliver/internal/backend"
)

// AuthServer implements quickdeliver.v1.AuthService.
type AuthServer struct {
	Svc *backend.Service
}

func (s *AuthServer) SignUp(ctx context.Context, req *qdv1.SignUpRequest) (*qdv1.SessionResponse, error) {
	sess, err := s.Svc.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		return nil, toStatus(err)
	}
	return toSessionResponse(sess), nil
}

func (s *AuthServer) SignIn(ctx context.Context, req *qdv1.SignInRequest) (*qdv1.SessionResponse, error) {
	sess, err := s.Svc.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return nil, toStatus(err)
	}
	return toSessionResponse(sess), nil
}

func (s *AuthServer) GetSession(ctx context.Context, _ *qdv1.GetSessionRequest) (*qdv1.GetSessionResponse, error) {
	p, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.Svc.GetSession(ctx, p)
	if err != nil {
		return nil, toStatus(err)
	}
	return &qdv1.GetSessionResponse{User: u}, nil
}

func toSessionResponse(sess *backend.Session) *qdv1.SessionResponse {
	return &qdv1.SessionResponse{
		AccessToken: sess.Token,
		ExpiresAt:   sess.ExpiresAt.UTC().Format(time.RFC3339),
		User:        sess.User,
	}
}
