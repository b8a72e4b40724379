package service

import (
	"context"
	"log/slog"
	"net/http"

	"qc-console/internal/backend"
	"qc-console/internal/model"
	"qc-console/pkg/apierror"
)

const (
	loginEndpoint    = "/api/Auth/Login"
	registerEndpoint = "/api/Auth/Register"
	logoutEndpoint   = "/api/Auth/Logout"
	rolesEndpoint    = "/api/Auth/GetRoles"
)

// AuthService exchanges credentials for a backend-issued token. Deriving
// the user from that token is the session store's job, not this service's.
type AuthService struct {
	client *backend.Client
}

func NewAuthService(client *backend.Client) *AuthService {
	return &AuthService{client: client}
}

func (s *AuthService) Login(ctx context.Context, creds model.Credentials) (string, error) {
	var resp model.TokenResponse
	if err := s.client.Post(ctx, loginEndpoint, creds, &resp); err != nil {
		return "", err
	}

	if resp.Token == "" {
		return "", apierror.New(apierror.KindDecode, "NO_TOKEN", "login response carried no token", "", http.StatusBadGateway)
	}

	return resp.Token, nil
}

func (s *AuthService) Register(ctx context.Context, reg model.Registration) (model.MutationResult, error) {
	var result model.MutationResult
	err := s.client.Post(ctx, registerEndpoint, reg, &result)
	return result, err
}

// Logout tells the backend to drop the token. Failures are logged, not
// surfaced: the local session is destroyed regardless.
func (s *AuthService) Logout(ctx context.Context) {
	if err := s.client.Post(ctx, logoutEndpoint, nil, nil); err != nil {
		slog.Warn("backend logout failed", "error", err)
	}
}

func (s *AuthService) Roles(ctx context.Context) ([]model.NamedItem, error) {
	var roles []model.NamedItem
	err := s.client.Get(ctx, rolesEndpoint, &roles)
	return roles, err
}
