package service

import (
	"context"
	"fmt"

	"qc-console/internal/backend"
	"qc-console/internal/model"
)

const (
	usersListEndpoint   = "/api/Users/GetUsers"
	usersDeleteEndpoint = "/api/Users/DeleteUser"
)

type UsersService struct {
	client *backend.Client
}

func NewUsersService(client *backend.Client) *UsersService {
	return &UsersService{client: client}
}

func (s *UsersService) List(ctx context.Context) ([]model.DirectoryUser, error) {
	var out []model.DirectoryUser
	err := s.client.Get(ctx, usersListEndpoint, &out)
	return out, err
}

func (s *UsersService) Delete(ctx context.Context, id int) (model.MutationResult, error) {
	var result model.MutationResult
	err := s.client.Delete(ctx, fmt.Sprintf("%s/%d", usersDeleteEndpoint, id), &result)
	return result, err
}
