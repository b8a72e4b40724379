package service

import (
	"context"
	"fmt"
	"strings"

	"qc-console/internal/backend"
	"qc-console/internal/model"
	"qc-console/pkg/apierror"
)

// NameForm is the create/update payload for simple reference entities.
type NameForm struct {
	Name string `json:"name"`
}

// ReferenceService is one typed façade shared by the {id, name}-shaped
// reference resources (Clients, Defects, Lines). The backend follows the
// /api/{Resource}/{Get,Register,Update,Delete}{Resource}[/{id}] convention,
// so the resource name fully determines the endpoint set.
type ReferenceService struct {
	client   *backend.Client
	resource string
	singular string
}

func NewReferenceService(client *backend.Client, resource string, singular string) *ReferenceService {
	return &ReferenceService{client: client, resource: resource, singular: singular}
}

func NewClientsService(client *backend.Client) *ReferenceService {
	return NewReferenceService(client, "Clients", "Client")
}

func NewDefectsService(client *backend.Client) *ReferenceService {
	return NewReferenceService(client, "Defects", "Defect")
}

func NewLinesService(client *backend.Client) *ReferenceService {
	return NewReferenceService(client, "Lines", "Line")
}

func (s *ReferenceService) List(ctx context.Context) ([]model.NamedItem, error) {
	var out []model.NamedItem
	err := s.client.Get(ctx, s.path("Get", s.resource, 0), &out)
	return out, err
}

func (s *ReferenceService) Get(ctx context.Context, id int) (model.NamedItem, error) {
	var out model.NamedItem
	err := s.client.Get(ctx, s.path("Get", s.singular, id), &out)
	return out, err
}

func (s *ReferenceService) Create(ctx context.Context, form NameForm) (model.MutationResult, error) {
	if strings.TrimSpace(form.Name) == "" {
		return model.MutationResult{}, apierror.Validation("NAME_REQUIRED", "name is required", "")
	}

	var result model.MutationResult
	err := s.client.Post(ctx, s.path("Register", s.singular, 0), form, &result)
	return result, err
}

func (s *ReferenceService) Update(ctx context.Context, id int, form NameForm) (model.MutationResult, error) {
	if strings.TrimSpace(form.Name) == "" {
		return model.MutationResult{}, apierror.Validation("NAME_REQUIRED", "name is required", "")
	}

	var result model.MutationResult
	err := s.client.Put(ctx, s.path("Update", s.singular, id), form, &result)
	return result, err
}

func (s *ReferenceService) Delete(ctx context.Context, id int) (model.MutationResult, error) {
	var result model.MutationResult
	err := s.client.Delete(ctx, s.path("Delete", s.singular, id), &result)
	return result, err
}

func (s *ReferenceService) path(verb string, suffix string, id int) string {
	p := fmt.Sprintf("/api/%s/%s%s", s.resource, verb, suffix)
	if id != 0 {
		p = fmt.Sprintf("%s/%d", p, id)
	}

	return p
}
