package service

import (
	"context"
	"fmt"
	"strings"

	"qc-console/internal/backend"
	"qc-console/internal/model"
	"qc-console/pkg/apierror"
)

const (
	conditionListEndpoint   = "/api/DefectConditions/GetDefectConditions"
	conditionCreateEndpoint = "/api/DefectConditions/RegisterDefectCondition"
	conditionUpdateEndpoint = "/api/DefectConditions/UpdateDefectCondition"
	conditionDeleteEndpoint = "/api/DefectConditions/DeleteDefectCondition"
)

// ConditionForm differs from the plain reference payload: a condition
// always belongs to one defect.
type ConditionForm struct {
	IDDefects int    `json:"idDefects"`
	Name      string `json:"name"`
}

type ConditionService struct {
	client *backend.Client
}

func NewConditionService(client *backend.Client) *ConditionService {
	return &ConditionService{client: client}
}

func (s *ConditionService) List(ctx context.Context) ([]model.Condition, error) {
	var out []model.Condition
	err := s.client.Get(ctx, conditionListEndpoint, &out)
	return out, err
}

func (s *ConditionService) Create(ctx context.Context, form ConditionForm) (model.MutationResult, error) {
	if err := validateConditionForm(form); err != nil {
		return model.MutationResult{}, err
	}

	var result model.MutationResult
	err := s.client.Post(ctx, conditionCreateEndpoint, form, &result)
	return result, err
}

func (s *ConditionService) Update(ctx context.Context, id int, form ConditionForm) (model.MutationResult, error) {
	if err := validateConditionForm(form); err != nil {
		return model.MutationResult{}, err
	}

	var result model.MutationResult
	err := s.client.Put(ctx, fmt.Sprintf("%s/%d", conditionUpdateEndpoint, id), form, &result)
	return result, err
}

func (s *ConditionService) Delete(ctx context.Context, id int) (model.MutationResult, error) {
	var result model.MutationResult
	err := s.client.Delete(ctx, fmt.Sprintf("%s/%d", conditionDeleteEndpoint, id), &result)
	return result, err
}

func validateConditionForm(form ConditionForm) error {
	if strings.TrimSpace(form.Name) == "" {
		return apierror.Validation("NAME_REQUIRED", "name is required", "")
	}
	if form.IDDefects <= 0 {
		return apierror.Validation("DEFECT_REQUIRED", "a defect must be selected", "")
	}

	return nil
}
