package service

import (
	"context"
	"fmt"

	"qc-console/internal/backend"
	"qc-console/internal/model"
)

const (
	scrapListEndpoint     = "/api/Scrap/GetScrap"
	scrapShiftsEndpoint   = "/api/Scrap/GetShifts"
	scrapLinesEndpoint    = "/api/Scrap/GetLines"
	scrapMaterialEndpoint = "/api/Scrap/GetMaterial"
	scrapTypesEndpoint    = "/api/Scrap/GetTypeScrap"
	scrapDefectsEndpoint  = "/api/Scrap/GetDefectsByTypeScrap"
	scrapProcessEndpoint  = "/api/Scrap/GetProcessByLine"
	scrapMachinesEndpoint = "/api/Scrap/GetMachineCodeByProcess"
	scrapCreateEndpoint   = "/api/Scrap/Create"
)

type ScrapService struct {
	client *backend.Client
}

func NewScrapService(client *backend.Client) *ScrapService {
	return &ScrapService{client: client}
}

func (s *ScrapService) List(ctx context.Context) ([]model.Scrap, error) {
	var out []model.Scrap
	err := s.client.Get(ctx, scrapListEndpoint, &out)
	return out, err
}

func (s *ScrapService) Shifts(ctx context.Context) ([]model.NamedItem, error) {
	var out []model.NamedItem
	err := s.client.Get(ctx, scrapShiftsEndpoint, &out)
	return out, err
}

func (s *ScrapService) Lines(ctx context.Context) ([]model.NamedItem, error) {
	var out []model.NamedItem
	err := s.client.Get(ctx, scrapLinesEndpoint, &out)
	return out, err
}

func (s *ScrapService) Materials(ctx context.Context) ([]model.NamedItem, error) {
	var out []model.NamedItem
	err := s.client.Get(ctx, scrapMaterialEndpoint, &out)
	return out, err
}

func (s *ScrapService) TypeScrap(ctx context.Context) ([]model.NamedItem, error) {
	var out []model.NamedItem
	err := s.client.Get(ctx, scrapTypesEndpoint, &out)
	return out, err
}

func (s *ScrapService) DefectsByTypeScrap(ctx context.Context, typeScrapID int) ([]model.NamedItem, error) {
	if typeScrapID == 0 {
		return nil, nil
	}

	var out []model.NamedItem
	err := s.client.Get(ctx, fmt.Sprintf("%s/%d", scrapDefectsEndpoint, typeScrapID), &out)
	return out, err
}

func (s *ScrapService) ProcessesByLine(ctx context.Context, lineID int) ([]model.NamedItem, error) {
	if lineID == 0 {
		return nil, nil
	}

	var out []model.NamedItem
	err := s.client.Get(ctx, fmt.Sprintf("%s/%d", scrapProcessEndpoint, lineID), &out)
	return out, err
}

func (s *ScrapService) MachinesByProcess(ctx context.Context, processID int) ([]model.NamedItem, error) {
	if processID == 0 {
		return nil, nil
	}

	var out []model.NamedItem
	err := s.client.Get(ctx, fmt.Sprintf("%s/%d", scrapMachinesEndpoint, processID), &out)
	return out, err
}

func (s *ScrapService) Create(ctx context.Context, record model.ScrapRecord) (model.MutationResult, error) {
	var result model.MutationResult
	err := s.client.Post(ctx, scrapCreateEndpoint, record, &result)
	return result, err
}
