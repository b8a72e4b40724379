package service

import (
	"context"
	"fmt"
	"io"

	"qc-console/internal/backend"
	"qc-console/internal/model"
)

const (
	rejectionDefectsEndpoint    = "/api/Rejections/GetDefects"
	rejectionConditionsEndpoint = "/api/Rejections/GetConditionByDefect"
	rejectionLinesEndpoint      = "/api/Rejections/GetLines"
	rejectionClientsEndpoint    = "/api/Rejections/GetClients"
	rejectionActionsEndpoint    = "/api/Rejections/GetContainmentAction"
	rejectionFolioEndpoint      = "/api/Rejections/GetNextFolio"
	rejectionListEndpoint       = "/api/Rejections/GetRejections"
	rejectionExcelEndpoint      = "/api/Rejections/DownloadExcel"
	rejectionCreateEndpoint     = "/api/Rejections/Create"
	rejectionDeleteEndpoint     = "/api/Rejections/Delete/"
)

type RejectionService struct {
	client *backend.Client
}

func NewRejectionService(client *backend.Client) *RejectionService {
	return &RejectionService{client: client}
}

func (s *RejectionService) Defects(ctx context.Context) ([]model.NamedItem, error) {
	var out []model.NamedItem
	err := s.client.Get(ctx, rejectionDefectsEndpoint, &out)
	return out, err
}

// ConditionsByDefect returns the conditions belonging to one defect. A zero
// defect id short-circuits to an empty set without touching the network.
func (s *RejectionService) ConditionsByDefect(ctx context.Context, defectID int) ([]model.NamedItem, error) {
	if defectID == 0 {
		return nil, nil
	}

	var out []model.NamedItem
	err := s.client.Get(ctx, fmt.Sprintf("%s?defectId=%d", rejectionConditionsEndpoint, defectID), &out)
	return out, err
}

func (s *RejectionService) Lines(ctx context.Context) ([]model.NamedItem, error) {
	var out []model.NamedItem
	err := s.client.Get(ctx, rejectionLinesEndpoint, &out)
	return out, err
}

func (s *RejectionService) Clients(ctx context.Context) ([]model.NamedItem, error) {
	var out []model.NamedItem
	err := s.client.Get(ctx, rejectionClientsEndpoint, &out)
	return out, err
}

func (s *RejectionService) ContainmentActions(ctx context.Context) ([]model.NamedItem, error) {
	var out []model.NamedItem
	err := s.client.Get(ctx, rejectionActionsEndpoint, &out)
	return out, err
}

// NextFolio fetches the sequential document number for a new record.
func (s *RejectionService) NextFolio(ctx context.Context) (int, error) {
	var folio int
	err := s.client.Get(ctx, rejectionFolioEndpoint, &folio)
	return folio, err
}

func (s *RejectionService) List(ctx context.Context) ([]model.Rejection, error) {
	var out []model.Rejection
	err := s.client.Get(ctx, rejectionListEndpoint, &out)
	return out, err
}

// Create submits the multipart payload assembled by the rejection form:
// scalar fields plus photo and signature parts.
func (s *RejectionService) Create(ctx context.Context, form *backend.Multipart) (model.MutationResult, error) {
	var result model.MutationResult
	err := s.client.Post(ctx, rejectionCreateEndpoint, form, &result)
	return result, err
}

func (s *RejectionService) Delete(ctx context.Context, id int) (model.MutationResult, error) {
	var result model.MutationResult
	err := s.client.Delete(ctx, fmt.Sprintf("%s%d", rejectionDeleteEndpoint, id), &result)
	return result, err
}

// DownloadExcel streams the backend-generated spreadsheet export.
func (s *RejectionService) DownloadExcel(ctx context.Context) (io.ReadCloser, string, error) {
	return s.client.Stream(ctx, rejectionExcelEndpoint)
}
