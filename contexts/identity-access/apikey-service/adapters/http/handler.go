package httpadapter

import (
	"context"
	"log/slog"

	"cpindex/contexts/identity-access/apikey-service/application/commands"
	"cpindex/contexts/identity-access/apikey-service/application/queries"
	"cpindex/contexts/identity-access/apikey-service/domain/entities"
	httptransport "cpindex/contexts/identity-access/apikey-service/transport/http"
)

type Handler struct {
	Admit      commands.AdmitUseCase
	IssueKey   commands.IssueKeyUseCase
	Usage      queries.UsageUseCase
	KeyByOwner queries.KeyByOwnerUseCase
	Logger     *slog.Logger
}

// AdmitHandler authenticates a raw key and charges one request against
// its window.
func (h Handler) AdmitHandler(ctx context.Context, rawKey string) (commands.AdmitResult, error) {
	return h.Admit.Admit(ctx, rawKey)
}

func (h Handler) IssueKeyHandler(ctx context.Context, req httptransport.IssueKeyRequest) (httptransport.APIKeyResponse, error) {
	credential, err := h.IssueKey.Issue(ctx, commands.IssueKeyCommand{
		Owner:     req.Owner,
		RateLimit: req.RateLimit,
	})
	if err != nil {
		return httptransport.APIKeyResponse{}, err
	}
	return mapAPIKey(credential), nil
}

func (h Handler) KeyByOwnerHandler(ctx context.Context, owner string) (httptransport.APIKeyResponse, error) {
	credential, err := h.KeyByOwner.KeyByOwner(ctx, owner)
	if err != nil {
		return httptransport.APIKeyResponse{}, err
	}
	return mapAPIKey(credential), nil
}

func (h Handler) UsageHandler(ctx context.Context, credential entities.APIKey) httptransport.UsageResponse {
	report := h.Usage.Usage(ctx, credential)
	return httptransport.UsageResponse{
		Owner:        report.Owner,
		RateLimit:    report.RateLimit,
		CurrentUsage: report.CurrentUsage,
		ResetIn:      report.ResetIn,
	}
}

func mapAPIKey(credential entities.APIKey) httptransport.APIKeyResponse {
	return httptransport.APIKeyResponse{
		Key:       credential.Key,
		Owner:     credential.Owner,
		RateLimit: credential.RateLimit,
		IsActive:  credential.IsActive,
		CreatedAt: credential.CreatedAt,
		LastUsed:  credential.LastUsed,
	}
}
