package queries

import (
	"context"

	"cpindex/contexts/identity-access/apikey-service/domain/entities"
)

// UsageReport is the caller-facing view of a credential's current
// window: consumed requests and seconds until the quota resets.
type UsageReport struct {
	Owner        string
	RateLimit    int
	CurrentUsage int64
	ResetIn      int64
}

// UsageUseCase reports consumption for an already-authenticated
// credential without counting the report itself against the quota.
type UsageUseCase struct {
	Status StatusUseCase
}

func (uc UsageUseCase) Usage(ctx context.Context, credential entities.APIKey) UsageReport {
	decision := uc.Status.Status(ctx, credential)

	resetIn := decision.Reset - uc.Status.now().Unix()
	if resetIn < 0 {
		resetIn = 0
	}
	return UsageReport{
		Owner:        credential.Owner,
		RateLimit:    credential.RateLimit,
		CurrentUsage: decision.Count,
		ResetIn:      resetIn,
	}
}
