package queries

import (
	"context"
	"fmt"
	"strings"

	"cpindex/contexts/identity-access/apikey-service/domain/entities"
	domainerrors "cpindex/contexts/identity-access/apikey-service/domain/errors"
	"cpindex/contexts/identity-access/apikey-service/ports"
)

// KeyByOwnerUseCase looks up the single live credential for an owner.
type KeyByOwnerUseCase struct {
	Credentials ports.CredentialRepository
}

func (uc KeyByOwnerUseCase) KeyByOwner(ctx context.Context, owner string) (entities.APIKey, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return entities.APIKey{}, domainerrors.ErrOwnerRequired
	}

	credential, found, err := uc.Credentials.FindByOwner(ctx, owner)
	if err != nil {
		return entities.APIKey{}, fmt.Errorf("lookup credential by owner: %w", err)
	}
	if !found {
		return entities.APIKey{}, domainerrors.ErrKeyNotFound
	}
	return credential, nil
}
