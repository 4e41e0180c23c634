package commands

import (
	"context"
	"errors"
	"strings"
	"testing"

	"cpindex/contexts/identity-access/apikey-service/adapters/memory"
	"cpindex/contexts/identity-access/apikey-service/domain/entities"
	domainerrors "cpindex/contexts/identity-access/apikey-service/domain/errors"
)

func newIssueUseCase(store *memory.Store) IssueKeyUseCase {
	return IssueKeyUseCase{
		Credentials: store,
		Clock:       memory.SystemClock{},
		IDGen:       memory.UUIDGenerator{},
	}
}

func TestIssueDefaultsRateLimit(t *testing.T) {
	uc := newIssueUseCase(memory.NewStore())

	credential, err := uc.Issue(context.Background(), IssueKeyCommand{Owner: "team"})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if !strings.HasPrefix(credential.Key, entities.KeyPrefix) {
		t.Fatalf("expected %q prefix, got %s", entities.KeyPrefix, credential.Key)
	}
	if credential.RateLimit != entities.DefaultRateLimit {
		t.Fatalf("expected default rate limit %d, got %d", entities.DefaultRateLimit, credential.RateLimit)
	}
	if !credential.IsActive {
		t.Fatal("expected issued key to be active")
	}
}

func TestIssueValidation(t *testing.T) {
	uc := newIssueUseCase(memory.NewStore())

	if _, err := uc.Issue(context.Background(), IssueKeyCommand{Owner: "  "}); !errors.Is(err, domainerrors.ErrOwnerRequired) {
		t.Fatalf("expected ErrOwnerRequired, got %v", err)
	}
	if _, err := uc.Issue(context.Background(), IssueKeyCommand{Owner: "team", RateLimit: -1}); !errors.Is(err, domainerrors.ErrInvalidRateLimit) {
		t.Fatalf("expected ErrInvalidRateLimit for negative limit, got %v", err)
	}
	if _, err := uc.Issue(context.Background(), IssueKeyCommand{Owner: "team", RateLimit: entities.MaxRateLimit + 1}); !errors.Is(err, domainerrors.ErrInvalidRateLimit) {
		t.Fatalf("expected ErrInvalidRateLimit above maximum, got %v", err)
	}
}

func TestIssueReplacesOwnerKeys(t *testing.T) {
	store := memory.NewStore()
	uc := newIssueUseCase(store)

	first, err := uc.Issue(context.Background(), IssueKeyCommand{Owner: "team", RateLimit: 10})
	if err != nil {
		t.Fatalf("first issue failed: %v", err)
	}
	second, err := uc.Issue(context.Background(), IssueKeyCommand{Owner: "team", RateLimit: 20})
	if err != nil {
		t.Fatalf("second issue failed: %v", err)
	}
	if first.Key == second.Key {
		t.Fatal("expected a fresh key on reissue")
	}

	if _, found, _ := store.FindActiveByKey(context.Background(), first.Key); found {
		t.Fatal("expected first key to be revoked after reissue")
	}
	current, found, err := store.FindByOwner(context.Background(), "team")
	if err != nil || !found {
		t.Fatalf("lookup owner key: %v (%v)", err, found)
	}
	if current.Key != second.Key || current.RateLimit != 20 {
		t.Fatalf("expected owner to hold the reissued key, got %+v", current)
	}
}
