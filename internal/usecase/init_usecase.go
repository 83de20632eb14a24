package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rolltable/rolltable/internal/domain"
	"github.com/rolltable/rolltable/internal/infra/adapters/docstore"
)

const (
	defaultReadyCheckInterval = 100 * time.Millisecond
	defaultReadyCheckLimit    = 50
)

// InitUsecase makes a room's live document safe to interact with: after
// EnsureReady returns nil, every required top-level field is present.
type InitUsecase interface {
	EnsureReady(ctx context.Context, roomID string) error
}

type initUsecase struct {
	docs          docstore.Store
	checkInterval time.Duration
	checkLimit    int
}

func NewInitUsecase(docs docstore.Store) InitUsecase {
	return &initUsecase{
		docs:          docs,
		checkInterval: defaultReadyCheckInterval,
		checkLimit:    defaultReadyCheckLimit,
	}
}

// NewInitUsecaseWithInterval tightens the re-check cadence; tests use it.
func NewInitUsecaseWithInterval(docs docstore.Store, interval time.Duration, limit int) InitUsecase {
	return &initUsecase{
		docs:          docs,
		checkInterval: interval,
		checkLimit:    limit,
	}
}

// EnsureReady checks which required fields are absent, seeds each absent
// field with its fixed default, then re-reads until every field is present.
//
// The gap between the check and the set is deliberately unsynchronized: any
// number of clients may run this concurrently during the same first-join
// window. That is harmless precisely because every seed writes a fixed value
// to a fixed field, so duplicate initializers converge on the same document.
// It would NOT be harmless with an append or increment; do not add one.
func (u *initUsecase) EnsureReady(ctx context.Context, roomID string) error {
	for attempt := 0; attempt < u.checkLimit; attempt++ {
		present, err := u.docs.Fields(ctx, roomID)
		if err != nil {
			return fmt.Errorf("%w: read document fields: %v", domain.ErrUpstream, err)
		}

		missing := missingFields(present)
		if len(missing) == 0 {
			return nil
		}

		for _, field := range missing {
			if err := u.docs.SetField(ctx, roomID, field, domain.DocumentDefaults[field]); err != nil {
				return fmt.Errorf("%w: seed document field %s: %v", domain.ErrUpstream, field, err)
			}
		}

		// Re-check rather than trusting our own writes: a concurrent
		// initializer may still be mid-seed, and the document is only
		// ready once a read confirms every field.
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(u.checkInterval):
		}
	}

	return fmt.Errorf("%w: document for %s never became ready", domain.ErrUpstream, roomID)
}

func missingFields(present map[string]struct{}) []string {
	var missing []string
	for _, field := range domain.DocumentFields() {
		if _, ok := present[field]; !ok {
			missing = append(missing, field)
		}
	}
	return missing
}
