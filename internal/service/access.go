package service

import (
	"aloop3/flow/internal/repository"
	"context"
	"errors"
)

// AccessChecker answers whether requester may read or modify an athlete's data.
type AccessChecker interface {
	CanAccessAthlete(ctx context.Context, requesterID, athleteID string) (bool, error)
}

type rosterAccessChecker struct {
	userRepo repository.UserRepository
}

// NewRosterAccessChecker allows athletes to access themselves and coaches to access
// the athletes on their roster.
func NewRosterAccessChecker(userRepo repository.UserRepository) AccessChecker {
	return &rosterAccessChecker{userRepo: userRepo}
}

func (c *rosterAccessChecker) CanAccessAthlete(ctx context.Context, requesterID, athleteID string) (bool, error) {
	if requesterID == "" || athleteID == "" {
		return false, nil
	}
	if requesterID == athleteID {
		return true, nil
	}
	requester, err := c.userRepo.GetByID(ctx, requesterID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return requester.Coaches(athleteID), nil
}

func requireAccess(ctx context.Context, checker AccessChecker, requesterID, athleteID string) error {
	ok, err := checker.CanAccessAthlete(ctx, requesterID, athleteID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAccessDenied
	}
	return nil
}

// mapNotFound converts the repository sentinel into the service one.
func mapNotFound(err, notFound error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFound
	}
	return err
}
