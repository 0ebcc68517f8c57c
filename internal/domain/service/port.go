package service

import "context"

type Repo interface {
	// Create inserts s with status Unknown and fills its ID and timestamps.
	Create(ctx context.Context, s *Service) error
	// ListByOwner returns the owner's services ordered by id.
	ListByOwner(ctx context.Context, ownerID int64) ([]*Service, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
	// DeleteOwned removes the service only if it belongs to ownerID.
	// A missing or foreign row is reported as deleted=false, not as an error.
	DeleteOwned(ctx context.Context, id, ownerID int64) (deleted bool, err error)
}
