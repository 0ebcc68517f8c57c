package user

import "context"

type Repo interface {
	// GetOrCreate returns the user with the given username, inserting it first if absent.
	GetOrCreate(ctx context.Context, username string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
}
