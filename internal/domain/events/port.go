package events

import (
	"context"
	"time"
)

type StatusChanged struct {
	ServiceID int64     `json:"service_id"`
	OwnerID   int64     `json:"owner_id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Old       string    `json:"old"`
	New       string    `json:"new"`
	At        time.Time `json:"at"`
}

type StatusEvents interface {
	PublishStatusChanged(ctx context.Context, ev StatusChanged) error
}
