package activity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// Port reads the activity trail.
type Port interface {
	Recent(ctx context.Context, req RecentRequest) (RecentResponse, error)
}

// Adapter implements Port using the service container.
type Adapter struct {
	container mono.ServiceContainer
}

// NewAdapter creates a new Adapter.
func NewAdapter(container mono.ServiceContainer) *Adapter {
	return &Adapter{container: container}
}

// Recent fetches recent entries from the activity module.
func (a *Adapter) Recent(ctx context.Context, req RecentRequest) (RecentResponse, error) {
	var resp RecentResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceRecentActivity,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return RecentResponse{}, fmt.Errorf("%s request failed: %w", ServiceRecentActivity, err)
	}
	return resp, nil
}
