package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// AuditPort defines the interface for interacting with the audit module.
// Consumers should use this interface instead of directly referencing
// the Module.
type AuditPort interface {
	GetSummary(ctx context.Context) (map[string]any, error)
	GetRecentLog(ctx context.Context, limit int) ([]ChangeRecord, error)
}

// auditAdapter implements AuditPort using the service container.
type auditAdapter struct {
	container mono.ServiceContainer
}

// NewAuditAdapter creates a new adapter for the audit services.
func NewAuditAdapter(container mono.ServiceContainer) AuditPort {
	return &auditAdapter{
		container: container,
	}
}

// GetSummary retrieves the audit summary.
func (a *auditAdapter) GetSummary(ctx context.Context) (map[string]any, error) {
	client, err := a.container.GetRequestReplyService("get-audit-summary")
	if err != nil {
		return nil, fmt.Errorf("failed to get get-audit-summary service: %w", err)
	}

	resp, err := client.Call(ctx, []byte{})
	if err != nil {
		return nil, fmt.Errorf("get-audit-summary service call failed: %w", err)
	}

	var summary map[string]any
	if err := json.Unmarshal(resp.Data, &summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return summary, nil
}

// GetRecentLog retrieves recent change records.
func (a *auditAdapter) GetRecentLog(ctx context.Context, limit int) ([]ChangeRecord, error) {
	req := struct {
		Limit int `json:"limit"`
	}{
		Limit: limit,
	}

	var records []ChangeRecord
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"get-audit-log",
		json.Marshal,
		json.Unmarshal,
		&req,
		&records,
	); err != nil {
		return nil, fmt.Errorf("get-audit-log service call failed: %w", err)
	}
	return records, nil
}
