package store

import (
	"context"
	"fmt"

	"github.com/roomkeeper/roomkeeper/api/pkg/types"
	"gorm.io/gorm"
)

// CreateRequest inserts a new PENDING request, applying the documented
// defaults (priority_weight 1.0, stakeholder_id UNKNOWN) when the caller
// leaves them zero.
func (s *Store) CreateRequest(ctx context.Context, req types.Request) (types.Request, error) {
	if req.RequestedCapacity <= 0 {
		return types.Request{}, fmt.Errorf("requested_capacity must be positive")
	}
	if req.PriorityWeight <= 0 {
		req.PriorityWeight = 1.0
	}
	if req.StakeholderID == "" {
		req.StakeholderID = types.UnknownStakeholder
	}
	rec := dbRequest{
		RequestedCapacity: req.RequestedCapacity,
		RequestedDate:     req.RequestedDate,
		RequestedTimeSlot: req.RequestedTimeSlot,
		PriorityWeight:    req.PriorityWeight,
		StakeholderID:     req.StakeholderID,
		Status:            string(types.RequestStatusPending),
	}
	if err := s.gdb.WithContext(ctx).Create(&rec).Error; err != nil {
		return types.Request{}, fmt.Errorf("failed to create request: %w", err)
	}
	return rec.toType(), nil
}

// GetRequest looks up a request by id.
func (s *Store) GetRequest(ctx context.Context, requestID int64) (types.Request, error) {
	var rec dbRequest
	err := s.gdb.WithContext(ctx).First(&rec, "request_id = ?", requestID).Error
	if err != nil {
		return types.Request{}, translateNotFound(err)
	}
	return rec.toType(), nil
}

// ListPendingRequestsForSlot returns every PENDING request for (date, slot).
func (s *Store) ListPendingRequestsForSlot(ctx context.Context, date, slot string) ([]types.Request, error) {
	var recs []dbRequest
	err := s.gdb.WithContext(ctx).
		Where("requested_date = ? AND requested_time_slot = ? AND status = ?", date, slot, string(types.RequestStatusPending)).
		Order("request_id asc").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests for slot: %w", err)
	}
	return toRequestSlice(recs), nil
}

// ListAllPendingRequests returns every PENDING request across every
// (date, slot) window, used by the Simulator to enumerate the windows it
// must evaluate.
func (s *Store) ListAllPendingRequests(ctx context.Context) ([]types.Request, error) {
	var recs []dbRequest
	err := s.gdb.WithContext(ctx).
		Where("status = ?", string(types.RequestStatusPending)).
		Order("requested_date asc, requested_time_slot asc, request_id asc").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}
	return toRequestSlice(recs), nil
}

// ListRequestsSince returns every request (any status) whose requested_date
// is on or after sinceDate, used to compute the demand forecast side output.
func (s *Store) ListRequestsSince(ctx context.Context, sinceDate string) ([]types.Request, error) {
	var recs []dbRequest
	err := s.gdb.WithContext(ctx).
		Where("requested_date >= ?", sinceDate).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list requests since %s: %w", sinceDate, err)
	}
	return toRequestSlice(recs), nil
}

func toRequestSlice(recs []dbRequest) []types.Request {
	out := make([]types.Request, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.toType())
	}
	return out
}

// markRequestsAllocatedTx transitions requestIDs to ALLOCATED within an
// already-open transaction.
func markRequestsAllocatedTx(tx *gorm.DB, requestIDs []int64) error {
	if len(requestIDs) == 0 {
		return nil
	}
	return tx.Model(&dbRequest{}).
		Where("request_id IN ?", requestIDs).
		Update("status", string(types.RequestStatusAllocated)).Error
}
