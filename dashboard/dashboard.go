// Package dashboard aggregates report and leave request counts for managers.
package dashboard

import (
	"context"

	"github.com/goliatone/go-staff/auth"
	"github.com/goliatone/go-staff/leave"
	"github.com/goliatone/go-staff/reports"
)

type ReportCounter interface {
	CountByStatus(ctx context.Context, userID string) (map[reports.Status]int, error)
}

type LeaveCounter interface {
	CountByStatus(ctx context.Context, userID string) (map[leave.Status]int, error)
}

// Stats is the dashboard payload.
type Stats struct {
	TotalReports          int            `json:"total_reports"`
	ReportsByStatus       map[string]int `json:"reports_by_status"`
	TotalLeaveRequests    int            `json:"total_leave_requests"`
	LeaveRequestsByStatus map[string]int `json:"leave_requests_by_status"`
	UserID                string         `json:"user_id"`
}

type Service struct {
	reports ReportCounter
	leave   LeaveCounter
}

func NewService(reports ReportCounter, leave LeaveCounter) *Service {
	return &Service{reports: reports, leave: leave}
}

// Get counts every report and leave request. Elevated roles only.
func (s *Service) Get(ctx context.Context, identity *auth.Identity) (*Stats, error) {
	if _, err := auth.Authorize(identity, auth.ElevatedRoles...); err != nil {
		return nil, err
	}

	byReport, err := s.reports.CountByStatus(ctx, "")
	if err != nil {
		return nil, err
	}
	byLeave, err := s.leave.CountByStatus(ctx, "")
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		ReportsByStatus:       make(map[string]int, len(byReport)),
		LeaveRequestsByStatus: make(map[string]int, len(byLeave)),
		UserID:                identity.UserID,
	}
	for status, n := range byReport {
		stats.ReportsByStatus[string(status)] = n
		stats.TotalReports += n
	}
	for status, n := range byLeave {
		stats.LeaveRequestsByStatus[string(status)] = n
		stats.TotalLeaveRequests += n
	}
	return stats, nil
}
