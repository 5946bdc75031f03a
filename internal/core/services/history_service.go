package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/attrition-game/atk/internal/core/domain"
	"github.com/attrition-game/atk/internal/core/ports"
)

// HistoryService lists previously published releases
type HistoryService struct {
	publishLog ports.PublishLog
}

// NewHistoryService creates a new history service
func NewHistoryService(publishLog ports.PublishLog) *HistoryService {
	return &HistoryService{
		publishLog: publishLog,
	}
}

// HistoryRequest represents a request to list publishes
type HistoryRequest struct {
	Repository string // optional "owner/name" filter
	Limit      int    // 0 means no limit
}

// HistoryResponse holds publishes, newest first
type HistoryResponse struct {
	Records []domain.PublishRecord
	Total   int // matching records before Limit is applied
}

// Execute lists publish records, newest first
func (s *HistoryService) Execute(ctx context.Context, req HistoryRequest) (*HistoryResponse, error) {
	records, err := s.publishLog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read publish history: %w", err)
	}

	if req.Repository != "" {
		filtered := records[:0]
		for _, r := range records {
			if strings.EqualFold(r.Repository, req.Repository) {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].PublishedAt.After(records[j].PublishedAt)
	})

	total := len(records)
	if req.Limit > 0 && len(records) > req.Limit {
		records = records[:req.Limit]
	}

	return &HistoryResponse{
		Records: records,
		Total:   total,
	}, nil
}
