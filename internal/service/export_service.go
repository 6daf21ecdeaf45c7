package service

import (
	"aloop3/flow/internal/storage"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// HistoryExport is the JSON document written to object storage.
type HistoryExport struct {
	AthleteID   string          `json:"athleteId"`
	GeneratedAt time.Time       `json:"generatedAt"`
	Records     []HistoryRecord `json:"records"`
}

type ExportResult struct {
	ObjectKey   string    `json:"objectKey"`
	DownloadURL string    `json:"downloadUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
	Records     int       `json:"records"`
}

type ExportService interface {
	ExportHistory(ctx context.Context, requesterID, athleteID string) (*ExportResult, error)
}

type exportService struct {
	source    historySource
	storage   storage.FileStorage
	access    AccessChecker
	urlExpiry time.Duration
	now       func() time.Time
}

func NewExportService(source historySource, fileStorage storage.FileStorage, access AccessChecker, urlExpiry time.Duration) ExportService {
	if urlExpiry <= 0 {
		urlExpiry = storage.DefaultPresignedURLExpiry
	}
	return &exportService{
		source:    source,
		storage:   fileStorage,
		access:    access,
		urlExpiry: urlExpiry,
		now:       time.Now,
	}
}

// ExportHistory uploads the athlete's joined history and returns a presigned link to it.
func (s *exportService) ExportHistory(ctx context.Context, requesterID, athleteID string) (*ExportResult, error) {
	if athleteID == "" {
		return nil, fmt.Errorf("%w: athleteId", ErrMissingParameter)
	}
	if err := requireAccess(ctx, s.access, requesterID, athleteID); err != nil {
		return nil, err
	}

	records, err := s.source.AthleteHistory(ctx, athleteID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	body, err := json.Marshal(HistoryExport{AthleteID: athleteID, GeneratedAt: now, Records: records})
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}

	key := fmt.Sprintf("exports/%s/%s.json", athleteID, uuid.NewString())
	if err := s.storage.PutObject(ctx, key, "application/json", body); err != nil {
		return nil, fmt.Errorf("upload export: %w", err)
	}
	url, err := s.storage.GeneratePresignedDownloadURL(ctx, key, s.urlExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign export: %w", err)
	}
	log.Infof("exported %d history records of athlete %s to %s", len(records), athleteID, key)

	return &ExportResult{
		ObjectKey:   key,
		DownloadURL: url,
		ExpiresAt:   now.Add(s.urlExpiry),
		Records:     len(records),
	}, nil
}
