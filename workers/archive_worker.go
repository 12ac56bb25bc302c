package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"codequest/models"
	"codequest/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const archiveBatchSize = 500

// SubmissionArchiver ships code submission rows to object storage in dated
// JSON batches. It keeps an in-memory cursor; restarting re-uploads at most
// one interval's worth of rows, which the keyed layout tolerates.
type SubmissionArchiver struct {
	DB           *gorm.DB
	lastArchived time.Time
}

func NewSubmissionArchiver(db *gorm.DB) *SubmissionArchiver {
	return &SubmissionArchiver{DB: db, lastArchived: time.Now()}
}

func (a *SubmissionArchiver) archiveOnce(ctx context.Context) error {
	var submissions []models.CodeSubmission
	if err := a.DB.Where("submitted_at > ?", a.lastArchived).
		Order("submitted_at ASC").
		Limit(archiveBatchSize).
		Find(&submissions).Error; err != nil {
		return fmt.Errorf("failed to query submissions: %w", err)
	}
	if len(submissions) == 0 {
		return nil
	}

	body, err := json.Marshal(submissions)
	if err != nil {
		return fmt.Errorf("failed to marshal submissions: %w", err)
	}

	key := fmt.Sprintf("submissions/%s/%s.json",
		time.Now().UTC().Format("2006-01-02"),
		uuid.NewString()[:8],
	)
	if err := utils.UploadArchive(ctx, key, body); err != nil {
		return err
	}

	a.lastArchived = submissions[len(submissions)-1].SubmittedAt
	log.Printf("Archived %d submissions to %s", len(submissions), key)
	return nil
}

// PollSubmissions runs the archiver until ctx is cancelled.
func PollSubmissions(ctx context.Context, archiver *SubmissionArchiver, interval time.Duration) {
	log.Println("Starting submission archive polling...")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := archiver.archiveOnce(ctx); err != nil {
				log.Printf("[Archiver] %v", err)
			}
		case <-ctx.Done():
			log.Println("Stopping submission archive polling")
			return
		}
	}
}
