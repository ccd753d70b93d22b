package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"auraapi/models"
	"auraapi/services"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

const TypeReapOrphanImages = "storage:reap_orphans"

// Item deletion removes the blob best effort, a failed remote delete leaves
// an orphan behind. The reaper sweeps those up daily.

type ReapOrphanImagesPayload struct {
	Prefix string `json:"prefix"`
}

func NewReapOrphanImagesTask() (*asynq.Task, error) {
	payload, err := json.Marshal(ReapOrphanImagesPayload{Prefix: "wardrobe/"})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeReapOrphanImages, payload), nil
}

type ReapOrphanImagesProcessor struct {
	DB         *gorm.DB
	AWSService services.AWSServiceProvider
}

func (processor *ReapOrphanImagesProcessor) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload ReapOrphanImagesPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal reap payload: %v", err)
	}
	return processor.Reap(ctx, payload.Prefix)
}

// Reap deletes blobs under prefix that no wardrobe row references. Only
// objects older than a day are considered, so an upload racing the row
// update that records its key is never touched.
func (processor *ReapOrphanImagesProcessor) Reap(ctx context.Context, prefix string) error {
	bucketName := services.GetEnv("R2_BUCKET_NAME", "")
	cutoff := time.Now().Add(-24 * time.Hour)

	keys, err := processor.AWSService.ListObjectKeys(ctx, bucketName, prefix, cutoff)
	if err != nil {
		sentry.CaptureException(err)
		return err
	}
	if len(keys) == 0 {
		return nil
	}

	var referenced []string
	if err := processor.DB.Model(&models.WardrobeItem{}).
		Where("image_key IS NOT NULL").
		Pluck("image_key", &referenced).Error; err != nil {
		sentry.CaptureException(err)
		return err
	}

	referencedSet := make(map[string]bool, len(referenced))
	for _, key := range referenced {
		referencedSet[key] = true
	}

	var reaped int
	for _, key := range keys {
		if referencedSet[key] {
			continue
		}
		if err := processor.AWSService.DeleteObject(ctx, bucketName, key); err != nil {
			fmt.Printf("[Reaper] Failed to delete orphan %s: %v\n", key, err)
			sentry.CaptureException(err)
			continue
		}
		reaped++
	}
	fmt.Printf("[Reaper] Swept %s: %v orphans removed of %v candidates\n", prefix, reaped, len(keys))
	return nil
}
