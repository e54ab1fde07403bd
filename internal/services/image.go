package services

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dlopezkluever/wizardirector/internal/clients/gcp"
	"github.com/dlopezkluever/wizardirector/internal/clients/openai"
	"github.com/dlopezkluever/wizardirector/internal/data/repos"
	"github.com/dlopezkluever/wizardirector/internal/platform/dbctx"
	"github.com/dlopezkluever/wizardirector/internal/platform/logger"
)

// assetImageService backs both image ports with the OpenAI image API and the
// asset bucket. Generation is detached from the request; localization is a
// bucket-side copy the sync path can await.
type assetImageService struct {
	log       *logger.Logger
	ai        openai.Client
	bucket    gcp.BucketService
	localRepo repos.LocalAssetRepo
}

func NewAssetImageService(log *logger.Logger, ai openai.Client, bucket gcp.BucketService, localRepo repos.LocalAssetRepo) (ImageGenerator, ImageLocalizer) {
	svc := &assetImageService{
		log:       log.With("service", "AssetImageService"),
		ai:        ai,
		bucket:    bucket,
		localRepo: localRepo,
	}
	return svc, svc
}

func (s *assetImageService) Generate(ctx context.Context, job ImageJob) (string, error) {
	if strings.TrimSpace(job.Prompt) == "" {
		return "", fmt.Errorf("image prompt required")
	}
	handle := uuid.NewString()

	prompt := job.Prompt
	if job.ReferenceImageURL != nil && *job.ReferenceImageURL != "" {
		prompt += "\nKeep the subject recognizably the same as in the existing reference art."
	}

	// Detached from the request context: the clone call must not be held
	// hostage by generation latency.
	go s.runGeneration(handle, job, prompt)
	return handle, nil
}

func (s *assetImageService) runGeneration(handle string, job ImageJob, prompt string) {
	log := s.log.With("job", handle, "local_asset_id", job.LocalAssetID)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	img, err := s.ai.GenerateImage(ctx, prompt)
	if err != nil {
		log.Warn("Image generation failed", "error", err)
		return
	}

	key := projectImageKey(job.ProjectID, job.BranchID, job.LocalAssetID.String()+".png")
	if err := s.bucket.UploadObject(ctx, key, bytes.NewReader(img.Bytes)); err != nil {
		log.Warn("Image upload failed", "key", key, "error", err)
		return
	}

	url := s.bucket.GetPublicURL(key)
	if err := s.localRepo.UpdateFields(dbctx.Context{Ctx: ctx}, job.LocalAssetID, map[string]interface{}{
		"image_url": url,
	}); err != nil {
		log.Warn("Image URL update failed", "url", url, "error", err)
		return
	}
	log.Info("Generated asset image", "url", url)
}

func (s *assetImageService) Copy(ctx context.Context, sourceURL string, projectID, branchID uuid.UUID) (string, error) {
	srcKey, ok := s.bucket.KeyFromURL(sourceURL)
	if !ok {
		return "", fmt.Errorf("source image %q is not in the asset bucket", sourceURL)
	}
	dstKey := projectImageKey(projectID, branchID, path.Base(srcKey))
	if err := s.bucket.CopyObject(ctx, srcKey, dstKey); err != nil {
		return "", err
	}
	return s.bucket.GetPublicURL(dstKey), nil
}

func projectImageKey(projectID, branchID uuid.UUID, name string) string {
	return fmt.Sprintf("projects/%s/%s/%s", projectID, branchID, name)
}
