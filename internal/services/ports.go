package services

import (
	"context"

	"github.com/google/uuid"
)

// DescriptionMerger combines a library description with a local one. The
// backing capability is opaque (LLM or otherwise) and may fail; callers fall
// back to the library text.
type DescriptionMerger interface {
	Merge(ctx context.Context, baseText, additionalText string) (string, error)
}

// ImageJob describes a fire-and-forget generation request. OnComplete runs
// once the generated image has been stored; it is never called on failure.
type ImageJob struct {
	LocalAssetID      uuid.UUID
	ProjectID         uuid.UUID
	BranchID          uuid.UUID
	Prompt            string
	StyleID           *uuid.UUID
	ReferenceImageURL *string
}

// ImageGenerator triggers asynchronous image generation and returns a job
// handle. Completion reaches the asset row eventually; the engine never
// blocks on it.
type ImageGenerator interface {
	Generate(ctx context.Context, job ImageJob) (string, error)
}

// ImageLocalizer copies an image into project-local storage so branch
// deletion and library deletion cannot orphan project media.
type ImageLocalizer interface {
	Copy(ctx context.Context, sourceURL string, projectID, branchID uuid.UUID) (string, error)
}
