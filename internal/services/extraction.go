package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dlopezkluever/wizardirector/internal/data/repos"
	"github.com/dlopezkluever/wizardirector/internal/domain"
	"github.com/dlopezkluever/wizardirector/internal/platform/dbctx"
	"github.com/dlopezkluever/wizardirector/internal/platform/logger"
)

type ExtractionDecisionKind string

const (
	// DecisionAccept creates a standalone local asset from the candidate.
	DecisionAccept ExtractionDecisionKind = "accept"
	// DecisionAcceptAndLink clones a library asset into the candidate's
	// slot, merging the candidate's description in.
	DecisionAcceptAndLink ExtractionDecisionKind = "acceptAndLink"
	// DecisionReject drops the candidate.
	DecisionReject ExtractionDecisionKind = "reject"
)

// ExtractionCandidate is one entity pulled out of a script: a name, a
// type, and the description the script implies.
type ExtractionCandidate struct {
	Name        string           `json:"name"`
	Type        domain.AssetType `json:"type"`
	Description string           `json:"description"`
	ImagePrompt string           `json:"image_prompt,omitempty"`
}

type ExtractionDecision struct {
	Candidate      ExtractionCandidate    `json:"candidate"`
	Kind           ExtractionDecisionKind `json:"kind"`
	LibraryAssetID *uuid.UUID             `json:"library_asset_id,omitempty"`
}

type ExtractionOutcome struct {
	Created  []*domain.LocalAsset `json:"created"`
	Rejected int                  `json:"rejected"`
	Warnings []string             `json:"warnings,omitempty"`
}

type ExtractionService interface {
	ApplyDecisions(dbc dbctx.Context, ownerID, projectID, branchID uuid.UUID, decisions []ExtractionDecision) (*ExtractionOutcome, error)
}

type extractionService struct {
	db        *gorm.DB
	log       *logger.Logger
	localRepo repos.LocalAssetRepo
	cloner    CloneService
}

func NewExtractionService(db *gorm.DB, log *logger.Logger, localRepo repos.LocalAssetRepo, cloner CloneService) ExtractionService {
	return &extractionService{
		db:        db,
		log:       log.With("service", "ExtractionService"),
		localRepo: localRepo,
		cloner:    cloner,
	}
}

// ApplyDecisions turns reviewed extraction candidates into local assets.
// Decisions are applied one at a time; a failing decision aborts with the
// assets created so far already persisted, so callers should treat the
// call as resumable rather than atomic.
func (s *extractionService) ApplyDecisions(dbc dbctx.Context, ownerID, projectID, branchID uuid.UUID, decisions []ExtractionDecision) (*ExtractionOutcome, error) {
	out := &ExtractionOutcome{Created: []*domain.LocalAsset{}}

	for i, d := range decisions {
		switch d.Kind {
		case DecisionReject:
			out.Rejected++

		case DecisionAccept:
			local, err := s.acceptStandalone(dbc, projectID, branchID, d.Candidate)
			if err != nil {
				return out, err
			}
			out.Created = append(out.Created, local)

		case DecisionAcceptAndLink:
			if d.LibraryAssetID == nil {
				return out, domain.ValidationError(fmt.Sprintf("decision %d: acceptAndLink requires a library asset id", i))
			}
			opts := CloneOptions{}
			if desc := strings.TrimSpace(d.Candidate.Description); desc != "" {
				// The script-specific description beats the generic
				// library one and is kept through later syncs.
				opts.OverrideDescription = &desc
			}
			res, err := s.cloner.Clone(dbc, ownerID, *d.LibraryAssetID, projectID, branchID, opts)
			if err != nil {
				return out, err
			}
			out.Created = append(out.Created, res.Local)
			out.Warnings = append(out.Warnings, res.Warnings...)

		default:
			return out, domain.ValidationError(fmt.Sprintf("decision %d: unknown kind %q", i, d.Kind))
		}
	}

	s.log.Info("Applied extraction decisions",
		"project_id", projectID, "branch_id", branchID,
		"created", len(out.Created), "rejected", out.Rejected)
	return out, nil
}

func (s *extractionService) acceptStandalone(dbc dbctx.Context, projectID, branchID uuid.UUID, c ExtractionCandidate) (*domain.LocalAsset, error) {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return nil, domain.ValidationError("candidate name is required")
	}
	if !domain.IsAssetType(c.Type) {
		return nil, domain.ValidationError(fmt.Sprintf("unknown asset type %q", c.Type))
	}
	local := &domain.LocalAsset{
		ID:               uuid.New(),
		ProjectID:        projectID,
		BranchID:         branchID,
		Name:             name,
		Type:             c.Type,
		Description:      c.Description,
		ImagePrompt:      c.ImagePrompt,
		OverriddenFields: domain.FieldSet{},
	}
	created, err := s.localRepo.Create(dbc, []*domain.LocalAsset{local})
	if err != nil {
		return nil, err
	}
	return created[0], nil
}
