package services

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/dlopezkluever/wizardirector/internal/data/repos"
	"github.com/dlopezkluever/wizardirector/internal/domain"
	"github.com/dlopezkluever/wizardirector/internal/platform/dbctx"
	"github.com/dlopezkluever/wizardirector/internal/platform/logger"
)

// GateResult reports whether a branch may advance past asset preparation.
type GateResult struct {
	OK       bool        `json:"ok"`
	Reason   string      `json:"reason,omitempty"`
	Blocking []uuid.UUID `json:"blocking,omitempty"`
}

type LockGateService interface {
	CanAdvance(dbc dbctx.Context, projectID, branchID uuid.UUID) (*GateResult, error)
}

type lockGateService struct {
	log       *logger.Logger
	localRepo repos.LocalAssetRepo
}

func NewLockGateService(log *logger.Logger, localRepo repos.LocalAssetRepo) LockGateService {
	return &lockGateService{
		log:       log.With("service", "LockGateService"),
		localRepo: localRepo,
	}
}

func (s *lockGateService) CanAdvance(dbc dbctx.Context, projectID, branchID uuid.UUID) (*GateResult, error) {
	locals, err := s.localRepo.GetByProjectBranch(dbc, projectID, branchID, repos.LinkAny)
	if err != nil {
		return nil, err
	}
	return evaluateGate(locals), nil
}

// evaluateGate is the advancement rule: every non-deferred asset on the
// branch must carry an image before the branch moves on. Deferred assets
// are the user saying "later" and do not hold the gate. An empty gate set
// fails because it means nothing was prepared at all.
func evaluateGate(locals []*domain.LocalAsset) *GateResult {
	gated := make([]*domain.LocalAsset, 0, len(locals))
	for _, l := range locals {
		if l.Deferred {
			continue
		}
		gated = append(gated, l)
	}
	if len(gated) == 0 {
		return &GateResult{OK: false, Reason: "no assets ready on this branch"}
	}

	var blocking []uuid.UUID
	for _, l := range gated {
		if l.ImageURL == nil || *l.ImageURL == "" {
			blocking = append(blocking, l.ID)
		}
	}
	if len(blocking) > 0 {
		return &GateResult{
			OK:       false,
			Reason:   fmt.Sprintf("%d asset(s) missing images", len(blocking)),
			Blocking: blocking,
		}
	}
	return &GateResult{OK: true}
}
