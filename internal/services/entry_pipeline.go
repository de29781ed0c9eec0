package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/minachen/sproutlog-backend/internal/logger"
	"github.com/minachen/sproutlog-backend/internal/repos"
	"github.com/minachen/sproutlog-backend/internal/types"
)

type ProcessStageStatuses struct {
	Recorder StageStatus `json:"recorder"`
	Expert   StageStatus `json:"expert"`
}

// ProcessResult is what a journal submission returns. Entry is always set
// once the raw entry is persisted, even when later stages failed.
type ProcessResult struct {
	Success bool                     `json:"success"`
	Entry   *types.EntryWithAnalysis `json:"entry,omitempty"`
	Error   string                   `json:"error,omitempty"`
	Stages  ProcessStageStatuses     `json:"stages"`
}

// EntryService runs the entry processing pipeline and serves entry reads.
//
// Failure policy: the raw entry is persisted before any stage runs and is
// never rolled back. A recorder failure ends the pipeline. A retrieval
// failure degrades to an empty context. An expert failure leaves the fact
// card without an analysis.
type EntryService interface {
	ProcessEntry(ctx context.Context, rawText string, entryDate time.Time, childAge *string) (*ProcessResult, error)
	GetEntry(ctx context.Context, id uuid.UUID) (*types.EntryWithAnalysis, error)
	ListEntries(ctx context.Context, filter repos.EntryFilter) ([]*types.EntryWithAnalysis, error)
}

type entryService struct {
	entryRepo    repos.EntryRepo
	factCardRepo repos.FactCardRepo
	analysisRepo repos.ExpertAnalysisRepo
	recorder     RecorderService
	retrieval    RetrievalService
	expert       ExpertService
	log          *logger.Logger
}

func NewEntryService(
	entryRepo repos.EntryRepo,
	factCardRepo repos.FactCardRepo,
	analysisRepo repos.ExpertAnalysisRepo,
	recorder RecorderService,
	retrieval RetrievalService,
	expert ExpertService,
	baseLog *logger.Logger,
) EntryService {
	return &entryService{
		entryRepo:    entryRepo,
		factCardRepo: factCardRepo,
		analysisRepo: analysisRepo,
		recorder:     recorder,
		retrieval:    retrieval,
		expert:       expert,
		log:          baseLog.With("service", "EntryService"),
	}
}

func (s *entryService) ProcessEntry(ctx context.Context, rawText string, entryDate time.Time, childAge *string) (*ProcessResult, error) {
	entry, err := s.entryRepo.Create(ctx, nil, &types.Entry{
		RawText:   rawText,
		EntryDate: entryDate,
		ChildAge:  childAge,
	})
	if err != nil {
		return nil, fmt.Errorf("persist entry: %w", err)
	}
	result := &ProcessResult{Entry: entryView(entry)}

	factOut, recorderStatus := s.recorder.Record(ctx, RecorderInput{
		RawText:   rawText,
		EntryDate: entryDate,
		ChildAge:  childAge,
	})
	result.Stages.Recorder = recorderStatus
	if !recorderStatus.Success {
		result.Error = "recorder stage failed; the raw entry was saved"
		return result, nil
	}

	card, err := s.persistFactCard(ctx, entry.ID, factOut)
	if err != nil {
		s.log.Error("failed to persist fact card", "entry_id", entry.ID, "error", err)
		result.Stages.Recorder = StageStatus{
			Error:         fmt.Sprintf("persist fact card: %v", err),
			PromptVersion: recorderStatus.PromptVersion,
		}
		result.Error = "recorder stage failed; the raw entry was saved"
		return result, nil
	}
	entry.FactCard = card
	result.Entry = entryView(entry)

	retrievalCtx, err := s.retrieval.Retrieve(ctx, factOut, entry.ID, defaultRetrievalLimit)
	if err != nil {
		s.log.Warn("retrieval failed, continuing with empty context", "entry_id", entry.ID, "error", err)
		retrievalCtx = &types.RetrievalContext{}
	}

	expertOut, expertStatus := s.expert.Analyze(ctx, ExpertInput{FactCard: factOut, Context: retrievalCtx})
	if expertStatus.Success {
		analysis, err := s.persistAnalysis(ctx, card.ID, expertOut)
		if err != nil {
			s.log.Error("failed to persist expert analysis", "entry_id", entry.ID, "error", err)
			expertStatus = StageStatus{
				Error:         fmt.Sprintf("persist expert analysis: %v", err),
				PromptVersion: expertStatus.PromptVersion,
			}
		} else {
			card.ExpertAnalysis = analysis
			result.Entry = entryView(entry)
		}
	}
	result.Stages.Expert = expertStatus

	result.Success = true
	return result, nil
}

func (s *entryService) persistFactCard(ctx context.Context, entryID uuid.UUID, out *types.FactCardOutput) (*types.FactCard, error) {
	card := &types.FactCard{
		EntryID:     entryID,
		OneLine:     out.OneLine,
		Events:      mustJSON(out.Events),
		Tags:        mustJSON(out.Tags),
		MissingInfo: mustJSON(out.MissingInfo),
	}
	if out.AgeBucket != "" {
		bucket := out.AgeBucket
		card.AgeBucket = &bucket
	}
	return s.factCardRepo.Create(ctx, nil, card)
}

func (s *entryService) persistAnalysis(ctx context.Context, factCardID uuid.UUID, out *types.ExpertOutput) (*types.ExpertAnalysis, error) {
	return s.analysisRepo.Create(ctx, nil, &types.ExpertAnalysis{
		FactCardID:     factCardID,
		Interpretation: out.Interpretation,
		Suggestions:    mustJSON(out.Suggestions),
		Patterns:       mustJSON(out.Patterns),
		RiskFlags:      mustJSON(out.RiskFlags),
	})
}

// mustJSON marshals validated output structs; these shapes cannot fail to
// marshal.
func mustJSON(v interface{}) datatypes.JSON {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return datatypes.JSON(data)
}

func (s *entryService) GetEntry(ctx context.Context, id uuid.UUID) (*types.EntryWithAnalysis, error) {
	entry, err := s.entryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return entryView(entry), nil
}

func (s *entryService) ListEntries(ctx context.Context, filter repos.EntryFilter) ([]*types.EntryWithAnalysis, error) {
	entries, err := s.entryRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return entryViews(entries), nil
}
