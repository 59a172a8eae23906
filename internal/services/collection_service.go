package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SAP-F-2025/ielts-trainer/internal/models"
	"github.com/SAP-F-2025/ielts-trainer/internal/repositories"
	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"
)

// CollectionItem is one favorites or wrong-book entry joined with its question.
type CollectionItem struct {
	Entry    models.CollectionEntry `json:"entry"`
	Question *models.Question       `json:"question"`
}

type CollectionService interface {
	List(ctx context.Context, userID string, kind models.CollectionKind) ([]CollectionItem, error)
	Remove(ctx context.Context, userID string, kind models.CollectionKind, questionID string) error
	Export(ctx context.Context, userID string, kind models.CollectionKind) ([]byte, error)
}

type collectionService struct {
	repo      repositories.Repository
	questions QuestionSource
	events    PracticeEventService
	logger    *ServiceLogger
}

func NewCollectionService(repo repositories.Repository, questions QuestionSource, events PracticeEventService, logger *ServiceLogger) CollectionService {
	return &collectionService{
		repo:      repo,
		questions: questions,
		events:    events,
		logger:    logger,
	}
}

// List returns the collection newest first. Entries whose question is gone or invalid are skipped.
func (s *collectionService) List(ctx context.Context, userID string, kind models.CollectionKind) ([]CollectionItem, error) {
	collection, err := s.collection(kind)
	if err != nil {
		return nil, err
	}

	entries, err := collection.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return []CollectionItem{}, nil
	}

	ids := lo.Uniq(lo.Map(entries, func(e models.CollectionEntry, _ int) string { return e.QuestionID }))
	questions, err := s.questions.ByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := lo.FilterMap(entries, func(e models.CollectionEntry, _ int) (CollectionItem, bool) {
		q, ok := questions[e.QuestionID]
		return CollectionItem{Entry: e, Question: q}, ok
	})
	if skipped := len(entries) - len(items); skipped > 0 {
		s.logger.Logger().WarnContext(ctx, "Collection entries without a usable question",
			"user_id", userID,
			"collection", kind,
			"skipped", skipped)
	}
	return items, nil
}

func (s *collectionService) Remove(ctx context.Context, userID string, kind models.CollectionKind, questionID string) error {
	op := s.logger.WithOperation(ctx, "remove_"+string(kind), userID)

	collection, err := s.collection(kind)
	if err == nil {
		err = collection.Remove(ctx, userID, questionID)
		if repositories.IsNotFoundError(err) {
			err = ErrCollectionEntryNotFound
		}
	}

	op.LogResult(questionID, "question", err)
	if err != nil {
		return err
	}

	s.events.CollectionEntryRemoved(ctx, userID, kind, questionID)
	return nil
}

var exportHeaders = []string{
	"Added", "Category", "Difficulty", "Type", "Question", "Options", "Correct Answer", "Explanation", "Article",
}

// Export renders the collection as an xlsx workbook.
func (s *collectionService) Export(ctx context.Context, userID string, kind models.CollectionKind) ([]byte, error) {
	items, err := s.List(ctx, userID, kind)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := CollectionTitle(kind)
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("failed to name Excel sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel style: %w", err)
	}

	if err := f.SetSheetRow(sheetName, "A1", &exportHeaders); err != nil {
		return nil, fmt.Errorf("failed to write Excel header: %w", err)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	if err := f.SetCellStyle(sheetName, "A1", lastHeader, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style Excel header: %w", err)
	}

	for i, item := range items {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := exportRow(item)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write Excel row: %w", err)
		}
	}

	if err := f.SetColWidth(sheetName, "E", "E", 60); err != nil {
		return nil, fmt.Errorf("failed to size Excel column: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Logger().InfoContext(ctx, "Collection exported",
		"user_id", userID,
		"collection", kind,
		"items", len(items))
	return buf.Bytes(), nil
}

func exportRow(item CollectionItem) []interface{} {
	q := item.Question
	return []interface{}{
		item.Entry.CreatedAt.Format("2006-01-02 15:04"),
		string(q.Category),
		string(q.Difficulty),
		string(q.Type),
		q.QuestionText,
		strings.Join(q.Options, " | "),
		q.CorrectAnswer,
		lo.FromPtr(q.Explanation),
		lo.FromPtr(q.ArticleContent),
	}
}

func (s *collectionService) collection(kind models.CollectionKind) (repositories.CollectionRepository, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, kind)
	}
	return s.repo.Collection(kind)
}

// CollectionTitle is the display name of a collection.
func CollectionTitle(kind models.CollectionKind) string {
	if kind == models.CollectionWrongBook {
		return "Wrong Book"
	}
	return "Favorites"
}

// CollectionRemover is the part of CollectionService a view needs.
type CollectionRemover interface {
	Remove(ctx context.Context, userID string, kind models.CollectionKind, questionID string) error
}

// CollectionView is the displayed state of a collection page. At most one item is expanded.
type CollectionView struct {
	UserID     string
	Kind       models.CollectionKind
	Items      []CollectionItem
	ExpandedID string
	// Notice is a blocking message shown after a failed removal.
	Notice string
}

func NewCollectionView(userID string, kind models.CollectionKind, items []CollectionItem) *CollectionView {
	return &CollectionView{
		UserID: userID,
		Kind:   kind,
		Items:  items,
	}
}

// ToggleExpand opens id and closes whatever was open. Opening the open item closes it.
func (v *CollectionView) ToggleExpand(id string) {
	if v.ExpandedID == id {
		v.ExpandedID = ""
		return
	}
	v.ExpandedID = id
}

func (v *CollectionView) IsExpanded(id string) bool {
	return id != "" && v.ExpandedID == id
}

func (v *CollectionView) IsEmpty() bool {
	return len(v.Items) == 0
}

func (v *CollectionView) Title() string {
	return CollectionTitle(v.Kind)
}

// Remove deletes the entry through remover and drops it from the local list without re-fetching.
// On failure the list is left as it was and Notice is set.
func (v *CollectionView) Remove(ctx context.Context, remover CollectionRemover, questionID string) error {
	if err := remover.Remove(ctx, v.UserID, v.Kind, questionID); err != nil {
		if errors.Is(err, ErrCollectionEntryNotFound) {
			v.Notice = "That question is no longer in your " + strings.ToLower(v.Title()) + "."
		} else {
			v.Notice = "Could not remove the question. Please try again."
		}
		return err
	}

	v.Items = lo.Filter(v.Items, func(item CollectionItem, _ int) bool {
		return item.Entry.QuestionID != questionID
	})
	if v.ExpandedID == questionID {
		v.ExpandedID = ""
	}
	v.Notice = ""
	return nil
}
