package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/SAP-F-2025/ielts-trainer/internal/models"
	"github.com/SAP-F-2025/ielts-trainer/internal/repositories"
	"github.com/SAP-F-2025/ielts-trainer/internal/validator"
	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"
)

// ImportService loads question banks from spreadsheets
type ImportService interface {
	// ImportQuestionsFromExcel reads sheet (the first sheet when empty). Valid rows are saved,
	// invalid rows are reported in the summary.
	ImportQuestionsFromExcel(ctx context.Context, reader io.Reader, sheet string) (*models.ImportSummary, error)
}

type importService struct {
	repo      repositories.QuestionRepository
	logger    *ServiceLogger
	validator *validator.Validator
}

func NewImportService(repo repositories.QuestionRepository, logger *ServiceLogger, validator *validator.Validator) ImportService {
	return &importService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

// Column names accepted in the header row
const (
	colType           = "type"
	colCategory       = "category"
	colDifficulty     = "difficulty"
	colQuestionText   = "question_text"
	colOptions        = "options"
	colCorrectAnswer  = "correct_answer"
	colExplanation    = "explanation"
	colArticleContent = "article_content"

	optionSeparator = "|"
)

var requiredColumns = []string{colType, colCategory, colDifficulty, colQuestionText, colCorrectAnswer}

func (s *importService) ImportQuestionsFromExcel(ctx context.Context, reader io.Reader, sheet string) (*models.ImportSummary, error) {
	started := time.Now()

	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportFileInvalid, err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, NewValidationError("file", "workbook has no sheets", nil)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, NewValidationError("file", "sheet must have a header row and at least one data row", len(rows))
	}

	headerMap := make(map[string]int)
	for i, header := range rows[0] {
		headerMap[strings.ToLower(strings.TrimSpace(header))] = i
	}
	if missing := lo.Filter(requiredColumns, func(c string, _ int) bool { _, ok := headerMap[c]; return !ok }); len(missing) > 0 {
		return nil, NewValidationError("header", "missing columns: "+strings.Join(missing, ", "), missing)
	}

	summary := &models.ImportSummary{
		TotalRows:        len(rows) - 1,
		CreatedQuestions: []string{},
		Errors:           []models.ImportValidationError{},
	}

	var questions []*models.Question
	for i, row := range rows[1:] {
		rowNum := i + 2
		if lo.EveryBy(row, func(cell string) bool { return strings.TrimSpace(cell) == "" }) {
			continue
		}
		summary.ProcessedRows++

		question, rowErrors := s.parseRow(row, headerMap, rowNum)
		if len(rowErrors) > 0 {
			summary.Errors = append(summary.Errors, rowErrors...)
			summary.ErrorCount++
			continue
		}
		questions = append(questions, question)
	}

	if len(questions) > 0 {
		if err := s.repo.CreateBatch(ctx, questions); err != nil {
			return nil, fmt.Errorf("failed to save questions: %w", err)
		}
	}

	summary.SuccessCount = len(questions)
	summary.CreatedQuestions = lo.Map(questions, func(q *models.Question, _ int) string { return q.ID })
	summary.ProcessingTime = time.Since(started)

	s.logger.Logger().InfoContext(ctx, "Excel import completed",
		"sheet", sheet,
		"total_rows", summary.TotalRows,
		"success_count", summary.SuccessCount,
		"error_count", summary.ErrorCount)

	return summary, nil
}

func (s *importService) parseRow(record []string, headerMap map[string]int, rowNum int) (*models.Question, []models.ImportValidationError) {
	getColumn := func(name string) string {
		if index, exists := headerMap[name]; exists && index < len(record) {
			return strings.TrimSpace(record[index])
		}
		return ""
	}
	optional := func(name string) *string {
		if v := getColumn(name); v != "" {
			return &v
		}
		return nil
	}

	question := &models.Question{
		Type:           models.QuestionType(strings.ToLower(getColumn(colType))),
		Category:       models.Category(strings.ToLower(getColumn(colCategory))),
		Difficulty:     models.DifficultyLevel(strings.ToLower(getColumn(colDifficulty))),
		QuestionText:   getColumn(colQuestionText),
		CorrectAnswer:  getColumn(colCorrectAnswer),
		Explanation:    optional(colExplanation),
		ArticleContent: optional(colArticleContent),
	}
	if raw := getColumn(colOptions); raw != "" {
		options := lo.Map(strings.Split(raw, optionSeparator), func(o string, _ int) string { return strings.TrimSpace(o) })
		question.Options = lo.Filter(options, func(o string, _ int) bool { return o != "" })
	}

	var errs []models.ImportValidationError
	if err := s.validator.Question().ValidateNew(question); err != nil {
		for _, ve := range asValidationErrors(err) {
			errs = append(errs, models.ImportValidationError{Row: rowNum, Field: ve.Field, Message: ve.Message})
		}
		return nil, errs
	}

	// Choice answers are matched against option text verbatim
	if question.IsMultipleChoice() && !lo.Contains(question.Options, question.CorrectAnswer) {
		errs = append(errs, models.ImportValidationError{
			Row:     rowNum,
			Field:   colCorrectAnswer,
			Message: "must equal one of the options",
		})
		return nil, errs
	}

	return question, nil
}
