package models

import "time"

type ImportSummary struct {
	TotalRows        int                     `json:"total_rows"`
	ProcessedRows    int                     `json:"processed_rows"`
	SuccessCount     int                     `json:"success_count"`
	ErrorCount       int                     `json:"error_count"`
	CreatedQuestions []string                `json:"created_questions"`
	Errors           []ImportValidationError `json:"errors"`
	ProcessingTime   time.Duration           `json:"processing_time"`
}

type ImportValidationError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AllModels is the migration set, in dependency order.
func AllModels() []interface{} {
	return []interface{}{
		&Question{},
		&Profile{},
		&HistoryRecord{},
		&WrongBookEntry{},
		&FavoriteEntry{},
	}
}
