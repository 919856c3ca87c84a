package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID identifies one sync run across all of its log lines.
	FieldRunID = "run_id"
	// FieldSpreadsheet names the spreadsheet a worksheet belongs to.
	FieldSpreadsheet = "spreadsheet"
	// FieldWorksheet is the worksheet title, normally a session date.
	FieldWorksheet = "worksheet"
	FieldSessionID = "session_id"
	FieldReason    = "reason"
	// FieldEventType classifies a log line for filtering (e.g. "worksheet_skipped").
	FieldEventType = "event_type"
	// FieldErrorHint suggests the next step for an operator reading a warning.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
)

type contextKey int

const (
	runIDKey contextKey = iota
	worksheetKey
)

// WithRunID annotates ctx with the sync run identifier.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// RunIDFromContext returns the run identifier stored by WithRunID.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(runIDKey).(string)
	return id, ok && id != ""
}

// WithWorksheet annotates ctx with the worksheet currently being processed.
func WithWorksheet(ctx context.Context, spreadsheet, title string) context.Context {
	return context.WithValue(ctx, worksheetKey, [2]string{spreadsheet, title})
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if ws, ok := ctx.Value(worksheetKey).([2]string); ok {
		fields = append(fields,
			slog.String(FieldSpreadsheet, ws[0]),
			slog.String(FieldWorksheet, ws[1]),
		)
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(toArgs(fields)...)
}
