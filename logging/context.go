package logging

import "context"

type contextKey string

const fieldsKey contextKey = "log_fields"

// Fields are attached to every log record written with a context carrying them.
type Fields struct {
	ThreadID   string
	ArtifactID string
	Component  string // e.g. "chat", "artifact", "publisher"
}

// WithFields merges fields into ctx; non-empty values in fields win.
func WithFields(ctx context.Context, fields Fields) context.Context {
	merged := GetFields(ctx)
	if fields.ThreadID != "" {
		merged.ThreadID = fields.ThreadID
	}
	if fields.ArtifactID != "" {
		merged.ArtifactID = fields.ArtifactID
	}
	if fields.Component != "" {
		merged.Component = fields.Component
	}
	return context.WithValue(ctx, fieldsKey, merged)
}

func GetFields(ctx context.Context) Fields {
	if fields, ok := ctx.Value(fieldsKey).(Fields); ok {
		return fields
	}
	return Fields{}
}
