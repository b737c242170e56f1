package dto

import "time"

type StartInput struct {
	SchemaID string
}

type ReadingOutput struct {
	Index    int
	Ambient  string
	Bird     string
	Behavior string
	Valid    bool
}

type QuestionOutput struct {
	ID       string
	Prompt   string
	Kind     string
	Options  []string
	Text     string
	Selected []string
	// Value is the answer as sent to the collector.
	Value string
}

type SessionOutput struct {
	SessionID   string
	SchemaID    string
	SchemaTitle string
	Name        string
	State       string
	Submitted   bool
	Locked      bool
	Busy        bool
	LastError   string
	StartedAt   time.Time
	Readings    []ReadingOutput
	Questions   []QuestionOutput
}

type EditInput struct {
	SessionID string
	Index     int
	Field     string
	Value     string
}

type AnswerInput struct {
	SessionID  string
	QuestionID string
	Value      string
}

type PointOutput struct {
	Ambient float64
	Bird    float64
}

type SeriesOutput struct {
	Low         []PointOutput
	High        []PointOutput
	ScatterLow  []PointOutput
	ScatterHigh []PointOutput
}

type FieldOutput struct {
	Key   string
	Value string
}

type PreviewOutput struct {
	SessionID string
	Series    SeriesOutput
	Fields    []FieldOutput
}

type SubmitOutput struct {
	SessionID string
	State     string
	Rows      int
	// Reset is set when the form was cleared after a successful submission.
	Reset   bool
	Locked  bool
	Message string
}

type ExportInput struct {
	SessionID string
	Dir       string
}

type ExportOutput struct {
	SessionID string
	Path      string
}

type SchemaOutput struct {
	ID            string
	Title         string
	Version       int
	PostSubmit    string
	Transport     string
	ScatterJitter float64
	Questions     []QuestionOutput
}
