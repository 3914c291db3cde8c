package domain

import "time"

// WorkspaceVersion is the current workspace file format version.
const WorkspaceVersion = "1.0"

// Workspace is a saved research session.
type Workspace struct {
	// Name is the user-supplied workspace name.
	Name string `json:"name" yaml:"name"`

	// CreatedAt is when the workspace was saved.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	// Version is the file format version.
	Version string `json:"version" yaml:"version"`

	// Data is the session state.
	Data Session `json:"data" yaml:"data"`
}

// Session is the research state captured in a workspace.
type Session struct {
	UploadedPapers     []string     `json:"uploaded_papers" yaml:"uploaded_papers"`
	SuggestedQuestions []string     `json:"suggested_questions" yaml:"suggested_questions"`
	QueryInput         string       `json:"query_input" yaml:"query_input"`
	QAHistory          []QAExchange `json:"qa_history" yaml:"qa_history"`
	ComparisonResults  []ToolResult `json:"comparison_results" yaml:"comparison_results"`
	LiteratureReviews  []ToolResult `json:"literature_reviews" yaml:"literature_reviews"`
	DatasetExtractions []ToolResult `json:"dataset_extractions" yaml:"dataset_extractions"`
	SavedAt            time.Time    `json:"saved_at" yaml:"saved_at"`
}

// QAExchange is one question and its answer.
type QAExchange struct {
	Question string    `json:"question" yaml:"question"`
	Answer   string    `json:"answer" yaml:"answer"`
	Sources  []string  `json:"sources,omitempty" yaml:"sources,omitempty"`
	AskedAt  time.Time `json:"asked_at" yaml:"asked_at"`
}

// ToolResult is the output of a single-shot research helper.
type ToolResult struct {
	Papers    []string  `json:"papers" yaml:"papers"`
	Output    string    `json:"output" yaml:"output"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// IsEmpty returns true if the session holds no research state.
func (s Session) IsEmpty() bool {
	return len(s.UploadedPapers) == 0 &&
		len(s.SuggestedQuestions) == 0 &&
		s.QueryInput == "" &&
		len(s.QAHistory) == 0 &&
		len(s.ComparisonResults) == 0 &&
		len(s.LiteratureReviews) == 0 &&
		len(s.DatasetExtractions) == 0
}

// WorkspaceInfo describes a stored workspace file.
type WorkspaceInfo struct {
	// Filename is the stored file name, used to load or delete the workspace.
	Filename string

	// Name is the workspace name, "Unnamed" when missing.
	Name string

	// CreatedAt is when the workspace was saved. Zero when unknown.
	CreatedAt time.Time

	// Size is the file size in bytes.
	Size int64
}
