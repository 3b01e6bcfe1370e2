package analysis

// Wire types for the remote analysis service. Field names mirror the
// service's JSON contract; risk levels arrive as "low", "medium" or "high".

// DocumentAnalysis is the document-level structural analysis.
type DocumentAnalysis struct {
	RiskScore            float64   `json:"riskScore"`
	RiskLevel            string    `json:"riskLevel"`
	Sections             []Section `json:"sections"`
	PredictabilityScores []float64 `json:"predictabilityScores"`
	Issues               []Issue   `json:"issues"`
}

// Section is one structural region the service identified in the document.
type Section struct {
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	RiskLevel string `json:"riskLevel"`
}

// Issue is a single detected problem the user can select for remediation.
type Issue struct {
	Index          int    `json:"index"`
	Type           string `json:"type"`
	Severity       string `json:"severity"`
	Description    string `json:"description"`
	Excerpt        string `json:"excerpt"`
	ParagraphIndex int    `json:"paragraphIndex"`
}

// LengthAnalysis reports paragraph length regularity.
type LengthAnalysis struct {
	Paragraphs            []ParagraphLength `json:"paragraphs"`
	CV                    float64           `json:"cv"`
	MeanLength            float64           `json:"meanLength"`
	LengthRegularityScore float64           `json:"lengthRegularityScore"`
	RiskLevel             string            `json:"riskLevel"`
	Recommendations       []string          `json:"recommendations"`
}

// ParagraphLength is one paragraph's word count.
type ParagraphLength struct {
	Index int `json:"index"`
	Words int `json:"words"`
}

// ProgressionClosure reports how the document progresses and closes.
type ProgressionClosure struct {
	ProgressionScore float64  `json:"progressionScore"`
	ClosureScore     float64  `json:"closureScore"`
	ProgressionType  string   `json:"progressionType"`
	ClosureType      string   `json:"closureType"`
	Markers          []Marker `json:"markers"`
}

// Marker is a progression or closure marker found in the text.
type Marker struct {
	Type           string `json:"type"`
	Text           string `json:"text"`
	ParagraphIndex int    `json:"paragraphIndex"`
}

// ConnectorAnalysis reports transition smoothness between paragraphs.
type ConnectorAnalysis struct {
	Transitions            []Transition `json:"transitions"`
	OverallSmoothnessScore float64      `json:"overallSmoothnessScore"`
	ConnectorDensity       float64      `json:"connectorDensity"`
	RiskLevel              string       `json:"riskLevel"`
}

// Transition is one paragraph-to-paragraph connector observation.
type Transition struct {
	FromParagraph int     `json:"fromParagraph"`
	ToParagraph   int     `json:"toParagraph"`
	Connector     string  `json:"connector"`
	Smoothness    float64 `json:"smoothness"`
}

// SubstantialityAnalysis reports per-paragraph content specificity.
type SubstantialityAnalysis struct {
	Paragraphs              []ParagraphSpecificity `json:"paragraphs"`
	OverallSpecificityScore float64                `json:"overallSpecificityScore"`
	RiskLevel               string                 `json:"riskLevel"`
}

// ParagraphSpecificity is one paragraph's specificity measurement.
type ParagraphSpecificity struct {
	Index            int     `json:"index"`
	SpecificityScore float64 `json:"specificityScore"`
	Generic          bool    `json:"generic"`
}

// SentenceAnalysis is the sentence identification result.
type SentenceAnalysis struct {
	Sentences            []Sentence     `json:"sentences"`
	TypeDistribution     map[string]int `json:"typeDistribution"`
	ParagraphSentenceMap map[int][]int  `json:"paragraphSentenceMap"`
	RiskScore            float64        `json:"riskScore"`
}

// Sentence is one identified sentence with its structural type.
type Sentence struct {
	Index  int    `json:"index"`
	Text   string `json:"text"`
	Type   string `json:"type"`
	Opener string `json:"opener"`
}

// PatternAnalysis maps original block indices to their risk metrics.
type PatternAnalysis struct {
	HighRiskParagraphs map[int]ParagraphRisk `json:"highRiskParagraphs"`
}

// ParagraphRisk carries the pattern metrics for one paragraph.
type ParagraphRisk struct {
	SimpleRatio      float64 `json:"simpleRatio"`
	LengthCV         float64 `json:"lengthCv"`
	OpenerRepetition float64 `json:"openerRepetition"`
	RiskScore        float64 `json:"riskScore"`
	RiskLevel        string  `json:"riskLevel"`
}

// ReplacementAnalysis lists lexical replacement candidates.
type ReplacementAnalysis struct {
	Replacements     []Replacement  `json:"replacements"`
	ReplacementCount int            `json:"replacementCount"`
	ByCategory       map[string]int `json:"byCategory"`
	RiskLevel        string         `json:"riskLevel"`
}

// Replacement suggests swapping one lexical marker for another.
type Replacement struct {
	Original  string `json:"original"`
	Suggested string `json:"suggested"`
	Category  string `json:"category"`
	Count     int    `json:"count"`
}

// StageResult is the outcome of one per-paragraph remediation stage.
type StageResult struct {
	ModifiedText string        `json:"modifiedText"`
	Changes      []ChangeCount `json:"changes"`
}

// ChangeCount is one category of edits with its count.
type ChangeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// IssueSuggestion is single-issue remediation advice.
type IssueSuggestion struct {
	Analysis    string   `json:"analysis"`
	Suggestions []string `json:"suggestions"`
	ExampleFix  string   `json:"exampleFix"`
}

// ModifyPrompt is the generated bulk-remediation prompt.
type ModifyPrompt struct {
	Prompt string `json:"prompt"`
}

// ModifyResult is the outcome of applying bulk remediation.
type ModifyResult struct {
	ModifiedText   string `json:"modifiedText"`
	ChangesSummary string `json:"changesSummary"`
	ChangesCount   int    `json:"changesCount"`
}
