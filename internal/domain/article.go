package domain

import "time"

// Article is the single entity flowing through a digest run.
type Article struct {
	ID           string
	Title        string
	PDFLink      string
	AbstractLink string
	ContentPath  string
	Summary      string
}

// ItemStatus tells what happened to one article during summarization.
type ItemStatus string

const (
	ItemSummarized ItemStatus = "summarized"
	ItemSkipped    ItemStatus = "skipped"
)

// ItemOutcome is the per-article result reported by the summarizer.
type ItemOutcome struct {
	ArticleID string
	Status    ItemStatus
	Reason    string
}

// RunStatus enumerates the possible endings of one run.
type RunStatus string

const (
	RunOK         RunStatus = "ok"
	RunNoNewItems RunStatus = "no_new_items"
	RunFailed     RunStatus = "failed"
)

// RunResult is returned once per invocation of the pipeline.
type RunResult struct {
	Status     RunStatus
	Articles   []Article
	Outcomes   []ItemOutcome
	OutputPath string
	Err        error
}

// Failed reports whether the run must be signalled as a failure to the invoker.
func (r RunResult) Failed() bool {
	return r.Status == RunFailed
}

// ProcessedArticle is persisted after delivery for cross-run deduplication.
type ProcessedArticle struct {
	ArticleID   string
	Title       string
	Summary     string
	DeliveredAt time.Time
}
