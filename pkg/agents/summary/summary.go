package summary

import "sort"

// ActionType enumerates what happened to the target object.
type ActionType string

// Action types emitted by the engine for observability.
const (
	ActionCreated   ActionType = "created"
	ActionUpdated   ActionType = "updated"
	ActionUnchanged ActionType = "unchanged"
	ActionSkipped   ActionType = "skipped"
)

// Reason values describing why an action occurred.
const (
	ReasonApplied            = "Applied"
	ReasonAlreadySynced      = "AlreadySynced"
	ReasonCreationPolicyNone = "CreationPolicyNone"
)

// FileOutcome records how one file of the target was produced.
type FileOutcome struct {
	Filename string
	Format   string
	Strategy string
	Sources  []string
}

// Summary aggregates one reconciliation for metrics, status and events.
type Summary struct {
	TargetKind string
	TargetName string
	Action     ActionType
	Reason     string
	Files      []FileOutcome
	// Bytes is the rendered size of the target data.
	Bytes int
}

// Changed reports whether the target was written.
func (s *Summary) Changed() bool {
	if s == nil {
		return false
	}
	return s.Action == ActionCreated || s.Action == ActionUpdated
}

// Filenames returns the produced filenames in sorted order.
func (s *Summary) Filenames() []string {
	if s == nil || len(s.Files) == 0 {
		return nil
	}
	names := make([]string, 0, len(s.Files))
	for _, file := range s.Files {
		names = append(names, file.Filename)
	}
	sort.Strings(names)
	return names
}
