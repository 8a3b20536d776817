package domain

// DownloadTarget pairs a fetched post with its destination directory.
// Owned exclusively by one download attempt.
type DownloadTarget struct {
	Record *PostRecord
	Dir    string
}

// FileOutcome is the per-attachment result of a write attempt.
type FileOutcome struct {
	URL       string
	LocalPath string
	Success   bool
	Err       error
}

// AllSucceeded reports whether every outcome in a post succeeded.
func AllSucceeded(outcomes []FileOutcome) bool {
	for _, o := range outcomes {
		if !o.Success {
			return false
		}
	}
	return true
}

// Report is the final tally of an orchestrator run.
type Report struct {
	Succeeded   int
	Failed      int
	Skipped     int
	FailedLinks []string
}
