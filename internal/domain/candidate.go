package domain

import "time"

// ContentCandidate is a catalog video annotated with precomputed scores,
// eligible for ranking. Candidates are built once per catalog build and never
// mutated; a rebuild produces fresh objects.
type ContentCandidate struct {
	VideoID         int64
	ExternalID      string
	Category        string
	Tags            []string
	BaseScore       float64
	FreshnessScore  float64
	EngagementScore float64
	EditorialBoost  float64
	MaturityRating  string
}

// CandidateSet is the full scored catalog for one tenant, sorted by BaseScore
// descending (ties broken by ascending video id). Version is owned by the
// rebuild trigger and increases monotonically per tenant.
type CandidateSet struct {
	TenantID   int64
	Version    int64
	BuiltAt    time.Time
	Candidates []ContentCandidate
}

func (s *CandidateSet) Empty() bool {
	return s == nil || len(s.Candidates) == 0
}
