package completion

import (
	"strings"

	"github.com/ShayCichocki/coverdesk/pkg/models"
)

// Status is the detector's reading of the last specialist reply.
type Status string

const (
	Answered          Status = "answered"
	NeedsPolicyNumber Status = "needs_policy_number"
	NeedsClaimID      Status = "needs_claim_id"
	Inconclusive      Status = "inconclusive"
)

// Result carries the status along with the evidence behind it.
type Result struct {
	Status Status
	// Turn is the specialist message that was read. Zero if none was found.
	Turn models.Turn
	// MatchedKeyword is the cue that decided the status, if any.
	MatchedKeyword string
}

// Detector classifies specialist replies against a keyword vocabulary.
type Detector struct {
	keywords Keywords
}

// NewDetector creates a detector with the default vocabulary.
func NewDetector() *Detector {
	return &Detector{keywords: DefaultKeywords}
}

// NewDetectorWithKeywords creates a detector with a custom vocabulary.
func NewDetectorWithKeywords(kw Keywords) *Detector {
	return &Detector{keywords: kw}
}

// LastSpecialistMessage returns the most recent turn spoken by a specialist.
func LastSpecialistMessage(history []models.Turn) (models.Turn, bool) {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role.IsSpecialist() {
			return history[i], true
		}
	}
	return models.Turn{}, false
}

// Classify reads the last specialist message in history.
// Identifier requests only count while the matching slot in ids is empty.
func (d *Detector) Classify(history []models.Turn, ids models.Identifiers) Result {
	turn, ok := LastSpecialistMessage(history)
	if !ok {
		return Result{Status: Inconclusive}
	}

	text := strings.ToLower(turn.Text)

	if kw := containsAny(text, d.keywords.PolicyRequests); kw != "" && !ids.HasPolicy() {
		return Result{Status: NeedsPolicyNumber, Turn: turn, MatchedKeyword: kw}
	}

	if kw := containsAny(text, d.keywords.ClaimRequests); kw != "" && !ids.HasClaim() {
		return Result{Status: NeedsClaimID, Turn: turn, MatchedKeyword: kw}
	}

	if fact := containsAny(text, d.keywords.Facts); fact != "" {
		if containsAny(text, d.keywords.Requests) == "" {
			return Result{Status: Answered, Turn: turn, MatchedKeyword: fact}
		}
	}

	return Result{Status: Inconclusive, Turn: turn}
}
