package completion

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ShayCichocki/coverdesk/pkg/models"
)

func history(turns ...models.Turn) []models.Turn { return turns }

func turn(role models.Role, text string) models.Turn {
	return models.Turn{Role: role, Text: text}
}

func TestClassify(t *testing.T) {
	d := NewDetector()

	tests := []struct {
		name    string
		history []models.Turn
		ids     models.Identifiers
		want    Status
	}{
		{
			name:    "no specialist message",
			history: history(turn(models.RoleUser, "What is my premium?")),
			want:    Inconclusive,
		},
		{
			name: "asks for policy number",
			history: history(
				turn(models.RoleUser, "What is my premium?"),
				turn(models.RoleBilling, "Could you provide your policy number?"),
			),
			want: NeedsPolicyNumber,
		},
		{
			name: "asks for policy number but it is known",
			history: history(
				turn(models.RoleBilling, "Please provide your policy number."),
			),
			ids:  models.Identifiers{PolicyNumber: "POL123456"},
			want: Inconclusive,
		},
		{
			name: "asks for claim id",
			history: history(
				turn(models.RoleClaims, "Please provide your claim ID so I can look it up."),
			),
			want: NeedsClaimID,
		},
		{
			name: "asks for claim id but it is known",
			history: history(
				turn(models.RoleClaims, "Please provide your claim ID."),
			),
			ids:  models.Identifiers{ClaimID: "CLM000001"},
			want: Inconclusive,
		},
		{
			name: "fact without request",
			history: history(
				turn(models.RoleBilling, "Your premium is $120.50, due on the 1st."),
			),
			want: Answered,
		},
		{
			name: "claim approved",
			history: history(
				turn(models.RoleClaims, "Claim CLM000001 has been APPROVED."),
			),
			want: Answered,
		},
		{
			name: "fact blocked by failure notice",
			history: history(
				turn(models.RoleBilling, "I was unable to retrieve your balance right now."),
			),
			want: Inconclusive,
		},
		{
			name: "fact blocked by request cue",
			history: history(
				turn(models.RoleBilling, "To check your premium, can you provide your customer ID?"),
			),
			want: Inconclusive,
		},
		{
			name: "uses last specialist message only",
			history: history(
				turn(models.RoleBilling, "Please provide your policy number."),
				turn(models.RoleUser, "POL123456"),
				turn(models.RoleBilling, "Your premium is $99."),
				turn(models.RoleAssistant, "Anything else?"),
			),
			want: Answered,
		},
		{
			name: "no cues",
			history: history(
				turn(models.RoleGeneralHelp, "Happy to help with that."),
			),
			want: Inconclusive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.Classify(tt.history, tt.ids)
			assert.Equal(t, tt.want, got.Status)
		})
	}
}

func TestClassify_PolicyTakesPriorityOverClaim(t *testing.T) {
	d := NewDetector()
	h := history(turn(models.RoleClaims, "Please provide your policy number and please provide your claim ID."))

	got := d.Classify(h, models.Identifiers{})
	assert.Equal(t, NeedsPolicyNumber, got.Status)

	got = d.Classify(h, models.Identifiers{PolicyNumber: "POL123456"})
	assert.Equal(t, NeedsClaimID, got.Status)
}

func TestClassify_ReportsEvidence(t *testing.T) {
	d := NewDetector()
	h := history(turn(models.RoleBilling, "Your deductible is 500."))

	got := d.Classify(h, models.Identifiers{})
	assert.Equal(t, Answered, got.Status)
	assert.Equal(t, "deductible", got.MatchedKeyword)
	assert.Equal(t, models.RoleBilling, got.Turn.Role)
}

func TestNewDetectorWithKeywords(t *testing.T) {
	d := NewDetectorWithKeywords(Keywords{Facts: []string{"covered"}})
	h := history(turn(models.RolePolicy, "Yes, hail damage is covered."))

	assert.Equal(t, Answered, d.Classify(h, models.Identifiers{}).Status)
}

func TestLastSpecialistMessage(t *testing.T) {
	_, ok := LastSpecialistMessage(nil)
	assert.False(t, ok)

	h := history(
		turn(models.RolePolicy, "first"),
		turn(models.RoleUser, "ok"),
		turn(models.RoleClaims, "second"),
		turn(models.RoleAssistant, "Routing to claims_agent"),
	)
	got, ok := LastSpecialistMessage(h)
	assert.True(t, ok)
	assert.Equal(t, "second", got.Text)
}
