package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShayCichocki/coverdesk/pkg/models"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Match
	}{
		{
			name: "policy number",
			text: "my policy is POL123456",
			want: []Match{{models.KindPolicyNumber, "POL123456"}},
		},
		{
			name: "all three kinds",
			text: "CUST00042 filed CLM000777 on POL000001",
			want: []Match{
				{models.KindPolicyNumber, "POL000001"},
				{models.KindCustomerID, "CUST00042"},
				{models.KindClaimID, "CLM000777"},
			},
		},
		{
			name: "first match wins",
			text: "POL111111 or maybe POL222222",
			want: []Match{{models.KindPolicyNumber, "POL111111"}},
		},
		{
			name: "case sensitive",
			text: "pol123456 clm123456 cust12345",
			want: nil,
		},
		{
			name: "too few digits",
			text: "POL12345 CLM12 CUST1234",
			want: nil,
		},
		{
			name: "empty",
			text: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.text))
		})
	}
}

func TestApply_SetOnce(t *testing.T) {
	var ids models.Identifiers

	filled := Apply(&ids, "it's POL123456")
	require.Equal(t, []models.IdentifierKind{models.KindPolicyNumber}, filled)

	filled = Apply(&ids, "sorry, I meant POL654321, claim CLM000001")
	assert.Equal(t, []models.IdentifierKind{models.KindClaimID}, filled)
	assert.Equal(t, "POL123456", ids.PolicyNumber)
	assert.Equal(t, "CLM000001", ids.ClaimID)
}

func TestApply_Idempotent(t *testing.T) {
	text := "User: POL123456\nBilling Agent: found CUST00001"

	var once models.Identifiers
	Apply(&once, text)

	twice := once
	filled := Apply(&twice, text)

	assert.Empty(t, filled)
	assert.Equal(t, once, twice)
}
