package models

import "strings"

// IdentifierKind names one of the identifier slots.
type IdentifierKind string

const (
	KindPolicyNumber IdentifierKind = "policy_number"
	KindCustomerID   IdentifierKind = "customer_id"
	KindClaimID      IdentifierKind = "claim_id"
)

// Identifiers holds the IDs discovered during a conversation.
// Each slot is written at most once; later values never replace earlier ones.
type Identifiers struct {
	PolicyNumber string `json:"policy_number,omitempty"`
	CustomerID   string `json:"customer_id,omitempty"`
	ClaimID      string `json:"claim_id,omitempty"`
}

// Fill sets the slot for kind if it is empty.
// It returns true only when the slot was newly set.
func (ids *Identifiers) Fill(kind IdentifierKind, value string) bool {
	if value == "" {
		return false
	}
	slot := ids.slot(kind)
	if slot == nil || *slot != "" {
		return false
	}
	*slot = value
	return true
}

// Get returns the value of the slot for kind.
func (ids Identifiers) Get(kind IdentifierKind) string {
	switch kind {
	case KindPolicyNumber:
		return ids.PolicyNumber
	case KindCustomerID:
		return ids.CustomerID
	case KindClaimID:
		return ids.ClaimID
	default:
		return ""
	}
}

// HasPolicy reports whether the policy number is known.
func (ids Identifiers) HasPolicy() bool { return ids.PolicyNumber != "" }

// HasClaim reports whether the claim ID is known.
func (ids Identifiers) HasClaim() bool { return ids.ClaimID != "" }

// IsEmpty reports whether no identifier is known.
func (ids Identifiers) IsEmpty() bool {
	return ids == Identifiers{}
}

// String lists the known identifiers as "kind=value" pairs.
func (ids Identifiers) String() string {
	var parts []string
	for _, k := range []IdentifierKind{KindPolicyNumber, KindCustomerID, KindClaimID} {
		if v := ids.Get(k); v != "" {
			parts = append(parts, string(k)+"="+v)
		}
	}
	return strings.Join(parts, " ")
}

func (ids *Identifiers) slot(kind IdentifierKind) *string {
	switch kind {
	case KindPolicyNumber:
		return &ids.PolicyNumber
	case KindCustomerID:
		return &ids.CustomerID
	case KindClaimID:
		return &ids.ClaimID
	default:
		return nil
	}
}
