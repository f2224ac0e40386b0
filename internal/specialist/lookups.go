package specialist

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ShayCichocki/coverdesk/internal/api"
	"github.com/ShayCichocki/coverdesk/internal/state"
	"github.com/ShayCichocki/coverdesk/pkg/models"
)

// lookupArgs is the union of the arguments any lookup accepts.
type lookupArgs struct {
	PolicyNumber string `json:"policy_number"`
	CustomerID   string `json:"customer_id"`
	ClaimID      string `json:"claim_id"`
}

// lookupSpecs describes each lookup to the model.
var lookupSpecs = map[string]api.ToolSpec{
	LookupPolicyDetails: {
		Name:        LookupPolicyDetails,
		Description: "Retrieve policy type, status, premium, billing frequency and holder for a policy.",
		Properties:  map[string]interface{}{"policy_number": api.StringArg("Policy number, e.g. POL000001")},
		Required:    []string{"policy_number"},
	},
	LookupAutoPolicyDetails: {
		Name:        LookupAutoPolicyDetails,
		Description: "Retrieve vehicle, liability limit, deductibles and optional coverages of an auto policy.",
		Properties:  map[string]interface{}{"policy_number": api.StringArg("Policy number, e.g. POL000001")},
		Required:    []string{"policy_number"},
	},
	LookupBillingInfo: {
		Name:        LookupBillingInfo,
		Description: "Retrieve premium, billing frequency and billing statements with due dates and amounts.",
		Properties: map[string]interface{}{
			"policy_number": api.StringArg("Policy number, e.g. POL000001"),
			"customer_id":   api.StringArg("Customer ID, e.g. CUST00001"),
		},
	},
	LookupPaymentHistory: {
		Name:        LookupPaymentHistory,
		Description: "Fetch recent payments made on a policy.",
		Properties:  map[string]interface{}{"policy_number": api.StringArg("Policy number, e.g. POL000001")},
		Required:    []string{"policy_number"},
	},
	LookupClaimStatus: {
		Name:        LookupClaimStatus,
		Description: "Retrieve the status, date, incident type and estimated loss of a claim.",
		Properties: map[string]interface{}{
			"claim_id":      api.StringArg("Claim ID, e.g. CLM000001"),
			"policy_number": api.StringArg("Optional policy number the claim belongs to"),
		},
		Required: []string{"claim_id"},
	},
}

// ToolSpecs returns the tool definitions for the entry's allowed lookups.
func (e Entry) ToolSpecs() []api.ToolSpec {
	out := make([]api.ToolSpec, 0, len(e.Lookups))
	for _, name := range e.Lookups {
		if spec, ok := lookupSpecs[name]; ok {
			out = append(out, spec)
		}
	}
	return out
}

// LookupExecutor runs record lookups on behalf of one specialist. Calls to
// lookups the specialist is not allowed to make are rejected, and missing
// arguments are filled from the identifiers known to the conversation.
type LookupExecutor struct {
	store RecordStore
	entry Entry
	ids   models.Identifiers
}

// RecordStore is the subset of the record database the lookups need.
type RecordStore = state.RecordStore

// NewLookupExecutor creates an executor for entry.
func NewLookupExecutor(store RecordStore, entry Entry, ids models.Identifiers) *LookupExecutor {
	return &LookupExecutor{store: store, entry: entry, ids: ids}
}

// Execute implements api.ToolExecutor.
func (x *LookupExecutor) Execute(ctx context.Context, name string, input json.RawMessage) api.ToolResult {
	if _, known := lookupSpecs[name]; !known {
		return api.ErrorResult(fmt.Errorf("tool '%s' not implemented", name))
	}
	if !x.entry.Allows(name) {
		return api.ErrorResult(fmt.Errorf("%s may not call %s", x.entry.Name, name))
	}
	if err := ctx.Err(); err != nil {
		return api.ErrorResult(err)
	}

	var args lookupArgs
	if len(input) > 0 {
		if err := json.Unmarshal(input, &args); err != nil {
			return api.ErrorResult(fmt.Errorf("invalid arguments: %w", err))
		}
	}
	if args.PolicyNumber == "" {
		args.PolicyNumber = x.ids.PolicyNumber
	}
	if args.CustomerID == "" {
		args.CustomerID = x.ids.CustomerID
	}
	if args.ClaimID == "" {
		args.ClaimID = x.ids.ClaimID
	}

	result, err := x.run(name, args)
	if err != nil {
		return api.ErrorResult(err)
	}
	return api.JSONResult(result)
}

func (x *LookupExecutor) run(name string, args lookupArgs) (any, error) {
	switch name {
	case LookupPolicyDetails:
		if args.PolicyNumber == "" {
			return nil, fmt.Errorf("policy_number is required")
		}
		return x.store.GetPolicyDetails(args.PolicyNumber)
	case LookupAutoPolicyDetails:
		if args.PolicyNumber == "" {
			return nil, fmt.Errorf("policy_number is required")
		}
		return x.store.GetAutoPolicyDetails(args.PolicyNumber)
	case LookupBillingInfo:
		return x.store.GetBillingInfo(args.PolicyNumber, args.CustomerID)
	case LookupPaymentHistory:
		if args.PolicyNumber == "" {
			return nil, fmt.Errorf("policy_number is required")
		}
		return x.store.GetPaymentHistory(args.PolicyNumber)
	case LookupClaimStatus:
		if args.ClaimID == "" {
			return nil, fmt.Errorf("claim_id is required")
		}
		return x.store.GetClaimStatus(args.ClaimID, args.PolicyNumber)
	default:
		return nil, fmt.Errorf("tool '%s' not implemented", name)
	}
}
