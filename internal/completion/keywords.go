// Package completion decides whether the latest specialist reply answered the
// user, asked for an identifier, or left things open.
package completion

import "strings"

// Keywords is the vocabulary used to read specialist replies.
// All entries are lowercase; replies are lowercased before matching.
type Keywords struct {
	// PolicyRequests are phrases a specialist uses to ask for a policy number.
	PolicyRequests []string

	// ClaimRequests are phrases a specialist uses to ask for a claim ID.
	ClaimRequests []string

	// Facts indicate the reply contains concrete account or claim data.
	Facts []string

	// Requests indicate the reply is still asking for something, or
	// reports that data could not be fetched. Any match blocks Answered.
	Requests []string
}

// DefaultKeywords is the standard vocabulary.
var DefaultKeywords = Keywords{
	PolicyRequests: []string{
		"please provide your policy number",
		"provide your policy number",
		"could you provide your policy number",
		"please provide me with your policy number",
	},

	ClaimRequests: []string{
		"please provide your claim id",
		"provide your claim id",
		"could you provide your claim id",
	},

	Facts: []string{
		"$",
		"premium",
		"coverage",
		"deductible",
		"claim status",
		"approved",
		"denied",
		"pending",
		"amount",
		"balance",
	},

	Requests: []string{
		"please provide",
		"could you provide",
		"can you provide",
		"unable to retrieve",
		"couldn't find",
		"couldn't retrieve",
	},
}

// containsAny returns the first keyword found in text, or "".
func containsAny(text string, keywords []string) string {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return kw
		}
	}
	return ""
}
