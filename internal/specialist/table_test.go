package specialist

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShayCichocki/coverdesk/pkg/models"
)

func reply(text string) Specialist {
	return HandlerFunc(func(ctx context.Context, req Request) (string, error) {
		return text, nil
	})
}

func TestNewTable_RequiresGeneralHelp(t *testing.T) {
	_, err := NewTable(map[models.AgentName]Specialist{models.AgentBilling: reply("x")})
	assert.Error(t, err)
}

func TestTable_Resolve(t *testing.T) {
	table, err := NewTable(map[models.AgentName]Specialist{
		models.AgentGeneralHelp: reply("general"),
		models.AgentBilling:     reply("billing"),
	})
	require.NoError(t, err)

	tests := []struct {
		name models.AgentName
		want models.AgentName
		role models.Role
	}{
		{models.AgentBilling, models.AgentBilling, models.RoleBilling},
		{models.AgentGeneralHelp, models.AgentGeneralHelp, models.RoleGeneralHelp},
		{"weather_agent", models.AgentGeneralHelp, models.RoleGeneralHelp},
		// Registered definition without a handler.
		{models.AgentClaims, models.AgentGeneralHelp, models.RoleGeneralHelp},
	}
	for _, tt := range tests {
		e := table.Resolve(tt.name)
		assert.Equal(t, tt.want, e.Name, tt.name)
		assert.Equal(t, tt.role, e.Role, tt.name)
	}
}

func TestTable_Dispatch(t *testing.T) {
	var got Request
	table, err := NewTable(map[models.AgentName]Specialist{
		models.AgentGeneralHelp: reply("general"),
		models.AgentPolicy: HandlerFunc(func(ctx context.Context, req Request) (string, error) {
			got = req
			return "Your deductible is $500.", nil
		}),
		models.AgentClaims: HandlerFunc(func(ctx context.Context, req Request) (string, error) {
			return "", errors.New("database unavailable")
		}),
	})
	require.NoError(t, err)

	req := Request{Task: "Retrieve deductible for POL000001", Identifiers: models.Identifiers{PolicyNumber: "POL000001"}}
	e, text, err := table.Dispatch(context.Background(), models.AgentPolicy, req)
	require.NoError(t, err)
	assert.Equal(t, models.RolePolicy, e.Role)
	assert.Equal(t, "Your deductible is $500.", text)
	assert.Equal(t, req, got)

	e, _, err = table.Dispatch(context.Background(), models.AgentClaims, Request{})
	require.Error(t, err)
	assert.Equal(t, models.AgentClaims, e.Name)
	assert.Contains(t, err.Error(), "claims_agent: database unavailable")
}

func TestEntry_Allows(t *testing.T) {
	def, ok := DefinitionFor(models.AgentBilling)
	require.True(t, ok)
	e := Entry{Definition: def}

	assert.True(t, e.Allows(LookupBillingInfo))
	assert.True(t, e.Allows(LookupPaymentHistory))
	assert.False(t, e.Allows(LookupClaimStatus))

	names := make([]string, 0)
	for _, s := range e.ToolSpecs() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{LookupBillingInfo, LookupPaymentHistory}, names)
}

func TestDefinitionFor_Unknown(t *testing.T) {
	_, ok := DefinitionFor("end")
	assert.False(t, ok)
}

func TestAgentOptions(t *testing.T) {
	opts := AgentOptions()
	require.Len(t, opts, len(Definitions))
	for i, o := range opts {
		assert.Equal(t, Definitions[i].Name, o.Name)
		assert.NotEmpty(t, o.Description)
	}
}
