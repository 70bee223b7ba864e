package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_PropertyCreation(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/property_creation.yaml")
	require.NoError(t, err)

	assert.Equal(t, "property_creation", s.Name)
	require.Len(t, s.Steps, 4)
	require.Len(t, s.Steps[0].Mine, 1)
	assert.Equal(t, "deployer", s.Steps[0].Mine[0].Sender)
	assert.Len(t, s.Steps[0].Mine[0].Args, 4)
	require.NotNil(t, s.Steps[0].Expect.Height)
	assert.Equal(t, int64(2), *s.Steps[0].Expect.Height)

	require.NotNil(t, s.Steps[2].ReadOnly)
	assert.Equal(t, "property-tokenizer.get-property-info", s.Steps[2].ReadOnly.Call)
	assert.Len(t, s.Steps[2].Expect.Fields, 4)

	assert.Len(t, s.Assertions, 4)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseScenario_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "unknown field",
			yaml: `
name: x
description: x
step:
  - mine: []
`,
			wantErr: "field step not found",
		},
		{
			name: "missing name",
			yaml: `
description: x
steps:
  - read_only: {call: a.b, sender: deployer}
`,
			wantErr: "name is required",
		},
		{
			name: "missing description",
			yaml: `
name: x
steps:
  - read_only: {call: a.b, sender: deployer}
`,
			wantErr: "description is required",
		},
		{
			name: "no steps",
			yaml: `
name: x
description: x
`,
			wantErr: "steps list is required",
		},
		{
			name: "empty step",
			yaml: `
name: x
description: x
steps:
  - expect: {height: 2}
`,
			wantErr: "one of mine or read_only is required",
		},
		{
			name: "mine and read_only",
			yaml: `
name: x
description: x
steps:
  - mine: [{call: a.b, sender: deployer}]
    read_only: {call: a.c, sender: deployer}
`,
			wantErr: "mutually exclusive",
		},
		{
			name: "malformed call",
			yaml: `
name: x
description: x
steps:
  - read_only: {call: nodot, sender: deployer}
`,
			wantErr: "expected <contract>.<function>",
		},
		{
			name: "missing sender",
			yaml: `
name: x
description: x
steps:
  - mine: [{call: a.b}]
`,
			wantErr: "sender is required",
		},
		{
			name: "read_only with height",
			yaml: `
name: x
description: x
steps:
  - read_only: {call: a.b, sender: deployer}
    expect: {height: 2}
`,
			wantErr: "apply to mine steps",
		},
		{
			name: "mine with fields",
			yaml: `
name: x
description: x
steps:
  - mine: [{call: a.b, sender: deployer}]
    expect: {fields: {x: {uint: 1}}}
`,
			wantErr: "apply to read_only steps",
		},
		{
			name: "receipts disagree with results",
			yaml: `
name: x
description: x
steps:
  - mine: [{call: a.b, sender: deployer}]
    expect:
      receipts: 2
      results: [{ok: {bool: true}}]
`,
			wantErr: "receipts is 2 but 1 results",
		},
		{
			name: "unknown assertion",
			yaml: `
name: x
description: x
steps:
  - read_only: {call: a.b, sender: deployer}
assertions:
  - type: final_state
`,
			wantErr: `unknown assertion type "final_state"`,
		},
		{
			name: "trace_order without calls",
			yaml: `
name: x
description: x
steps:
  - read_only: {call: a.b, sender: deployer}
assertions:
  - type: trace_order
`,
			wantErr: "calls list is required",
		},
		{
			name: "final_height zero",
			yaml: `
name: x
description: x
steps:
  - read_only: {call: a.b, sender: deployer}
assertions:
  - type: final_height
`,
			wantErr: "height must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCallSplit(t *testing.T) {
	contract, function, err := Call{Call: "property-tokenizer.get-property-count"}.Split()
	require.NoError(t, err)
	assert.Equal(t, "property-tokenizer", contract)
	assert.Equal(t, "get-property-count", function)

	for _, bad := range []string{"", ".", "a.", ".b", "ab"} {
		_, _, err := Call{Call: bad}.Split()
		assert.Error(t, err, bad)
	}
}
