package errors

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUnsupportedValueKind(t *testing.T) {
	err := NewUnsupportedValueKind(3.5)

	assert.Equal(t, ErrUnsupportedValueKind, err.Code)
	assert.Equal(t, CategoryLiteral, err.Category)
	assert.Equal(t, SeverityError, err.Severity)
	assert.Contains(t, err.Message, "float64")
	assert.Equal(t, "3.5", err.Subject)
	assert.NotEmpty(t, err.Suggestion)
}

func TestHasCode(t *testing.T) {
	base := NewInconsistentMetadata("User", "duplicate property \"id\"")
	wrapped := fmt.Errorf("exporting User: %w", base)

	tests := []struct {
		name string
		err  error
		code ErrorCode
		want bool
	}{
		{"direct", base, ErrInconsistentMetadata, true},
		{"wrapped", wrapped, ErrInconsistentMetadata, true},
		{"other code", wrapped, ErrUnsupportedValueKind, false},
		{"plain error", fmt.Errorf("boom"), ErrInconsistentMetadata, false},
		{"nil", nil, ErrInconsistentMetadata, false},
		{"list member", ErrorList{NewClassNotFound("A"), base}, ErrInconsistentMetadata, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasCode(tt.err, tt.code))
		})
	}
}

func TestFormatCompact(t *testing.T) {
	err := NewProgramSyntax(12, "unexpected token \"}\"")
	assert.Equal(t, `line 12: syntax error: unexpected token "}" [EXP003]`, err.Error())

	err = NewClassNotFound("Acme\\User")
	assert.Equal(t, `class metadata for "Acme\\User" not found [EXP005]`, err.Error())
}

func TestFormatError(t *testing.T) {
	err := NewSnapshotInvalid("users.yml", "float scalars are not supported").
		WithDetail("properties[2].length")

	out := err.Format()
	assert.Contains(t, out, "Snapshot Error [EXP006]")
	assert.Contains(t, out, "invalid snapshot users.yml")
	assert.Contains(t, out, "Detail:  properties[2].length")
}

func TestErrorList(t *testing.T) {
	var empty ErrorList
	assert.NoError(t, empty.Err())
	assert.Equal(t, "no errors", empty.Error())

	list := ErrorList{
		NewInconsistentMetadata("User", "a"),
		NewInconsistentMetadata("User", "b"),
	}
	require.Error(t, list.Err())
	assert.True(t, list.HasErrors())
	assert.True(t, strings.HasPrefix(list.Error(), "2 error(s)"))

	js, err := list.ToJSON()
	require.NoError(t, err)

	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(js), &decoded))
	assert.Len(t, decoded, 2)
	assert.Equal(t, "EXP002", decoded[0]["code"])
}
