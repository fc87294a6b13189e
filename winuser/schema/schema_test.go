package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steelcutops/winuser/winuser/usermanager"
)

func TestDecode(t *testing.T) {
	user, err := Decode([]byte(`{"userName":"alice","fullName":"Alice","disabled":false,"passwordChangeRequired":true}`))
	require.NoError(t, err)

	assert.Equal(t, "alice", user.UserName)
	require.NotNil(t, user.FullName)
	assert.Equal(t, "Alice", *user.FullName)
	require.NotNil(t, user.Disabled)
	assert.False(t, *user.Disabled)
	assert.True(t, user.RequiresPasswordChange())
	assert.Nil(t, user.Description)
	assert.Nil(t, user.PasswordNeverExpires)
}

func TestDecodeRejectsInvalidInput(t *testing.T) {
	tests := map[string]string{
		"malformed":      `{"userName":`,
		"missing name":   `{"fullName":"Alice"}`,
		"empty name":     `{"userName":""}`,
		"unknown field":  `{"userName":"alice","groups":["Users"]}`,
		"wrong type":     `{"userName":"alice","disabled":"yes"}`,
		"trailing data":  `{"userName":"alice"} {"userName":"bob"}`,
		"empty document": ``,
		"null document":  `null`,
		"not an object":  `["alice"]`,
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(input))
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestSchemaDocument(t *testing.T) {
	doc := Schema()

	assert.Equal(t, []string{"userName"}, doc.Required)
	assert.Equal(t, ResourceType, doc.Title)

	password, ok := doc.Properties.Get("password")
	require.True(t, ok)
	assert.True(t, password.WriteOnly)
	assert.Equal(t, "string", password.Type)

	exist, ok := doc.Properties.Get("_exist")
	require.True(t, ok)
	assert.True(t, exist.ReadOnly)
	assert.Equal(t, "boolean", exist.Type)

	userName, ok := doc.Properties.Get("userName")
	require.True(t, ok)
	require.NotNil(t, userName.MinLength)
	assert.EqualValues(t, 1, *userName.MinLength)

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, false, raw["additionalProperties"])
	assert.Equal(t, SchemaID, raw["$id"])
	assert.Equal(t, "https://json-schema.org/draft/2020-12/schema", raw["$schema"])
	assert.NotContains(t, raw, "$defs")

	// Every property of the descriptor is described.
	data, err = json.Marshal(usermanager.User{
		UserName:                 "x",
		FullName:                 new(string),
		Description:              new(string),
		Password:                 new(string),
		Disabled:                 new(bool),
		PasswordNeverExpires:     new(bool),
		PasswordChangeRequired:   new(bool),
		PasswordChangeNotAllowed: new(bool),
		Exist:                    new(bool),
	})
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.Equal(t, len(fields), doc.Properties.Len())
	for field := range fields {
		_, ok := doc.Properties.Get(field)
		assert.True(t, ok, field)
	}
}

func TestDecodeAcceptsReadState(t *testing.T) {
	user, err := Decode([]byte(`{"userName":"alice","_exist":false}`))
	require.NoError(t, err)
	require.NotNil(t, user.Exist)
	assert.False(t, *user.Exist)
}

func TestManifest(t *testing.T) {
	m := NewManifest("winuser.exe", "1.2.3")

	data, err := json.Marshal(m)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, ResourceType, raw["type"])
	assert.Equal(t, "1.2.3", raw["version"])
	assert.Contains(t, raw, "$schema")

	get := raw["get"].(map[string]any)
	assert.Equal(t, "winuser.exe", get["executable"])
	assert.Equal(t, []any{"config", "get", map[string]any{"jsonInputArg": "--input", "mandatory": true}}, get["args"])

	set := raw["set"].(map[string]any)
	assert.Equal(t, "state", set["return"])
	assert.Equal(t, false, set["implementsPretest"])

	export := raw["export"].(map[string]any)
	assert.Equal(t, []any{"config", "export"}, export["args"])

	codes := raw["exitCodes"].(map[string]any)
	assert.Len(t, codes, 8)
	assert.Equal(t, "User not found", codes["3"])

	embedded := raw["schema"].(map[string]any)["embedded"].(map[string]any)
	assert.Equal(t, "object", embedded["type"])
}

func TestExitCodeFor(t *testing.T) {
	notFound := fmt.Errorf("wrapped: %w", &usermanager.Error{Op: "delete", UserName: "a", Kind: usermanager.KindNotFound, Err: usermanager.ErrNotFound})
	lookup := &usermanager.Error{Op: "retrieve", UserName: "a", Kind: usermanager.KindLookupFailure, Err: errors.New("access denied")}
	failure := &usermanager.Error{Op: "create", UserName: "a", Err: errors.New("boom")}
	invalid := fmt.Errorf("%w: userName is required", ErrInvalidInput)

	tests := []struct {
		op   string
		err  error
		want ExitCode
	}{
		{"get", nil, ExitSuccess},
		{"get", invalid, ExitInvalidInput},
		{"set", invalid, ExitInvalidInput},
		{"get", lookup, ExitGetFailed},
		{"set", failure, ExitSetFailed},
		{"set", notFound, ExitNotFound},
		{"delete", notFound, ExitNotFound},
		{"delete", failure, ExitDeleteFailed},
		{"export", failure, ExitExportFailed},
		{"export", notFound, ExitExportFailed},
		{"schema", failure, ExitUnexpected},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%v", tt.op, tt.err), func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCodeFor(tt.op, tt.err))
		})
	}
}

func TestExitCodeString(t *testing.T) {
	assert.Equal(t, "Invalid input", ExitInvalidInput.String())
	assert.Equal(t, "exit code 42", ExitCode(42).String())
}
