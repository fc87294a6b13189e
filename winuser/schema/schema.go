// Package schema describes the user resource to a DSC host: the JSON schema
// of its instances, the resource manifest, and the exit codes.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/invopop/jsonschema"
	validator "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/steelcutops/winuser/winuser/usermanager"
)

// ErrInvalidInput indicates the instance JSON could not be accepted.
var ErrInvalidInput = errors.New("invalid input")

const (
	ResourceType = "Steelcut.Windows/User"
	Description  = "Manage local users in computer management."
	SchemaID     = "https://steelcutops.github.io/winuser/schemas/user.json"
)

// Schema returns the schema of a user instance, reflected from
// usermanager.User.
func Schema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		ExpandedStruct: true,
		DoNotReference: true,
	}
	s := r.Reflect(&usermanager.User{})
	s.ID = SchemaID
	s.Title = ResourceType
	s.Description = Description
	if exist, ok := s.Properties.Get("_exist"); ok {
		exist.ReadOnly = true
	}
	return s
}

var compiled = sync.OnceValues(func() (*validator.Schema, error) {
	data, err := json.Marshal(Schema())
	if err != nil {
		return nil, err
	}
	return validator.CompileString(SchemaID, string(data))
})

// Decode parses one resource instance and validates it against Schema.
func Decode(data []byte) (usermanager.User, error) {
	var doc any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return usermanager.User{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return usermanager.User{}, fmt.Errorf("%w: unexpected data after the instance", ErrInvalidInput)
	}

	sch, err := compiled()
	if err != nil {
		return usermanager.User{}, fmt.Errorf("compile user schema: %w", err)
	}
	if err := sch.Validate(doc); err != nil {
		return usermanager.User{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var user usermanager.User
	if err := json.Unmarshal(data, &user); err != nil {
		return usermanager.User{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return user, nil
}
