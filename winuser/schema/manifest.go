package schema

import (
	"github.com/invopop/jsonschema"
)

// Manifest is a DSC v3 resource manifest.
type Manifest struct {
	SchemaURI   string            `json:"$schema"`
	Type        string            `json:"type"`
	Version     string            `json:"version"`
	Description string            `json:"description"`
	Tags        []string          `json:"tags"`
	Get         Method            `json:"get"`
	Set         SetMethod         `json:"set"`
	Delete      Method            `json:"delete"`
	Export      Method            `json:"export"`
	ExitCodes   map[string]string `json:"exitCodes"`
	Schema      EmbeddedSchema    `json:"schema"`
}

type Method struct {
	Executable string `json:"executable"`
	Args       []any  `json:"args"`
}

type SetMethod struct {
	Method
	ImplementsPretest bool   `json:"implementsPretest"`
	Return            string `json:"return"`
}

// JSONInputArg tells the host to pass the instance JSON as the value of Arg.
type JSONInputArg struct {
	Arg       string `json:"jsonInputArg"`
	Mandatory bool   `json:"mandatory"`
}

type EmbeddedSchema struct {
	Embedded *jsonschema.Schema `json:"embedded"`
}

// NewManifest describes the resource invoked through executable.
func NewManifest(executable, version string) Manifest {
	input := JSONInputArg{Arg: "--input", Mandatory: true}
	return Manifest{
		SchemaURI:   "https://aka.ms/dsc/schemas/v3/bundled/resource/manifest.json",
		Type:        ResourceType,
		Version:     version,
		Description: Description,
		Tags:        []string{"Windows"},
		Get:         Method{Executable: executable, Args: []any{"config", "get", input}},
		Set: SetMethod{
			Method: Method{Executable: executable, Args: []any{"config", "set", input}},
			Return: "state",
		},
		Delete:    Method{Executable: executable, Args: []any{"config", "delete", input}},
		Export:    Method{Executable: executable, Args: []any{"config", "export"}},
		ExitCodes: ExitCodes(),
		Schema:    EmbeddedSchema{Embedded: Schema()},
	}
}
