package main

import (
	"encoding/json"

	"github.com/urfave/cli/v2"

	"github.com/steelcutops/winuser/winuser/schema"
)

func newSchemaCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Print the JSON schema of a user instance",
		Action: func(c *cli.Context) error {
			return env.writeIndented(schema.Schema())
		},
	}
}

func newManifestCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:  "manifest",
		Usage: "Print the DSC resource manifest",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "executable",
				Usage: "Executable the manifest invokes",
				Value: "winuser",
			},
		},
		Action: func(c *cli.Context) error {
			return env.writeIndented(schema.NewManifest(c.String("executable"), version))
		},
	}
}

func (env *environment) writeIndented(v any) error {
	enc := json.NewEncoder(env.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
