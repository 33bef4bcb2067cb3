package events

import "github.com/invopop/jsonschema"

// WireSchema returns the JSON schema of the inbound wire message format.
//
// Producers can validate their emitted payloads against it without importing
// anything beyond this package.
func WireSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{DoNotReference: true}
	return reflector.Reflect(&wireMessage{})
}
