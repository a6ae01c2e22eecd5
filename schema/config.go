// Package schema validates the engine's five input document kinds —
// Manifest, DivisionRegistry, ParameterSet, BallotTally, and the optional
// standalone Adjacency document — against embedded
// JSON Schema (Draft 2020-12) documents, grounded on the teacher's
// core/types/validation.go Validator. Security controls (schema size/depth
// limits, a secure $ref loader restricted to the file scheme) are carried
// over unchanged in spirit: this engine never fetches a schema or a $ref
// over the network.
package schema

// Config controls validation behavior and security, mirroring the
// teacher's ValidationConfig.
type Config struct {
	MaxSchemaSize  int
	MaxSchemaDepth int

	AllowRemoteRef bool
	AllowedSchemes []string

	EnableCache  bool
	MaxCacheSize int

	AssertFormat bool
}

// DefaultConfig returns secure defaults: no remote refs, only the file
// scheme allowed, a 1 MiB / 10-level ceiling on the schema documents
// themselves, and validator caching enabled.
func DefaultConfig() *Config {
	return &Config{
		MaxSchemaSize:  1024 * 1024,
		MaxSchemaDepth: 10,
		AllowRemoteRef: false,
		AllowedSchemes: []string{"file"},
		EnableCache:    true,
		MaxCacheSize:   16,
		AssertFormat:   true,
	}
}
