package schema

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/mod/semver"

	"github.com/vm-engine/engine/vmerrors"
)

// Validator compiles and validates documents against the embedded schemas,
// mirroring the teacher's Validator (core/types/validation.go): same
// security controls, same cache-by-hash strategy, same secure URL loader.
type Validator struct {
	config   *Config
	cache    *compiledCache
	compiled map[DocKind]*jsonschema.Schema
}

// NewValidator builds a Validator and pre-compiles every embedded schema
// eagerly so that a malformed embedded schema fails at construction, not
// on the first document of that kind.
func NewValidator(config *Config) (*Validator, error) {
	if config == nil {
		config = DefaultConfig()
	}
	v := &Validator{config: config}
	if config.EnableCache {
		v.cache = newCompiledCache(config.MaxCacheSize)
	}
	v.compiled = make(map[DocKind]*jsonschema.Schema, len(schemaText))
	for kind, text := range schemaText {
		compiled, err := v.compile(kind, []byte(text))
		if err != nil {
			return nil, err
		}
		v.compiled[kind] = compiled
	}
	return v, nil
}

// Validate checks doc (already decoded into Go values by canon.DecodeStrict)
// against the schema for kind.
func (v *Validator) Validate(kind DocKind, doc any) error {
	s, ok := v.compiled[kind]
	if !ok {
		return vmerrors.New(vmerrors.KindSchema, "Schema.UnknownKind", fmt.Sprintf("no schema registered for document kind %q", kind))
	}
	if err := s.Validate(doc); err != nil {
		if ve, ok := err.(*jsonschema.ValidationError); ok {
			return vmerrors.New(vmerrors.KindSchema, "Schema.ValidationFailed", ve.Error()).WithPointer(schemaPointer(ve))
		}
		return vmerrors.Wrap(vmerrors.KindSchema, "Schema.ValidationFailed", "schema validation failed", err)
	}
	return nil
}

func schemaPointer(ve *jsonschema.ValidationError) string {
	if ve.InstanceLocation == "" {
		return "/"
	}
	return "/" + strings.TrimPrefix(ve.InstanceLocation, "/")
}

func (v *Validator) compile(kind DocKind, text []byte) (*jsonschema.Schema, error) {
	if len(text) > v.config.MaxSchemaSize {
		return nil, vmerrors.New(vmerrors.KindSchema, "Schema.OversizedSchema", fmt.Sprintf("schema %q exceeds max size %d bytes", kind, v.config.MaxSchemaSize))
	}

	var parsed map[string]any
	if err := json.Unmarshal(text, &parsed); err != nil {
		return nil, vmerrors.Wrap(vmerrors.KindSchema, "Schema.MalformedSchema", fmt.Sprintf("schema %q is not valid JSON", kind), err)
	}
	if depth := measureSchemaDepth(parsed); depth > v.config.MaxSchemaDepth {
		return nil, vmerrors.New(vmerrors.KindSchema, "Schema.ExcessiveSchemaDepth", fmt.Sprintf("schema %q nesting depth %d exceeds max %d", kind, depth, v.config.MaxSchemaDepth))
	}

	key := hashSchemaText(text)
	if v.cache != nil {
		if cached, ok := v.cache.get(key); ok {
			return cached, nil
		}
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = v.config.AssertFormat
	if compiler.Formats == nil {
		compiler.Formats = make(map[string]func(interface{}) bool)
	}
	for name, fn := range formatValidators() {
		compiler.Formats[name] = fn
	}
	compiler.LoadURL = v.secureLoader()

	url := fmt.Sprintf("schema://%s.json", kind)
	if err := compiler.AddResource(url, strings.NewReader(string(text))); err != nil {
		return nil, vmerrors.Wrap(vmerrors.KindSchema, "Schema.AddResourceFailed", fmt.Sprintf("failed to register schema %q", kind), err)
	}
	compiled, err := compiler.Compile(url)
	if err != nil {
		return nil, vmerrors.Wrap(vmerrors.KindSchema, "Schema.CompileFailed", fmt.Sprintf("failed to compile schema %q", kind), err)
	}
	if v.cache != nil {
		v.cache.put(key, compiled)
	}
	return compiled, nil
}

// secureLoader rejects any $ref outside the allowed URL schemes — by
// default only "file", never "http"/"https" — so a crafted input document
// can never make schema compilation reach out over the network.
func (v *Validator) secureLoader() func(string) (io.ReadCloser, error) {
	return func(url string) (io.ReadCloser, error) {
		if !v.config.AllowRemoteRef && (strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")) {
			return nil, vmerrors.New(vmerrors.KindContract, "Contract.RemoteRefBlocked", fmt.Sprintf("remote $ref not allowed: %s", url))
		}
		allowed := false
		for _, scheme := range v.config.AllowedSchemes {
			if strings.HasPrefix(url, scheme+"://") || strings.HasPrefix(url, scheme+":") {
				allowed = true
				break
			}
		}
		if !allowed {
			return nil, vmerrors.New(vmerrors.KindContract, "Contract.SchemeNotAllowed", fmt.Sprintf("URL scheme not allowed: %s", url))
		}
		return jsonschema.LoadURL(url)
	}
}

// formatValidators adds the "semver" format the spec's manifest schema
// relies on (manifest.expect.engine_version); the rest of Draft 2020-12's
// standard formats (date-time, uri, ipv4...) are already registered by the
// compiler.
func formatValidators() map[string]func(interface{}) bool {
	return map[string]func(interface{}) bool{
		"semver": func(v interface{}) bool {
			s, ok := v.(string)
			if !ok {
				return true
			}
			if !strings.HasPrefix(s, "v") {
				s = "v" + s
			}
			return semver.IsValid(s)
		},
	}
}

func measureSchemaDepth(schema map[string]any) int {
	return measureDepthAny(schema, 0)
}

func measureDepthAny(obj any, current int) int {
	m, ok := obj.(map[string]any)
	if !ok {
		return current
	}
	max := current
	if props, ok := m["properties"].(map[string]any); ok {
		for _, fieldSchema := range props {
			if d := measureDepthAny(fieldSchema, current+1); d > max {
				max = d
			}
		}
	}
	if items, ok := m["items"]; ok {
		if d := measureDepthAny(items, current+1); d > max {
			max = d
		}
	}
	for _, key := range []string{"allOf", "anyOf", "oneOf"} {
		if arr, ok := m[key].([]any); ok {
			for _, s := range arr {
				if d := measureDepthAny(s, current+1); d > max {
					max = d
				}
			}
		}
	}
	return max
}
