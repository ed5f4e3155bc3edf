package valuation

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// ValidateSnapshot checks serialized JSON against the embedded #Request schema.
// A snapshot is well-formed when it is a closed #Request with at least one item.
func ValidateSnapshot(data []byte) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile snapshot schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Request"))

	value := ctx.CompileBytes(data, cue.Filename("snapshot.json"))
	if err := value.Err(); err != nil {
		return fmt.Errorf("parse snapshot: %w", err)
	}

	if err := def.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("snapshot does not match schema: %w", err)
	}
	return nil
}

// DecodeSnapshot validates and decodes a persisted draft.
func DecodeSnapshot(data []byte) (Request, error) {
	if err := ValidateSnapshot(data); err != nil {
		return Request{}, err
	}
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return Request{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if err := req.Validate(); err != nil {
		return Request{}, err
	}
	return req, nil
}

// EncodeSnapshot serializes a draft for persistence.
func EncodeSnapshot(req Request) ([]byte, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// ReadRequestFile parses a draft from a YAML or JSON file.
// Item ids may be omitted; callers assign them before use.
func ReadRequestFile(path string) (Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Request{}, fmt.Errorf("read request file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml", ".json":
	default:
		return Request{}, fmt.Errorf("unsupported request file extension %q (want .yaml, .yml or .json)", ext)
	}

	// YAML 1.2 is a superset of JSON, so one decoder serves both formats.
	var req Request
	if err := yaml.Unmarshal(data, &req); err != nil {
		return Request{}, fmt.Errorf("parse request file %s: %w", filepath.Base(path), err)
	}
	if len(req.Items) == 0 {
		return Request{}, &ValidationError{Message: MinimumItemsMessage}
	}
	return req, nil
}
