package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// Requests and responses travel as google.protobuf.Struct values. The Go
// types below fix their JSON shape; unknown request keys are rejected.

// FilterRequest selects rules and candidates. Exactly one of Rule,
// RuleSetID and RuleSetName is set. Kind is all or any; when empty, an
// inline rule uses all and a stored rule set its own kind.
type FilterRequest struct {
	Rule        json.RawMessage `json:"rule,omitempty"`
	RuleSetID   string          `json:"rule_set_id,omitempty"`
	RuleSetName string          `json:"rule_set_name,omitempty"`
	Kind        string          `json:"kind,omitempty"`
	Invert      bool            `json:"invert,omitempty"`
	Candidates  []string        `json:"candidates"`
}

// FilterResponse lists the selected candidates in input order with their
// positions in the request.
type FilterResponse struct {
	Matches []string `json:"matches"`
	Indices []int    `json:"indices"`
}

// CreateRuleSetRequest stores Rule (a JSON rule definition) under Name.
type CreateRuleSetRequest struct {
	Name string          `json:"name"`
	Kind string          `json:"kind,omitempty"`
	Rule json.RawMessage `json:"rule"`
}

// RuleSetInfo describes a stored rule set.
type RuleSetInfo struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Kind      string          `json:"kind"`
	Rule      json.RawMessage `json:"rule"`
	CreatedAt string          `json:"created_at"`
}

// ListRuleSetsRequest may carry the ETag of a previous listing. A match
// returns NotModified without rule sets.
type ListRuleSetsRequest struct {
	IfNoneMatch string `json:"if_none_match,omitempty"`
}

type ListRuleSetsResponse struct {
	RuleSets    []RuleSetInfo `json:"rule_sets"`
	ETag        string        `json:"etag"`
	NotModified bool          `json:"not_modified,omitempty"`
}

// DeleteRuleSetRequest addresses a rule set by ID or by Name.
type DeleteRuleSetRequest struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

type DeleteRuleSetResponse struct {
	ID string `json:"id"`
}

// toStruct encodes v as a Struct through its JSON form.
func toStruct(v interface{}) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	return out, nil
}

// fromStruct decodes s into v. A nil Struct decodes as an empty object.
func fromStruct(s *structpb.Struct, v interface{}) error {
	data := []byte("{}")
	if s != nil {
		var err error
		if data, err = protojson.Marshal(s); err != nil {
			return fmt.Errorf("failed to decode message: %w", err)
		}
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("failed to decode message: %w", err)
	}
	return nil
}
