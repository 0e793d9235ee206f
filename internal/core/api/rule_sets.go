package api

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sort"
	"time"

	"github.com/solatis/strbounds/internal/types"
)

// createRuleSet stores a named rule set for the client.
func (s *Service) createRuleSet(ctx context.Context, clientID types.ClientID, req CreateRuleSetRequest) (RuleSetInfo, error) {
	kind, err := types.ParseRuleSetKind(req.Kind)
	if err != nil {
		return RuleSetInfo{}, err
	}
	if len(req.Rule) == 0 {
		return RuleSetInfo{}, fmt.Errorf("%w: rule required", errInvalidRequest)
	}
	node, err := s.parseRule(req.Rule)
	if err != nil {
		return RuleSetInfo{}, err
	}

	loaded, err := s.catalog.Create(ctx, clientID, req.Name, kind, node)
	if err != nil {
		return RuleSetInfo{}, err
	}
	return ruleSetInfo(loaded.RuleSet), nil
}

// listRuleSets returns the client's rule sets ordered by name.
// ETAG-based caching lets clients skip unchanged listings.
// Returns up to types.MaxRuleSetsPerClient rule sets.
func (s *Service) listRuleSets(ctx context.Context, clientID types.ClientID, req ListRuleSetsRequest) (ListRuleSetsResponse, error) {
	sets, err := s.catalog.List(ctx, clientID)
	if err != nil {
		return ListRuleSetsResponse{}, err
	}

	etag := computeETAG(sets)
	if req.IfNoneMatch != "" && req.IfNoneMatch == etag {
		return ListRuleSetsResponse{RuleSets: []RuleSetInfo{}, ETag: etag, NotModified: true}, nil
	}

	infos := make([]RuleSetInfo, len(sets))
	for i, rs := range sets {
		infos[i] = ruleSetInfo(rs)
	}
	return ListRuleSetsResponse{RuleSets: infos, ETag: etag}, nil
}

// deleteRuleSet removes a rule set addressed by ID or name.
func (s *Service) deleteRuleSet(ctx context.Context, clientID types.ClientID, req DeleteRuleSetRequest) (DeleteRuleSetResponse, error) {
	if (req.ID == "") == (req.Name == "") {
		return DeleteRuleSetResponse{}, fmt.Errorf("%w: want exactly one of id, name", errInvalidRequest)
	}

	var id types.RuleSetID
	if req.ID != "" {
		parsed, err := types.ParseRuleSetID(req.ID)
		if err != nil {
			return DeleteRuleSetResponse{}, err
		}
		id = parsed
	} else {
		rs, err := s.catalog.GetByName(ctx, clientID, req.Name)
		if err != nil {
			return DeleteRuleSetResponse{}, err
		}
		id = rs.ID
	}

	if err := s.catalog.Delete(ctx, clientID, id); err != nil {
		return DeleteRuleSetResponse{}, err
	}
	return DeleteRuleSetResponse{ID: string(id)}, nil
}

func ruleSetInfo(rs types.RuleSet) RuleSetInfo {
	return RuleSetInfo{
		ID:        string(rs.ID),
		Name:      rs.Name,
		Kind:      string(rs.Kind),
		Rule:      rs.Expression,
		CreatedAt: rs.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// computeETAG hashes the sorted id:created_at pairs. The same rule sets
// always produce the same ETAG.
func computeETAG(sets []types.RuleSet) string {
	h := sha256.New()
	ids := make([]string, 0, len(sets))
	for _, rs := range sets {
		ids = append(ids, string(rs.ID)+":"+rs.CreatedAt.UTC().Format(time.RFC3339Nano))
	}
	sort.Strings(ids)
	for _, id := range ids {
		h.Write([]byte(id))
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
