package api

import (
	"context"
	"fmt"

	"github.com/solatis/strbounds/internal/core/catalog"
	"github.com/solatis/strbounds/internal/types"
	"github.com/solatis/strbounds/pkg/ruledef"
	"github.com/solatis/strbounds/pkg/rules"
)

// cancelCheckInterval is how many candidates are evaluated between checks
// of the request deadline.
const cancelCheckInterval = 1024

// filter evaluates a batch of candidates against an inline rule or a
// stored rule set.
func (s *Service) filter(ctx context.Context, clientID types.ClientID, req FilterRequest) (FilterResponse, error) {
	// Reject oversized batches before touching storage
	if len(req.Candidates) > s.cfg.MaxBatchSize {
		return FilterResponse{}, fmt.Errorf("%w: %d candidates, maximum %d",
			types.ErrBatchTooLarge, len(req.Candidates), s.cfg.MaxBatchSize)
	}
	for i, c := range req.Candidates {
		if len(c) > types.MaxCandidateLength {
			return FilterResponse{}, fmt.Errorf("%w: candidate %d is %d bytes", types.ErrCandidateTooLarge, i, len(c))
		}
	}

	compiled, kind, err := s.resolve(ctx, clientID, req)
	if err != nil {
		return FilterResponse{}, err
	}

	match := rules.MatchAll
	if kind == types.RuleSetAny {
		match = rules.MatchAny
	}

	resp := FilterResponse{Matches: make([]string, 0), Indices: make([]int, 0)}
	for i, c := range req.Candidates {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return FilterResponse{}, err
			}
		}
		if match(compiled, c) != req.Invert {
			resp.Matches = append(resp.Matches, c)
			resp.Indices = append(resp.Indices, i)
		}
	}

	s.logger.Debug().
		Str("client_id", string(clientID)).
		Int("candidates", len(req.Candidates)).
		Int("matches", len(resp.Matches)).
		Msg("Filter evaluated")
	return resp, nil
}

// resolve returns the compiled rules and the kind that combines their
// top-level items.
func (s *Service) resolve(ctx context.Context, clientID types.ClientID, req FilterRequest) (*rules.Compiled, types.RuleSetKind, error) {
	sources := 0
	for _, set := range []bool{len(req.Rule) > 0, req.RuleSetID != "", req.RuleSetName != ""} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		return nil, "", fmt.Errorf("%w: want exactly one of rule, rule_set_id, rule_set_name", errInvalidRequest)
	}

	if len(req.Rule) > 0 {
		kind, err := types.ParseRuleSetKind(req.Kind)
		if err != nil {
			return nil, "", err
		}
		node, err := s.parseRule(req.Rule)
		if err != nil {
			return nil, "", err
		}
		compiled, err := rules.Compile(node, s.cfg.CompileOptions())
		if err != nil {
			return nil, "", err
		}
		return compiled, kind, nil
	}

	var (
		loaded *catalog.Loaded
		err    error
	)
	if req.RuleSetID != "" {
		id, perr := types.ParseRuleSetID(req.RuleSetID)
		if perr != nil {
			return nil, "", perr
		}
		loaded, err = s.catalog.Compiled(ctx, clientID, id)
	} else {
		loaded, err = s.catalog.CompiledByName(ctx, clientID, req.RuleSetName)
	}
	if err != nil {
		return nil, "", err
	}

	kind := loaded.RuleSet.Kind
	if req.Kind != "" {
		if kind, err = types.ParseRuleSetKind(req.Kind); err != nil {
			return nil, "", err
		}
	}
	return loaded.Rules, kind, nil
}

// parseRule decodes an inline JSON rule definition.
func (s *Service) parseRule(raw []byte) (rules.Node, error) {
	if len(raw) > types.MaxExpressionSize {
		return rules.Node{}, fmt.Errorf("%w: %d bytes", types.ErrExpressionTooLarge, len(raw))
	}
	def, err := ruledef.ParseJSON(raw)
	if err != nil {
		return rules.Node{}, fmt.Errorf("%w: %w", errInvalidRequest, err)
	}
	return def.Node(s.cfg.MaxRuleDepth)
}
