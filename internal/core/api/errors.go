package api

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/solatis/strbounds/internal/core/catalog"
	"github.com/solatis/strbounds/internal/types"
	"github.com/solatis/strbounds/pkg/ruledef"
	"github.com/solatis/strbounds/pkg/rules"
)

// Auth errors are mapped in the auth package interceptor.
// Storage errors map to UNAVAILABLE.
// Validation errors map to INVALID_ARGUMENT.
// Context timeouts map to DEADLINE_EXCEEDED.

// errInvalidRequest marks malformed requests that have no sentinel of
// their own, such as undecodable rule definitions.
var errInvalidRequest = errors.New("invalid request")

var invalidArgument = []error{
	errInvalidRequest,
	types.ErrInvalidRuleSetName,
	types.ErrInvalidRuleSetID,
	types.ErrInvalidKind,
	types.ErrExpressionTooLarge,
	types.ErrBatchTooLarge,
	types.ErrCandidateTooLarge,
	rules.ErrRuleTooDeep,
	rules.ErrTooManyConditions,
	rules.ErrInvalidCaseMode,
	ruledef.ErrInvalidDefinition,
}

// toStatus maps a handler error to a gRPC status.
func toStatus(err error) *status.Status {
	if st, ok := status.FromError(err); ok {
		return st
	}

	code := codes.Internal
	switch {
	case errors.Is(err, types.ErrRuleSetNotFound):
		code = codes.NotFound
	case errors.Is(err, types.ErrDuplicateRuleSetName):
		code = codes.AlreadyExists
	case errors.Is(err, catalog.ErrStorage):
		code = codes.Unavailable
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	default:
		for _, target := range invalidArgument {
			if errors.Is(err, target) {
				code = codes.InvalidArgument
				break
			}
		}
	}
	return status.New(code, err.Error())
}
