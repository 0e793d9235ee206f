// Package auth provides HMAC-based API key authentication for gRPC services.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/solatis/strbounds/internal/core/db"
	"github.com/solatis/strbounds/internal/logging"
	"github.com/solatis/strbounds/internal/types"
)

// MetadataKey is the gRPC metadata entry carrying the API key.
const MetadataKey = "x-api-key"

// contextKey is a typed key for context values to avoid collisions.
type contextKey string

// clientIDKey is the context key for storing the authenticated client ID.
const clientIDKey = contextKey("client_id")

// healthPrefix marks methods served without authentication.
const healthPrefix = "/grpc.health.v1.Health/"

// Queries defines the database operations needed for authentication.
// Implemented by *db.Queries.
type Queries interface {
	Get(ctx context.Context, name string, dest interface{}, args ...interface{}) error
	Exec(ctx context.Context, name string, args ...interface{}) (sql.Result, error)
	Timestamp(t time.Time) interface{}
}

// Authenticator validates API keys using HMAC-SHA256 signatures.
// Holds in-memory secret map for O(1) lookup and queries for key verification.
type Authenticator struct {
	secrets map[string][]byte
	queries Queries
	logger  zerolog.Logger
}

// NewAuthenticator creates an authenticator with HMAC secrets and query interface.
func NewAuthenticator(secrets map[string][]byte, queries Queries) *Authenticator {
	return &Authenticator{
		secrets: secrets,
		queries: queries,
		logger:  logging.GetLogger("auth"),
	}
}

// Authenticate validates an API key and returns the client it belongs to.
func (a *Authenticator) Authenticate(ctx context.Context, apiKey string) (types.ClientID, error) {
	secretID, _, err := ParseAPIKey(apiKey)
	if err != nil {
		return "", err
	}

	secret, ok := a.secrets[secretID]
	if !ok {
		return "", ErrUnknownKey
	}

	// key_hash is unique, so at most one row matches
	var result struct {
		APIKeyID   string         `db:"api_key_id"`
		ClientID   string         `db:"client_id"`
		RevokedAt  sql.NullString `db:"revoked_at"`
		LastUsedAt sql.NullString `db:"last_used_at"`
	}

	err = a.queries.Get(ctx, "get-api-key-by-hash", &result, KeyHash(secret, apiKey))
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrInvalidKey
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDatabase, err)
	}

	if result.RevokedAt.Valid {
		return "", ErrKeyRevoked
	}

	if shouldUpdateLastUsed(result.LastUsedAt) {
		if _, err := a.queries.Exec(ctx, "update-last-used", a.queries.Timestamp(time.Now()), result.APIKeyID); err != nil {
			a.logger.Warn().Err(err).Str("api_key_id", result.APIKeyID).Msg("Failed to record key use")
		}
	}

	return types.ClientID(result.ClientID), nil
}

// shouldUpdateLastUsed throttles last_used_at writes to one per minute.
func shouldUpdateLastUsed(lastUsed sql.NullString) bool {
	if !lastUsed.Valid {
		return true
	}
	t, err := db.ParseTimestamp(lastUsed.String)
	if err != nil {
		return true
	}
	return time.Since(t) > time.Minute
}

// CreateAPIKey issues a key for clientID and stores its hash. The key is
// signed with the newest secret: secret IDs derive from UUIDv7 and sort by
// creation time. The plaintext key is returned once and never stored.
func (a *Authenticator) CreateAPIKey(ctx context.Context, clientID types.ClientID, name string) (apiKeyID, apiKey string, err error) {
	if len(a.secrets) == 0 {
		return "", "", ErrNoSecrets
	}
	ids := make([]string, 0, len(a.secrets))
	for id := range a.secrets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	secretID := ids[len(ids)-1]

	apiKey, err = GenerateAPIKey(secretID)
	if err != nil {
		return "", "", err
	}
	apiKeyID = types.NewAPIKeyID()

	_, err = a.queries.Exec(ctx, "insert-api-key",
		apiKeyID, string(clientID), name, secretID, KeyHash(a.secrets[secretID], apiKey), a.queries.Timestamp(time.Now()))
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrDatabase, err)
	}

	a.logger.Info().Str("api_key_id", apiKeyID).Str("client_id", string(clientID)).Msg("API key created")
	return apiKeyID, apiKey, nil
}

// Revoke marks a key revoked. Revoking twice returns ErrKeyNotFound.
func (a *Authenticator) Revoke(ctx context.Context, apiKeyID string) error {
	res, err := a.queries.Exec(ctx, "revoke-api-key", a.queries.Timestamp(time.Now()), apiKeyID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDatabase, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDatabase, err)
	}
	if n == 0 {
		return ErrKeyNotFound
	}
	a.logger.Info().Str("api_key_id", apiKeyID).Msg("API key revoked")
	return nil
}

// UnaryInterceptor returns gRPC interceptor that authenticates requests.
// Health checks pass without a key.
func (a *Authenticator) UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if strings.HasPrefix(info.FullMethod, healthPrefix) {
			return handler(ctx, req)
		}

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}

		apiKeys := md.Get(MetadataKey)
		if len(apiKeys) == 0 {
			return nil, status.Error(codes.Unauthenticated, ErrMissingKey.Error())
		}

		clientID, err := a.Authenticate(ctx, apiKeys[0])
		if err != nil {
			a.logger.Debug().Err(err).Str("method", info.FullMethod).Msg("Authentication failed")
			switch {
			case errors.Is(err, ErrKeyRevoked):
				return nil, status.Error(codes.PermissionDenied, err.Error())
			case errors.Is(err, ErrDatabase):
				return nil, status.Error(codes.Unavailable, err.Error())
			default:
				return nil, status.Error(codes.Unauthenticated, err.Error())
			}
		}

		return handler(ContextWithClientID(ctx, clientID), req)
	}
}

// ContextWithClientID returns ctx carrying an authenticated client ID.
func ContextWithClientID(ctx context.Context, clientID types.ClientID) context.Context {
	return context.WithValue(ctx, clientIDKey, clientID)
}

// ClientIDFromContext extracts the client ID from context.
// Returns empty string if not found.
func ClientIDFromContext(ctx context.Context) types.ClientID {
	if clientID, ok := ctx.Value(clientIDKey).(types.ClientID); ok {
		return clientID
	}
	return ""
}
