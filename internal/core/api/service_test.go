package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/solatis/strbounds/internal/core/auth"
	"github.com/solatis/strbounds/internal/core/catalog"
	"github.com/solatis/strbounds/internal/core/config"
	"github.com/solatis/strbounds/internal/core/db"
	"github.com/solatis/strbounds/internal/types"
	"github.com/solatis/strbounds/pkg/rules"
)

const animalsRule = `{"all": [
  {"any": [
    {"starts_with": "cat", "case": "ci_alphanum"},
    {"starts_with": "dog", "case": "ci_alphanum"}
  ]},
  {"ends_with": ".psd", "case": "ci", "not": true}
]}`

var animalCandidates = []string{"Cat_photo.jpg", "dog-bath.PSD", "bird.png", "DOG walk.png"}

func newTestService(t *testing.T, cfg *config.FilterAPIConfig) *Service {
	t.Helper()
	ctx := context.Background()

	database, err := db.Open(ctx, "sqlite://"+filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	_, err = db.MigrateUp(ctx, database)
	require.NoError(t, err)
	q, err := db.LoadQueries(database)
	require.NoError(t, err)

	svc, err := NewService(catalog.New(q, cfg.CompileOptions()), cfg)
	require.NoError(t, err)
	return svc
}

// newTestClient serves svc over an in-memory connection. Every call is
// attributed to clientID.
func newTestClient(t *testing.T, svc FilterAPIServer, clientID types.ClientID) *Client {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		func(ctx context.Context, req interface{}, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
			return handler(auth.ContextWithClientID(ctx, clientID), req)
		},
	))
	RegisterFilterAPIServer(srv, svc)
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewClient(conn, "")
}

func TestFilter_InlineRule(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t, newTestService(t, config.DefaultFilterAPIConfig()), "acme")

	resp, err := client.Filter(ctx, FilterRequest{Rule: json.RawMessage(animalsRule), Candidates: animalCandidates})
	require.NoError(t, err)
	assert.Equal(t, []string{"Cat_photo.jpg", "DOG walk.png"}, resp.Matches)
	assert.Equal(t, []int{0, 3}, resp.Indices)

	resp, err = client.Filter(ctx, FilterRequest{Rule: json.RawMessage(animalsRule), Candidates: animalCandidates, Invert: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"dog-bath.PSD", "bird.png"}, resp.Matches)
	assert.Equal(t, []int{1, 2}, resp.Indices)

	resp, err = client.Filter(ctx, FilterRequest{Rule: json.RawMessage(animalsRule), Candidates: []string{}})
	require.NoError(t, err)
	assert.Empty(t, resp.Matches)
}

func TestFilter_Kind(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t, newTestService(t, config.DefaultFilterAPIConfig()), "acme")
	list := json.RawMessage(`[{"contains": "a"}, {"contains": "b"}]`)
	candidates := []string{"a", "b", "ab", "c"}

	tests := []struct {
		kind string
		want []string
	}{
		{"", []string{"ab"}},
		{"all", []string{"ab"}},
		{"any", []string{"a", "b", "ab"}},
	}
	for _, tt := range tests {
		t.Run("kind="+tt.kind, func(t *testing.T) {
			resp, err := client.Filter(ctx, FilterRequest{Rule: list, Kind: tt.kind, Candidates: candidates})
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.Matches)
		})
	}
}

func TestRuleSetLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, config.DefaultFilterAPIConfig())
	client := newTestClient(t, svc, "acme")

	created, err := client.CreateRuleSet(ctx, CreateRuleSetRequest{Name: "animals", Rule: json.RawMessage(animalsRule)})
	require.NoError(t, err)
	assert.Equal(t, "animals", created.Name)
	assert.Equal(t, "all", created.Kind)
	_, err = types.ParseRuleSetID(created.ID)
	require.NoError(t, err)

	byName, err := client.Filter(ctx, FilterRequest{RuleSetName: "animals", Candidates: animalCandidates})
	require.NoError(t, err)
	assert.Equal(t, []string{"Cat_photo.jpg", "DOG walk.png"}, byName.Matches)

	byID, err := client.Filter(ctx, FilterRequest{RuleSetID: created.ID, Candidates: animalCandidates})
	require.NoError(t, err)
	assert.Equal(t, byName, byID)

	anyKind, err := client.Filter(ctx, FilterRequest{RuleSetID: created.ID, Kind: "any", Candidates: animalCandidates})
	require.NoError(t, err)
	assert.Equal(t, animalCandidates, anyKind.Matches, "every candidate satisfies one of the two items")

	_, err = client.CreateRuleSet(ctx, CreateRuleSetRequest{Name: "zebras", Kind: "any", Rule: json.RawMessage(`[{"is": "zebra"}]`)})
	require.NoError(t, err)

	list, err := client.ListRuleSets(ctx, ListRuleSetsRequest{})
	require.NoError(t, err)
	require.Len(t, list.RuleSets, 2)
	assert.Equal(t, "animals", list.RuleSets[0].Name)
	assert.Equal(t, "zebras", list.RuleSets[1].Name)
	assert.Equal(t, "any", list.RuleSets[1].Kind)
	assert.JSONEq(t, `{"all": [{"is": "zebra"}]}`, string(list.RuleSets[1].Rule))
	assert.Len(t, list.ETag, 64)

	cached, err := client.ListRuleSets(ctx, ListRuleSetsRequest{IfNoneMatch: list.ETag})
	require.NoError(t, err)
	assert.True(t, cached.NotModified)
	assert.Empty(t, cached.RuleSets)
	assert.Equal(t, list.ETag, cached.ETag)

	deleted, err := client.DeleteRuleSet(ctx, DeleteRuleSetRequest{Name: "animals"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, deleted.ID)

	_, err = client.Filter(ctx, FilterRequest{RuleSetName: "animals", Candidates: animalCandidates})
	assert.Equal(t, codes.NotFound, status.Code(err))

	changed, err := client.ListRuleSets(ctx, ListRuleSetsRequest{IfNoneMatch: list.ETag})
	require.NoError(t, err)
	assert.False(t, changed.NotModified)
	assert.Len(t, changed.RuleSets, 1)

	other := newTestClient(t, svc, "other")
	otherList, err := other.ListRuleSets(ctx, ListRuleSetsRequest{})
	require.NoError(t, err)
	assert.Empty(t, otherList.RuleSets, "rule sets are scoped per client")
}

func TestErrorCodes(t *testing.T) {
	ctx := context.Background()
	cfg := config.DefaultFilterAPIConfig()
	cfg.MaxBatchSize = 3
	cfg.MaxRuleDepth = 2
	client := newTestClient(t, newTestService(t, cfg), "acme")

	_, err := client.CreateRuleSet(ctx, CreateRuleSetRequest{Name: "dup", Rule: json.RawMessage(`{"contains": "x"}`)})
	require.NoError(t, err)

	tests := []struct {
		name string
		call func() error
		want codes.Code
	}{
		{"duplicate name", func() error {
			_, err := client.CreateRuleSet(ctx, CreateRuleSetRequest{Name: "dup", Rule: json.RawMessage(`{"contains": "x"}`)})
			return err
		}, codes.AlreadyExists},
		{"invalid name", func() error {
			_, err := client.CreateRuleSet(ctx, CreateRuleSetRequest{Name: "has space", Rule: json.RawMessage(`{"contains": "x"}`)})
			return err
		}, codes.InvalidArgument},
		{"missing rule", func() error {
			_, err := client.CreateRuleSet(ctx, CreateRuleSetRequest{Name: "empty"})
			return err
		}, codes.InvalidArgument},
		{"batch too large", func() error {
			_, err := client.Filter(ctx, FilterRequest{Rule: json.RawMessage(`{"contains": "x"}`), Candidates: []string{"a", "b", "c", "d"}})
			return err
		}, codes.InvalidArgument},
		{"no rule source", func() error {
			_, err := client.Filter(ctx, FilterRequest{Candidates: []string{"a"}})
			return err
		}, codes.InvalidArgument},
		{"two rule sources", func() error {
			_, err := client.Filter(ctx, FilterRequest{RuleSetName: "dup", Rule: json.RawMessage(`{"contains": "x"}`)})
			return err
		}, codes.InvalidArgument},
		{"malformed rule", func() error {
			_, err := client.Filter(ctx, FilterRequest{Rule: json.RawMessage(`{"contains": 3}`)})
			return err
		}, codes.InvalidArgument},
		{"two kinds in one object", func() error {
			_, err := client.Filter(ctx, FilterRequest{Rule: json.RawMessage(`{"contains": "a", "is": "b"}`)})
			return err
		}, codes.InvalidArgument},
		{"rule too deep", func() error {
			_, err := client.Filter(ctx, FilterRequest{Rule: json.RawMessage(`{"all": [{"any": [{"is": "a"}]}]}`)})
			return err
		}, codes.InvalidArgument},
		{"bad case mode", func() error {
			_, err := client.Filter(ctx, FilterRequest{Rule: json.RawMessage(`{"is": "a", "case": "upper"}`)})
			return err
		}, codes.InvalidArgument},
		{"bad kind", func() error {
			_, err := client.Filter(ctx, FilterRequest{Rule: json.RawMessage(`{"is": "a"}`), Kind: "most"})
			return err
		}, codes.InvalidArgument},
		{"bad rule set id", func() error {
			_, err := client.Filter(ctx, FilterRequest{RuleSetID: "not-a-uuid"})
			return err
		}, codes.InvalidArgument},
		{"unknown rule set", func() error {
			_, err := client.Filter(ctx, FilterRequest{RuleSetID: string(types.NewRuleSetID())})
			return err
		}, codes.NotFound},
		{"delete without target", func() error {
			_, err := client.DeleteRuleSet(ctx, DeleteRuleSetRequest{})
			return err
		}, codes.InvalidArgument},
		{"delete unknown", func() error {
			_, err := client.DeleteRuleSet(ctx, DeleteRuleSetRequest{Name: "nope"})
			return err
		}, codes.NotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			assert.Equal(t, tt.want, status.Code(err), "err = %v", err)
		})
	}
}

func TestFilter_CandidateTooLarge(t *testing.T) {
	svc := newTestService(t, config.DefaultFilterAPIConfig())
	ctx := auth.ContextWithClientID(context.Background(), "acme")

	big := make([]byte, types.MaxCandidateLength+1)
	_, err := svc.filter(ctx, "acme", FilterRequest{Rule: json.RawMessage(`{"is": "a"}`), Candidates: []string{"ok", string(big)}})
	assert.ErrorIs(t, err, types.ErrCandidateTooLarge)
}

func TestServe_UnknownField(t *testing.T) {
	svc := newTestService(t, config.DefaultFilterAPIConfig())
	ctx := auth.ContextWithClientID(context.Background(), "acme")

	in, err := toStruct(map[string]interface{}{"candidates": []string{"a"}, "rules": "typo"})
	require.NoError(t, err)
	_, err = svc.Filter(ctx, in)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestServe_MissingClient(t *testing.T) {
	svc := newTestService(t, config.DefaultFilterAPIConfig())
	_, err := svc.ListRuleSets(context.Background(), nil)
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestToStatus(t *testing.T) {
	tests := []struct {
		err  error
		want codes.Code
	}{
		{fmt.Errorf("x: %w", types.ErrRuleSetNotFound), codes.NotFound},
		{fmt.Errorf("x: %w", types.ErrDuplicateRuleSetName), codes.AlreadyExists},
		{fmt.Errorf("%w: disk full", catalog.ErrStorage), codes.Unavailable},
		{fmt.Errorf("x: %w", rules.ErrTooManyConditions), codes.InvalidArgument},
		{context.DeadlineExceeded, codes.DeadlineExceeded},
		{context.Canceled, codes.Canceled},
		{status.Error(codes.PermissionDenied, "revoked"), codes.PermissionDenied},
		{fmt.Errorf("surprise"), codes.Internal},
	}
	for _, tt := range tests {
		if got := toStatus(tt.err).Code(); got != tt.want {
			t.Errorf("toStatus(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestComputeETAG(t *testing.T) {
	t0 := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	a := types.RuleSet{ID: "a", CreatedAt: t0}
	b := types.RuleSet{ID: "b", CreatedAt: t0.Add(time.Second)}

	if computeETAG([]types.RuleSet{a, b}) != computeETAG([]types.RuleSet{b, a}) {
		t.Error("ETAG depends on order")
	}
	b2 := b
	b2.CreatedAt = b.CreatedAt.Add(time.Nanosecond)
	if computeETAG([]types.RuleSet{a, b}) == computeETAG([]types.RuleSet{a, b2}) {
		t.Error("ETAG ignores creation time")
	}
}
