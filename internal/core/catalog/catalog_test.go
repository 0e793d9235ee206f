package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solatis/strbounds/internal/core/db"
	"github.com/solatis/strbounds/internal/types"
	"github.com/solatis/strbounds/pkg/rules"
)

func newTestQueries(t *testing.T) *db.Queries {
	t.Helper()
	ctx := context.Background()

	database, err := db.Open(ctx, "sqlite://"+filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	_, err = db.MigrateUp(ctx, database)
	require.NoError(t, err)

	q, err := db.LoadQueries(database)
	require.NoError(t, err)
	return q
}

// januaryImages matches names starting with "jan" that mention images or pics.
func januaryImages() rules.Node {
	return rules.Build().
		StartingWithCI("jan").
		OrContainingCI("images", "pics").
		Node()
}

func TestCatalog_CreateAndFilter(t *testing.T) {
	ctx := context.Background()
	c := New(newTestQueries(t), rules.DefaultCompileOptions())

	loaded, err := c.Create(ctx, types.LocalClient, "january-images", types.RuleSetAll, januaryImages())
	require.NoError(t, err)
	assert.Equal(t, "january-images", loaded.RuleSet.Name)
	assert.Equal(t, types.RuleSetAll, loaded.RuleSet.Kind)
	assert.False(t, loaded.RuleSet.CreatedAt.IsZero())

	candidates := []string{"Jan_2023_IMAGES", "feb_images", "january pics", "jan_docs"}
	assert.Equal(t, []string{"Jan_2023_IMAGES", "january pics"}, loaded.Filter(candidates))

	got, err := c.Get(ctx, types.LocalClient, loaded.RuleSet.ID)
	require.NoError(t, err)
	assert.Equal(t, loaded.RuleSet.ID, got.ID)
	assert.JSONEq(t, string(loaded.RuleSet.Expression), string(got.Expression))
	assert.True(t, got.CreatedAt.Equal(loaded.RuleSet.CreatedAt), "CreatedAt = %v, want %v", got.CreatedAt, loaded.RuleSet.CreatedAt)

	byName, err := c.GetByName(ctx, types.LocalClient, "january-images")
	require.NoError(t, err)
	assert.Equal(t, loaded.RuleSet.ID, byName.ID)
}

func TestCatalog_AnyKind(t *testing.T) {
	ctx := context.Background()
	c := New(newTestQueries(t), rules.DefaultCompileOptions())

	node := rules.All(
		rules.Leaf(rules.EndsWith(".jpg", true, rules.CaseInsensitive)),
		rules.Leaf(rules.EndsWith(".png", true, rules.CaseInsensitive)),
	)
	loaded, err := c.Create(ctx, types.LocalClient, "pictures", types.RuleSetAny, node)
	require.NoError(t, err)

	got := loaded.Filter([]string{"a.JPG", "b.txt", "c.png"})
	assert.Equal(t, []string{"a.JPG", "c.png"}, got)
}

func TestCatalog_CompiledAfterRestart(t *testing.T) {
	ctx := context.Background()
	q := newTestQueries(t)

	first := New(q, rules.DefaultCompileOptions())
	created, err := first.Create(ctx, types.LocalClient, "january-images", types.RuleSetAll, januaryImages())
	require.NoError(t, err)

	second := New(q, rules.DefaultCompileOptions())
	loaded, err := second.Compiled(ctx, types.LocalClient, created.RuleSet.ID)
	require.NoError(t, err)

	candidates := []string{"Jan_2023_IMAGES", "feb_images", "january pics", "jan_docs"}
	assert.Equal(t, created.Filter(candidates), loaded.Filter(candidates))
	assert.Equal(t, created.Rules.Stats(), loaded.Rules.Stats())

	again, err := second.Compiled(ctx, types.LocalClient, created.RuleSet.ID)
	require.NoError(t, err)
	assert.Same(t, loaded, again, "second lookup is served from the cache")

	byName, err := second.CompiledByName(ctx, types.LocalClient, "january-images")
	require.NoError(t, err)
	assert.Same(t, loaded, byName)
}

func TestCatalog_Errors(t *testing.T) {
	ctx := context.Background()
	opts := rules.CompileOptions{MaxDepth: 2, MaxConditions: 3}
	c := New(newTestQueries(t), opts)

	leaf := rules.Leaf(rules.Contains("x", true, rules.CaseSensitive))
	_, err := c.Create(ctx, types.LocalClient, "ok", types.RuleSetAll, rules.All(leaf))
	require.NoError(t, err)

	tests := []struct {
		name    string
		setName string
		kind    types.RuleSetKind
		node    rules.Node
		wantErr error
	}{
		{"duplicate name", "ok", types.RuleSetAll, rules.All(leaf), types.ErrDuplicateRuleSetName},
		{"empty name", "", types.RuleSetAll, rules.All(leaf), types.ErrInvalidRuleSetName},
		{"bad character", "a b", types.RuleSetAll, rules.All(leaf), types.ErrInvalidRuleSetName},
		{"bad kind", "k", types.RuleSetKind("none"), rules.All(leaf), types.ErrInvalidKind},
		{"too deep", "deep", types.RuleSetAll, rules.All(rules.Any(leaf)), rules.ErrRuleTooDeep},
		{"too many", "many", types.RuleSetAll, rules.All(leaf, leaf, leaf, leaf), rules.ErrTooManyConditions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Create(ctx, types.LocalClient, tt.setName, tt.kind, tt.node)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("same name for another client", func(t *testing.T) {
		_, err := c.Create(ctx, types.ClientID("other"), "ok", types.RuleSetAll, rules.All(leaf))
		assert.NoError(t, err)
	})
}

func TestCatalog_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	c := New(newTestQueries(t), rules.DefaultCompileOptions())
	leaf := rules.Leaf(rules.Whole("x", true, rules.CaseSensitive))

	for _, name := range []string{"zeta", "alpha", "mid"} {
		_, err := c.Create(ctx, types.LocalClient, name, types.RuleSetAll, rules.All(leaf))
		require.NoError(t, err)
	}
	_, err := c.Create(ctx, types.ClientID("other"), "beta", types.RuleSetAll, rules.All(leaf))
	require.NoError(t, err)

	sets, err := c.List(ctx, types.LocalClient)
	require.NoError(t, err)
	var names []string
	for _, rs := range sets {
		names = append(names, rs.Name)
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, names)

	target := sets[1]
	_, err = c.Compiled(ctx, types.LocalClient, target.ID)
	require.NoError(t, err)

	require.NoError(t, c.Delete(ctx, types.LocalClient, target.ID))
	_, _, ok := c.cached(types.LocalClient, target.ID)
	assert.False(t, ok, "deleted rule set stays cached")

	_, err = c.Get(ctx, types.LocalClient, target.ID)
	assert.ErrorIs(t, err, types.ErrRuleSetNotFound)
	_, err = c.Compiled(ctx, types.LocalClient, target.ID)
	assert.ErrorIs(t, err, types.ErrRuleSetNotFound)
	assert.ErrorIs(t, c.Delete(ctx, types.LocalClient, target.ID), types.ErrRuleSetNotFound)

	_, err = c.GetByName(ctx, types.ClientID("other"), "alpha")
	assert.ErrorIs(t, err, types.ErrRuleSetNotFound, "rule sets are scoped per client")
}

// afterGetQueries runs hook once after the first successful Get of query.
type afterGetQueries struct {
	Queries
	query string
	hook  func()
	once  sync.Once
}

func (q *afterGetQueries) Get(ctx context.Context, name string, dest interface{}, args ...interface{}) error {
	err := q.Queries.Get(ctx, name, dest, args...)
	if err == nil && name == q.query {
		q.once.Do(q.hook)
	}
	return err
}

func TestCatalog_DeleteDuringLoad(t *testing.T) {
	for _, query := range []string{"get-rule-set", "get-rule-set-by-name"} {
		t.Run(query, func(t *testing.T) {
			ctx := context.Background()
			base := newTestQueries(t)
			created, err := New(base, rules.DefaultCompileOptions()).
				Create(ctx, types.LocalClient, "imgs", types.RuleSetAll, januaryImages())
			require.NoError(t, err)
			id := created.RuleSet.ID

			q := &afterGetQueries{Queries: base, query: query}
			c := New(q, rules.DefaultCompileOptions())
			q.hook = func() {
				require.NoError(t, c.Delete(ctx, types.LocalClient, id))
			}

			if query == "get-rule-set" {
				_, err = c.Compiled(ctx, types.LocalClient, id)
			} else {
				_, err = c.CompiledByName(ctx, types.LocalClient, "imgs")
			}
			require.NoError(t, err, "rule set read before the delete")

			_, _, ok := c.cached(types.LocalClient, id)
			assert.False(t, ok, "rule set deleted during load was cached")
			_, err = c.Compiled(ctx, types.LocalClient, id)
			assert.ErrorIs(t, err, types.ErrRuleSetNotFound)
		})
	}
}

func TestCatalog_ConcurrentCompiled(t *testing.T) {
	ctx := context.Background()
	q := newTestQueries(t)
	created, err := New(q, rules.DefaultCompileOptions()).
		Create(ctx, types.LocalClient, "january-images", types.RuleSetAll, januaryImages())
	require.NoError(t, err)

	c := New(q, rules.DefaultCompileOptions())
	results := make([]*Loaded, 8)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			loaded, err := c.Compiled(ctx, types.LocalClient, created.RuleSet.ID)
			if err == nil {
				results[i] = loaded
			}
		}(i)
	}
	wg.Wait()

	for i, r := range results {
		require.NotNil(t, r, "goroutine %d", i)
		assert.Same(t, results[0], r)
	}
}

func newMockCatalog(t *testing.T) (*Catalog, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	q, err := db.LoadQueries(sqlx.NewDb(mockDB, "sqlmock"))
	require.NoError(t, err)
	return New(q, rules.DefaultCompileOptions()), mock
}

func TestCatalog_StorageErrors(t *testing.T) {
	ctx := context.Background()
	unavailable := errors.New("connection refused")

	t.Run("insert", func(t *testing.T) {
		c, mock := newMockCatalog(t)
		mock.ExpectExec("INSERT INTO rule_sets").WillReturnError(unavailable)

		_, err := c.Create(ctx, types.LocalClient, "x", types.RuleSetAll, januaryImages())
		assert.ErrorIs(t, err, ErrStorage)
		assert.ErrorIs(t, err, unavailable)
		assert.NotErrorIs(t, err, types.ErrDuplicateRuleSetName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("get", func(t *testing.T) {
		c, mock := newMockCatalog(t)
		mock.ExpectQuery("SELECT (.+) FROM rule_sets").WillReturnError(unavailable)

		_, err := c.Get(ctx, types.LocalClient, types.NewRuleSetID())
		assert.ErrorIs(t, err, ErrStorage)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("list", func(t *testing.T) {
		c, mock := newMockCatalog(t)
		mock.ExpectQuery("SELECT (.+) FROM rule_sets").WillReturnError(unavailable)

		_, err := c.List(ctx, types.LocalClient)
		assert.ErrorIs(t, err, ErrStorage)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("corrupt stored definition", func(t *testing.T) {
		c, mock := newMockCatalog(t)
		rows := sqlmock.NewRows([]string{"rule_set_id", "client_id", "name", "kind", "expression", "created_at"}).
			AddRow("0190a0a0-0000-7000-8000-000000000000", "local", "broken", "all", `{"contains":"a","is":"b"}`, "2026-01-02T03:04:05Z")
		mock.ExpectQuery("SELECT (.+) FROM rule_sets").WillReturnRows(rows)

		_, err := c.Compiled(ctx, types.LocalClient, "0190a0a0-0000-7000-8000-000000000000")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrStorage)
	})
}
