// Package catalog stores named rule sets per client and serves them
// compiled.
//
// Rule sets are persisted as JSON rule definitions (pkg/ruledef) through
// named queries. A rule set is compiled when it is created, which moves
// limit errors to creation time, and again on first use after a restart.
// Compiled rule sets are cached until deleted.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/solatis/strbounds/internal/core/db"
	"github.com/solatis/strbounds/internal/logging"
	"github.com/solatis/strbounds/internal/types"
	"github.com/solatis/strbounds/pkg/ruledef"
	"github.com/solatis/strbounds/pkg/rules"
)

// ErrStorage marks failures of the underlying database.
var ErrStorage = errors.New("catalog storage error")

// Queries is the subset of *db.Queries the catalog uses.
type Queries interface {
	Exec(ctx context.Context, name string, args ...interface{}) (sql.Result, error)
	Get(ctx context.Context, name string, dest interface{}, args ...interface{}) error
	Select(ctx context.Context, name string, dest interface{}, args ...interface{}) error
	Timestamp(t time.Time) interface{}
}

// Loaded is a stored rule set together with its compiled rules.
type Loaded struct {
	RuleSet types.RuleSet
	Rules   *rules.Compiled
}

// Filter keeps the candidates the rule set matches, combining its
// top-level items by the rule set's kind.
func (l *Loaded) Filter(candidates []string) []string {
	return rules.Filter(candidates, l.Rules, l.RuleSet.Kind.Kind())
}

type cacheKey struct {
	client types.ClientID
	id     types.RuleSetID
}

// Catalog manages rule sets. Safe for concurrent use.
type Catalog struct {
	queries Queries
	opts    rules.CompileOptions
	logger  zerolog.Logger

	mu    sync.RWMutex
	cache map[cacheKey]*Loaded
	// deletes counts evictions. A load that started before an eviction
	// must not cache what it read.
	deletes uint64
}

// New creates a catalog over queries. opts bounds the rule sets it accepts.
func New(queries Queries, opts rules.CompileOptions) *Catalog {
	return &Catalog{
		queries: queries,
		opts:    opts,
		logger:  logging.GetLogger("catalog"),
		cache:   make(map[cacheKey]*Loaded),
	}
}

type ruleSetRow struct {
	ID         string `db:"rule_set_id"`
	ClientID   string `db:"client_id"`
	Name       string `db:"name"`
	Kind       string `db:"kind"`
	Expression string `db:"expression"`
	CreatedAt  string `db:"created_at"`
}

func (r ruleSetRow) ruleSet() (types.RuleSet, error) {
	kind, err := types.ParseRuleSetKind(r.Kind)
	if err != nil {
		return types.RuleSet{}, err
	}
	created, err := db.ParseTimestamp(r.CreatedAt)
	if err != nil {
		return types.RuleSet{}, err
	}
	return types.RuleSet{
		ID:         types.RuleSetID(r.ID),
		ClientID:   types.ClientID(r.ClientID),
		Name:       r.Name,
		Kind:       kind,
		Expression: []byte(r.Expression),
		CreatedAt:  created,
	}, nil
}

// Create validates, compiles and stores a rule set. The name must be unique
// per client.
func (c *Catalog) Create(ctx context.Context, clientID types.ClientID, name string, kind types.RuleSetKind, node rules.Node) (*Loaded, error) {
	if err := types.ValidateRuleSetName(name); err != nil {
		return nil, err
	}
	if kind != types.RuleSetAll && kind != types.RuleSetAny {
		return nil, fmt.Errorf("%w: %q", types.ErrInvalidKind, kind)
	}

	compiled, err := rules.Compile(node, c.opts)
	if err != nil {
		return nil, err
	}

	expr, err := ruledef.MarshalJSON(node)
	if err != nil {
		return nil, fmt.Errorf("failed to encode rule set: %w", err)
	}
	if len(expr) > types.MaxExpressionSize {
		return nil, fmt.Errorf("%w: %d bytes", types.ErrExpressionTooLarge, len(expr))
	}

	rs := types.RuleSet{
		ID:         types.NewRuleSetID(),
		ClientID:   clientID,
		Name:       name,
		Kind:       kind,
		Expression: expr,
		CreatedAt:  time.Now().UTC(),
	}

	_, err = c.queries.Exec(ctx, "insert-rule-set",
		string(rs.ID), string(rs.ClientID), rs.Name, string(rs.Kind), string(rs.Expression), c.queries.Timestamp(rs.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s", types.ErrDuplicateRuleSetName, name)
		}
		return nil, fmt.Errorf("%w: insert rule set: %w", ErrStorage, err)
	}

	loaded := &Loaded{RuleSet: rs, Rules: compiled}
	c.mu.Lock()
	c.cache[cacheKey{clientID, rs.ID}] = loaded
	c.mu.Unlock()

	stats := compiled.Stats()
	c.logger.Info().
		Str("client_id", string(clientID)).
		Str("rule_set_id", string(rs.ID)).
		Str("name", name).
		Int("conditions", stats.Conditions).
		Int("pattern_sets", stats.PatternSets).
		Msg("Rule set created")
	return loaded, nil
}

// Get returns the rule set with the given id.
func (c *Catalog) Get(ctx context.Context, clientID types.ClientID, id types.RuleSetID) (types.RuleSet, error) {
	return c.get(ctx, "get-rule-set", clientID, string(id))
}

// GetByName returns the rule set with the given name.
func (c *Catalog) GetByName(ctx context.Context, clientID types.ClientID, name string) (types.RuleSet, error) {
	return c.get(ctx, "get-rule-set-by-name", clientID, name)
}

func (c *Catalog) get(ctx context.Context, query string, clientID types.ClientID, key string) (types.RuleSet, error) {
	var row ruleSetRow
	err := c.queries.Get(ctx, query, &row, string(clientID), key)
	if errors.Is(err, sql.ErrNoRows) {
		return types.RuleSet{}, fmt.Errorf("%w: %s", types.ErrRuleSetNotFound, key)
	}
	if err != nil {
		return types.RuleSet{}, fmt.Errorf("%w: get rule set: %w", ErrStorage, err)
	}
	return row.ruleSet()
}

// List returns the client's rule sets ordered by name.
func (c *Catalog) List(ctx context.Context, clientID types.ClientID) ([]types.RuleSet, error) {
	var rows []ruleSetRow
	if err := c.queries.Select(ctx, "list-rule-sets", &rows, string(clientID)); err != nil {
		return nil, fmt.Errorf("%w: list rule sets: %w", ErrStorage, err)
	}

	sets := make([]types.RuleSet, 0, len(rows))
	for _, row := range rows {
		rs, err := row.ruleSet()
		if err != nil {
			return nil, fmt.Errorf("rule set %s: %w", row.ID, err)
		}
		sets = append(sets, rs)
	}
	return sets, nil
}

// Delete removes a rule set and evicts its compiled form.
func (c *Catalog) Delete(ctx context.Context, clientID types.ClientID, id types.RuleSetID) error {
	res, err := c.queries.Exec(ctx, "delete-rule-set", string(clientID), string(id))
	if err != nil {
		return fmt.Errorf("%w: delete rule set: %w", ErrStorage, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: delete rule set: %w", ErrStorage, err)
	}

	c.mu.Lock()
	delete(c.cache, cacheKey{clientID, id})
	c.deletes++
	c.mu.Unlock()

	if n == 0 {
		return fmt.Errorf("%w: %s", types.ErrRuleSetNotFound, id)
	}
	c.logger.Info().
		Str("client_id", string(clientID)).
		Str("rule_set_id", string(id)).
		Msg("Rule set deleted")
	return nil
}

// Compiled returns the compiled rule set with the given id, compiling the
// stored definition on first use.
func (c *Catalog) Compiled(ctx context.Context, clientID types.ClientID, id types.RuleSetID) (*Loaded, error) {
	loaded, gen, ok := c.cached(clientID, id)
	if ok {
		return loaded, nil
	}
	rs, err := c.Get(ctx, clientID, id)
	if err != nil {
		return nil, err
	}
	return c.load(rs, gen)
}

// CompiledByName is Compiled addressed by rule set name.
func (c *Catalog) CompiledByName(ctx context.Context, clientID types.ClientID, name string) (*Loaded, error) {
	gen := c.generation()
	rs, err := c.GetByName(ctx, clientID, name)
	if err != nil {
		return nil, err
	}
	if loaded, _, ok := c.cached(clientID, rs.ID); ok {
		return loaded, nil
	}
	return c.load(rs, gen)
}

// cached looks up a compiled rule set. On a miss it also returns the
// eviction count to pass to load.
func (c *Catalog) cached(clientID types.ClientID, id types.RuleSetID) (*Loaded, uint64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	loaded, ok := c.cache[cacheKey{clientID, id}]
	return loaded, c.deletes, ok
}

func (c *Catalog) generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.deletes
}

// load compiles a stored rule set read when the eviction count was gen.
// The result is cached only if no rule set was deleted since.
func (c *Catalog) load(rs types.RuleSet, gen uint64) (*Loaded, error) {
	def, err := ruledef.ParseJSON(rs.Expression)
	if err != nil {
		return nil, fmt.Errorf("rule set %s: %w", rs.ID, err)
	}
	node, err := def.Node(c.opts.MaxDepth)
	if err != nil {
		return nil, fmt.Errorf("rule set %s: %w", rs.ID, err)
	}
	compiled, err := rules.Compile(node, c.opts)
	if err != nil {
		return nil, fmt.Errorf("rule set %s: %w", rs.ID, err)
	}

	loaded := &Loaded{RuleSet: rs, Rules: compiled}
	c.mu.Lock()
	if existing, ok := c.cache[cacheKey{rs.ClientID, rs.ID}]; ok {
		loaded = existing
	} else if c.deletes == gen {
		c.cache[cacheKey{rs.ClientID, rs.ID}] = loaded
	}
	c.mu.Unlock()

	c.logger.Debug().Str("rule_set_id", string(rs.ID)).Msg("Rule set compiled")
	return loaded, nil
}

// isUniqueViolation reports whether err is a unique constraint failure
// from either supported driver.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Name() == "unique_violation"
	}
	return false
}
