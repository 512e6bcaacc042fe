package database

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// PoolOptions bounds every tenant pool.
type PoolOptions struct {
	MaxConns        int32
	MinConns        int32
	MaxConnIdleTime time.Duration
}

type tenantPool struct {
	pool     *pgxpool.Pool
	lastUsed time.Time
	// set once an acquire has succeeded
	ready bool
}

// TenantPools keeps one bounded pgxpool per tenant database, created on first use.
type TenantPools struct {
	dsn    func(database string) string
	opts   PoolOptions
	logger *zap.Logger
	now    func() time.Time

	mu    sync.Mutex
	pools map[string]*tenantPool
}

// NewTenantPools builds the registry. dsn maps a database name to its connection string.
func NewTenantPools(dsn func(database string) string, opts PoolOptions, logger *zap.Logger) *TenantPools {
	return &TenantPools{
		dsn:    dsn,
		opts:   opts,
		logger: logger,
		now:    time.Now,
		pools:  make(map[string]*tenantPool),
	}
}

// Bind acquires a connection to database. The lease must be released by the caller.
// A pool whose first acquire fails is dropped so the next request starts from scratch.
func (p *TenantPools) Bind(ctx context.Context, database string) (*Lease, error) {
	tp, err := p.entry(ctx, database)
	if err != nil {
		return nil, err
	}
	conn, err := tp.pool.Acquire(ctx)
	if err != nil {
		p.evictUnready(database, tp)
		return nil, fmt.Errorf("acquire connection to %q: %w", database, err)
	}

	p.mu.Lock()
	tp.ready = true
	p.mu.Unlock()
	return NewLease(conn, conn.Release), nil
}

func (p *TenantPools) evictUnready(database string, tp *tenantPool) {
	p.mu.Lock()
	current, ok := p.pools[database]
	evict := ok && current == tp && !tp.ready
	if evict {
		delete(p.pools, database)
	}
	p.mu.Unlock()

	if evict {
		p.logger.Warn("tenant pool dropped after failed first acquire", zap.String("database", database))
		tp.pool.Close()
	}
}

func (p *TenantPools) pool(ctx context.Context, database string) (*pgxpool.Pool, error) {
	tp, err := p.entry(ctx, database)
	if err != nil {
		return nil, err
	}
	return tp.pool, nil
}

func (p *TenantPools) entry(ctx context.Context, database string) (*tenantPool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if tp, ok := p.pools[database]; ok {
		tp.lastUsed = p.now()
		return tp, nil
	}

	config, err := pgxpool.ParseConfig(p.dsn(database))
	if err != nil {
		return nil, fmt.Errorf("parse dsn for %q: %w", database, err)
	}
	if p.opts.MaxConns > 0 {
		config.MaxConns = p.opts.MaxConns
	}
	config.MinConns = p.opts.MinConns
	if p.opts.MaxConnIdleTime > 0 {
		config.MaxConnIdleTime = p.opts.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("open pool for %q: %w", database, err)
	}
	tp := &tenantPool{pool: pool, lastUsed: p.now()}
	p.pools[database] = tp
	p.logger.Info("tenant pool opened", zap.String("database", database), zap.Int32("max_conns", config.MaxConns))
	return tp, nil
}

// ReapIdle closes pools unused for longer than maxIdle that have no connection checked out.
// It returns the number of pools closed.
func (p *TenantPools) ReapIdle(maxIdle time.Duration) int {
	p.mu.Lock()
	var idle []*pgxpool.Pool
	cutoff := p.now().Add(-maxIdle)
	for name, tp := range p.pools {
		if tp.lastUsed.Before(cutoff) && tp.pool.Stat().AcquiredConns() == 0 {
			idle = append(idle, tp.pool)
			delete(p.pools, name)
			p.logger.Info("tenant pool closed after idle period", zap.String("database", name))
		}
	}
	p.mu.Unlock()

	for _, pool := range idle {
		pool.Close()
	}
	return len(idle)
}

// Databases lists the databases with an open pool.
func (p *TenantPools) Databases() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	names := make([]string, 0, len(p.pools))
	for name := range p.pools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close shuts every pool down.
func (p *TenantPools) Close() {
	p.mu.Lock()
	pools := p.pools
	p.pools = make(map[string]*tenantPool)
	p.mu.Unlock()

	for _, tp := range pools {
		tp.pool.Close()
	}
}

// Lease is a connection bound to one request.
type Lease struct {
	conn    Conn
	release func()
	once    sync.Once
}

func NewLease(conn Conn, release func()) *Lease {
	return &Lease{conn: conn, release: release}
}

func (l *Lease) Conn() Conn { return l.conn }

// Release returns the connection. Calls after the first are no-ops.
func (l *Lease) Release() {
	l.once.Do(func() {
		if l.release != nil {
			l.release()
		}
	})
}
