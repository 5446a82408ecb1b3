// Package db provides SurrealDB database connectivity with auto-reconnect support.
package db

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/contrib/rews"
	"github.com/surrealdb/surrealdb.go/pkg/connection"
	"github.com/surrealdb/surrealdb.go/pkg/connection/gorillaws"
	"github.com/surrealdb/surrealdb.go/pkg/logger"
	"github.com/surrealdb/surrealdb.go/surrealcbor"
)

func init() {
	// Force HTTP/1.1 for WSS connections to prevent HTTP/2 ALPN negotiation.
	// WebSocket upgrade requires HTTP/1.1 semantics which fail under HTTP/2.
	gorillaws.DefaultDialer.TLSClientConfig = &tls.Config{
		NextProtos: []string{"http/1.1"},
	}
}

// Config holds SurrealDB connection configuration.
type Config struct {
	URL       string
	Namespace string
	Database  string

	// Access is the record access method end users authenticate with.
	Access string
}

// Client wraps a SurrealDB connection with auto-reconnect. Connections
// start unauthenticated; callers sign in either as a record user (the
// normal client path) or with admin credentials (schema install).
type Client struct {
	conn   *rews.Connection[*gorillaws.Connection]
	db     *surrealdb.DB
	cfg    Config
	logger logger.Logger
}

// recordAuth carries record-access credentials. The extra fields are
// exposed to the access method's SIGNUP/SIGNIN expressions as $email,
// $pass and $name.
type recordAuth struct {
	Namespace string `json:"NS"`
	Database  string `json:"DB"`
	Access    string `json:"AC"`
	Email     string `json:"email"`
	Password  string `json:"pass"`
	Name      string `json:"name,omitempty"`
}

// NewClient creates a new SurrealDB client with auto-reconnecting WebSocket.
func NewClient(ctx context.Context, cfg Config, log *slog.Logger) (*Client, error) {
	// Create logger adapter for SurrealDB SDK
	var sdkLogger logger.Logger
	if log != nil {
		sdkLogger = logger.New(log.Handler())
	} else {
		sdkLogger = logger.New(slog.Default().Handler())
	}

	// Use surrealcbor for CBOR encoding/decoding (handles SurrealDB custom tags)
	codec := surrealcbor.New()

	// Create rews connection with auto-reconnect using gorillaws
	// Note: gorillaws requires ws:// or wss:// URL without /rpc suffix (it adds /rpc internally)
	baseURL := strings.TrimSuffix(cfg.URL, "/rpc")

	conn := rews.New(
		func(ctx context.Context) (*gorillaws.Connection, error) {
			ws := gorillaws.New(&connection.Config{
				BaseURL:     baseURL,
				Marshaler:   codec,
				Unmarshaler: codec,
				Logger:      sdkLogger,
			})
			return ws, nil
		},
		5*time.Second,
		codec,
		sdkLogger,
	)

	// Configure exponential backoff
	retryer := rews.NewExponentialBackoffRetryer()
	retryer.InitialDelay = 1 * time.Second
	retryer.MaxDelay = 30 * time.Second
	retryer.Multiplier = 2.0
	retryer.MaxRetries = 10
	conn.Retryer = retryer

	sdkLogger.Info("connecting to SurrealDB", "url", cfg.URL)
	if err := conn.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	db, err := surrealdb.FromConnection(ctx, conn)
	if err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("from connection: %w", err)
	}

	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("use: %w", err)
	}

	sdkLogger.Info("SurrealDB connection established",
		"namespace", cfg.Namespace, "database", cfg.Database)
	return &Client{conn: conn, db: db, cfg: cfg, logger: sdkLogger}, nil
}

// Close closes the SurrealDB connection.
func (c *Client) Close(ctx context.Context) error {
	c.logger.Info("closing SurrealDB connection")
	return c.conn.Close(ctx)
}

// DB returns the underlying SurrealDB client for queries.
func (c *Client) DB() *surrealdb.DB {
	return c.db
}

// SignUp registers a record user through the access method and returns
// the session token.
func (c *Client) SignUp(ctx context.Context, email, password, name string) (string, error) {
	c.logger.Info("signing up record user", "email", email, "access", c.cfg.Access)
	token, err := c.db.SignUp(ctx, recordAuth{
		Namespace: c.cfg.Namespace,
		Database:  c.cfg.Database,
		Access:    c.cfg.Access,
		Email:     email,
		Password:  password,
		Name:      name,
	})
	if err != nil {
		return "", fmt.Errorf("signup: %w", wrapQueryError(err))
	}
	return token, nil
}

// SignIn authenticates a record user and returns the session token.
func (c *Client) SignIn(ctx context.Context, email, password string) (string, error) {
	c.logger.Info("signing in record user", "email", email, "access", c.cfg.Access)
	token, err := c.db.SignIn(ctx, recordAuth{
		Namespace: c.cfg.Namespace,
		Database:  c.cfg.Database,
		Access:    c.cfg.Access,
		Email:     email,
		Password:  password,
	})
	if err != nil {
		return "", fmt.Errorf("signin: %w", wrapQueryError(err))
	}
	return token, nil
}

// SignInAdmin authenticates with root credentials. Only schema install
// needs this level.
func (c *Client) SignInAdmin(ctx context.Context, username, password string) error {
	c.logger.Info("signing in admin user", "user", username)
	_, err := c.db.SignIn(ctx, surrealdb.Auth{
		Username: username,
		Password: password,
	})
	if err != nil {
		return fmt.Errorf("admin signin: %w", err)
	}
	return nil
}

// Authenticate resumes a previous session from a persisted token.
func (c *Client) Authenticate(ctx context.Context, token string) error {
	if err := c.db.Authenticate(ctx, token); err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}
	return nil
}

// Invalidate drops the connection's authentication state.
func (c *Client) Invalidate(ctx context.Context) error {
	if err := c.db.Invalidate(ctx); err != nil {
		return fmt.Errorf("invalidate: %w", err)
	}
	return nil
}

// InitSchema initializes the database schema. Requires admin auth.
func (c *Client) InitSchema(ctx context.Context) error {
	c.logger.Info("initializing database schema")
	_, err := surrealdb.Query[any](ctx, c.db, schemaSQL(c.cfg.Access), nil)
	if err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	c.logger.Info("schema initialization complete")
	return nil
}

// Query executes a SurrealQL query with parameters.
// Returns the raw query results as []surrealdb.QueryResult[any].
func (c *Client) Query(ctx context.Context, sql string, vars map[string]any) (*[]surrealdb.QueryResult[any], error) {
	return surrealdb.Query[any](ctx, c.db, sql, vars)
}

// WipeData deletes all data from the database while preserving schema.
// Use for testing only. Requires admin auth.
func (c *Client) WipeData(ctx context.Context) error {
	c.logger.Warn("wiping all data from database")

	for _, table := range []string{"session", "user"} {
		query := fmt.Sprintf("DELETE %s", table)
		if _, err := surrealdb.Query[any](ctx, c.db, query, nil); err != nil {
			return fmt.Errorf("delete %s: %w", table, err)
		}
		c.logger.Info("deleted table data", "table", table)
	}

	return nil
}
