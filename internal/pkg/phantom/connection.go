package phantom

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// RPCClient is the slice of the Solana JSON-RPC surface the payment pipeline
// uses. *rpc.Client satisfies it; tests substitute fakes.
type RPCClient interface {
	GetVersion(ctx context.Context) (*rpc.GetVersionResult, error)
	GetSlot(ctx context.Context, commitment rpc.CommitmentType) (uint64, error)
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
	GetBlockHeight(ctx context.Context, commitment rpc.CommitmentType) (uint64, error)
	SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error)
	GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, sigs ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)
}

// Manager establishes validated connections to the RPC endpoint, tolerating
// transient node failures with bounded exponential backoff.
type Manager struct {
	cfg  Config
	dial func(endpoint string) RPCClient
}

// NewManager creates a connection manager for the configured endpoint.
func NewManager(cfg Config) *Manager {
	return &Manager{
		cfg: cfg,
		dial: func(endpoint string) RPCClient {
			return rpc.New(endpoint)
		},
	}
}

// Connect returns a healthy connection or fails after MaxRetries attempts
// with exponential backoff (RetryDelay, 2x per attempt). Callers must Close
// the connection on every exit path.
func (m *Manager) Connect(ctx context.Context) (*Connection, error) {
	var lastErr error
	for attempt := 0; attempt < m.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := m.cfg.RetryDelay << (attempt - 1)
			log.Printf("solana: retrying connection in %v (attempt %d/%d)", delay, attempt+1, m.cfg.MaxRetries)
			select {
			case <-ctx.Done():
				return nil, newError(KindConnectivity, "connect", ctx.Err())
			case <-time.After(delay):
			}
		}

		client := m.dial(m.cfg.RPCURL)
		if err := m.validate(ctx, client); err != nil {
			lastErr = err
			log.Printf("solana: connection attempt %d/%d failed: %v", attempt+1, m.cfg.MaxRetries, err)
			continue
		}

		log.Printf("solana: established connection to %s", m.cfg.RPCURL)
		return newConnection(client, m.cfg.KeepAliveInterval, m.cfg.Commitment), nil
	}

	return nil, newError(KindConnectivity, "connect",
		fmt.Errorf("failed after %d attempts: %w", m.cfg.MaxRetries, lastErr))
}

// validate runs the health probes (node version, current slot, latest
// blockhash, block height) concurrently under a single timeout. Any probe
// failing fails the whole attempt.
func (m *Manager) validate(ctx context.Context, client RPCClient) error {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.ValidateTimeout)
	defer cancel()

	probes := []struct {
		name string
		run  func(context.Context) error
	}{
		{"version", func(ctx context.Context) error {
			_, err := client.GetVersion(ctx)
			return err
		}},
		{"slot", func(ctx context.Context) error {
			_, err := client.GetSlot(ctx, m.cfg.Commitment)
			return err
		}},
		{"blockhash", func(ctx context.Context) error {
			_, err := client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
			return err
		}},
		{"block height", func(ctx context.Context) error {
			_, err := client.GetBlockHeight(ctx, m.cfg.Commitment)
			return err
		}},
	}

	errc := make(chan error, len(probes))
	for _, p := range probes {
		p := p
		go func() {
			if err := p.run(ctx); err != nil {
				errc <- fmt.Errorf("%s probe: %w", p.name, err)
				return
			}
			errc <- nil
		}()
	}

	for range probes {
		if err := <-errc; err != nil {
			return err
		}
	}
	return nil
}

// Connection is a validated RPC handle with a background keep-alive probe.
type Connection struct {
	client     RPCClient
	commitment rpc.CommitmentType
	done       chan struct{}
	closeOnce  sync.Once
}

func newConnection(client RPCClient, keepAliveEvery time.Duration, commitment rpc.CommitmentType) *Connection {
	c := &Connection{
		client:     client,
		commitment: commitment,
		done:       make(chan struct{}),
	}
	if keepAliveEvery > 0 {
		go c.keepAlive(keepAliveEvery)
	}
	return c
}

// Client exposes the underlying RPC handle.
func (c *Connection) Client() RPCClient {
	return c.client
}

// keepAlive probes the node periodically for the lifetime of the connection.
// A missed probe is a warning, not a teardown.
func (c *Connection) keepAlive(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), every)
			if _, err := c.client.GetSlot(ctx, c.commitment); err != nil {
				log.Printf("solana: keep-alive probe failed: %v", err)
			}
			cancel()
		}
	}
}

// Close stops the keep-alive probe. Safe to call more than once.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}
