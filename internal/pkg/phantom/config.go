package phantom

import (
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go/rpc"

	"github.com/memecahq/memeca/internal/pkg/env"
)

// Defaults mirror the production payment setup.
const (
	DefaultRPCURL           = "https://api.mainnet-beta.solana.com"
	DefaultRecipientAddress = "E4uYdn6FcTZFasVmt7BfqZaGDt3rCniykMv2bXUJ1PNu"
	DefaultTuzemoonCost     = 0.1 // SOL
)

// Config carries the connection and payment tunables.
type Config struct {
	RPCURL           string
	RecipientAddress string
	TuzemoonCost     float64

	MaxRetries          int
	RetryDelay          time.Duration
	ValidateTimeout     time.Duration
	KeepAliveInterval   time.Duration
	ConfirmPollInterval time.Duration
	Commitment          rpc.CommitmentType
}

// ConfigFromEnv reads the payment configuration with production defaults:
// 3 connection attempts with 1s exponential backoff, 30s validation ceiling,
// 10s keep-alive, confirmed commitment.
func ConfigFromEnv() Config {
	return Config{
		RPCURL:              env.GetEnv("SOLANA_RPC_URL", DefaultRPCURL),
		RecipientAddress:    env.GetEnv("TUZEMOON_RECIPIENT", DefaultRecipientAddress),
		TuzemoonCost:        envFloat("TUZEMOON_COST_SOL", DefaultTuzemoonCost),
		MaxRetries:          envInt("SOLANA_MAX_RETRIES", 3),
		RetryDelay:          envDuration("SOLANA_RETRY_DELAY_MS", 1000),
		ValidateTimeout:     envDuration("SOLANA_CONNECT_TIMEOUT_MS", 30000),
		KeepAliveInterval:   envDuration("SOLANA_KEEPALIVE_MS", 10000),
		ConfirmPollInterval: envDuration("SOLANA_CONFIRM_POLL_MS", 2000),
		Commitment:          rpc.CommitmentType(env.GetEnv("SOLANA_COMMITMENT", string(rpc.CommitmentConfirmed))),
	}
}

func envInt(key string, def int) int {
	if v, err := strconv.Atoi(env.GetEnv(key, "")); err == nil && v > 0 {
		return v
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v, err := strconv.ParseFloat(env.GetEnv(key, ""), 64); err == nil && v > 0 {
		return v
	}
	return def
}

func envDuration(key string, defMillis int) time.Duration {
	return time.Duration(envInt(key, defMillis)) * time.Millisecond
}
