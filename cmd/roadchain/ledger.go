package roadchain

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/liftedinit/roadchain/internal/chain"
	"github.com/liftedinit/roadchain/internal/config"
	"github.com/liftedinit/roadchain/internal/ledger"
	"github.com/liftedinit/roadchain/internal/store"
	"github.com/liftedinit/roadchain/internal/store/postgresql"
)

// Ledger is the chain as the CLI sees it. Payloads are kept as raw JSON so
// any stored chain can be opened and rehashed.
type Ledger = ledger.Ledger[json.RawMessage]

// dbStore is implemented by stores backed by a SQL database.
type dbStore interface {
	DB() *sql.DB
}

func loadConfigs() (config.StoreConfig, config.ChainConfig, error) {
	storeConfig := config.LoadStoreConfigFromCLI()
	if err := storeConfig.Validate(); err != nil {
		return storeConfig, config.ChainConfig{}, fmt.Errorf("invalid store configuration: %w", err)
	}

	chainConfig := config.LoadChainConfigFromCLI()
	if err := chainConfig.Validate(); err != nil {
		return storeConfig, chainConfig, fmt.Errorf("invalid chain configuration: %w", err)
	}

	slog.Debug("Command-line arguments", "store", storeConfig.Kind, "path", storeConfig.Path, "digest", chainConfig.Digest)
	return storeConfig, chainConfig, nil
}

func openStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Kind {
	case config.StorePostgres:
		return postgresql.NewStore(ctx, cfg.ConnString, cfg.MaxConns)
	case config.StoreMemory:
		return store.NewMemoryStore(), nil
	default:
		return store.NewJSONStore(cfg.Path)
	}
}

// openLedger opens the configured store and loads its chain.
func openLedger(ctx context.Context) (*Ledger, store.Store, error) {
	storeConfig, chainConfig, err := loadConfigs()
	if err != nil {
		return nil, nil, err
	}

	d, err := chainConfig.HashFunc()
	if err != nil {
		return nil, nil, err
	}

	st, err := openStore(ctx, storeConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s store: %w", storeConfig.Kind, err)
	}

	l, err := ledger.Open[json.RawMessage](ctx, st, chain.WithDigest(d))
	if err != nil {
		st.Close()
		return nil, nil, err
	}

	return l, st, nil
}

// jsonPayload encodes arg as a JSON string, or validates it as a JSON
// document when raw is set.
func jsonPayload(arg string, raw bool) (json.RawMessage, error) {
	if raw {
		if !json.Valid([]byte(arg)) {
			return nil, fmt.Errorf("payload is not valid JSON")
		}
		return json.RawMessage(arg), nil
	}
	return json.Marshal(arg)
}
