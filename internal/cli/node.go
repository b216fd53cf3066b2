package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/phantasma-io/go-phantasma/internal/config"
	"github.com/phantasma-io/go-phantasma/internal/core/state"
	"github.com/phantasma-io/go-phantasma/internal/core/token"
	"github.com/phantasma-io/go-phantasma/internal/storage/keyvalue"
	"github.com/phantasma-io/go-phantasma/internal/storage/keyvalue/pebble"
)

var nodeCmd = &cobra.Command{
	Use:   "node",
	Short: "Run the chain node",
	Long: `Open the state store, bootstrap the chain tokens when starting from an
empty directory, and serve until interrupted.`,
	RunE: runNode,
}

func init() {
	rootCmd.AddCommand(nodeCmd)
}

func runNode(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if verbose {
		fmt.Printf("config: data_dir=%s network=%s cache_entries=%d log_level=%s\n",
			cfg.Node.DataDir, cfg.Chain.NetworkName, cfg.Database.CacheEntries, cfg.Node.LogLevel)
	}

	manager := pebble.NewManager(filepath.Join(cfg.Node.DataDir, "data"))
	defer manager.Close()

	store, err := manager.OpenStore("chain")
	if err != nil {
		return err
	}
	if cfg.Database.CacheEntries > 0 {
		store, err = keyvalue.NewCachedStore(store, cfg.Database.CacheEntries)
		if err != nil {
			return err
		}
	}

	if err := bootstrapChain(store); err != nil {
		return err
	}

	fmt.Printf("phantasmad %s on %s, data in %s\n",
		rootCmd.Version, cfg.Chain.NetworkName, cfg.Node.DataDir)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	fmt.Println("shutting down")
	return nil
}

// bootstrapChain registers the chain-native tokens on first start.
func bootstrapChain(store keyvalue.Store) error {
	cs := state.NewChangeSet(store)
	ledger := token.NewLedger(cs)
	if ledger.Exists(token.StakingSymbol) {
		return nil
	}
	if err := ledger.Register(token.Token{
		Symbol:   token.StakingSymbol,
		Name:     "Phantasma Stake",
		Decimals: token.StakingDecimals,
		Flags:    token.FlagFungible | token.FlagTransferable | token.FlagStakable,
	}); err != nil {
		return err
	}
	if err := ledger.Register(token.Token{
		Symbol:   token.FuelSymbol,
		Name:     "Phantasma Energy",
		Decimals: token.FuelDecimals,
		Flags:    token.FlagFungible | token.FlagTransferable | token.FlagFuel,
	}); err != nil {
		return err
	}
	return cs.Commit()
}
