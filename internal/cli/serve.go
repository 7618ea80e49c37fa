package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/crowdlane/offeringd/internal/config"
	"github.com/crowdlane/offeringd/internal/core/offering"
	"github.com/crowdlane/offeringd/internal/core/rates"
	"github.com/crowdlane/offeringd/internal/server/api/jsonrpc"
	"github.com/crowdlane/offeringd/internal/storage/journal"
	"github.com/crowdlane/offeringd/internal/testing/ledgers"
)

var (
	// Serve flags
	bindAddr     string
	tickInterval time.Duration
	ethRateNum   uint64
	ethRateDen   uint64
	rewardNum    uint64
	rewardDen    uint64
)

// serveCmd represents the serve command (default action)
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the offering settlement daemon",
	Long: `Start offeringd in standalone mode: the engine runs against
in-memory ledgers with a fixed ETH quote, and exposes every operation
and query over HTTP JSON-RPC. Standalone mode treats all investors as
identity-verified; production deployments replace the ledgers with
their real counterparts.

This is the default command when no subcommand is specified.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	// Set serve as the default command
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	}

	serveCmd.Flags().StringVar(&bindAddr, "bind", "", "listen address (overrides server.addr)")
	serveCmd.Flags().DurationVar(&tickInterval, "tick", 10*time.Second, "phase re-evaluation interval")
	serveCmd.Flags().Uint64Var(&ethRateNum, "eth-rate-num", 250_000, "fixed EUR-per-ETH quote numerator")
	serveCmd.Flags().Uint64Var(&ethRateDen, "eth-rate-den", 1, "fixed EUR-per-ETH quote denominator")
	serveCmd.Flags().Uint64Var(&rewardNum, "reward-num", 0, "reward units issued per reward-den of contribution")
	serveCmd.Flags().Uint64Var(&rewardDen, "reward-den", 1, "reward issuance denominator")
}

// staticSource serves a fixed quote stamped with the current time, so
// the standalone daemon never trips the staleness window.
type staticSource struct {
	num, den uint64
}

func (s staticSource) Quote(offering.Currency) (rates.Quote, error) {
	if s.den == 0 {
		return rates.Quote{}, errors.New("rates: zero denominator")
	}
	return rates.Quote{Num: s.num, Den: s.den, AsOf: time.Now()}, nil
}

// allowAllIdentity passes every investor and whitelists none. Standalone
// mode only; a real identity registry replaces it in production wiring.
type allowAllIdentity struct{}

func (allowAllIdentity) IsVerified(string) bool { return true }
func (allowAllIdentity) WhitelistEntry(string) (offering.WhitelistEntry, bool) {
	return offering.WhitelistEntry{}, false
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	terms, err := cfg.Terms()
	if err != nil {
		return err
	}

	refresh, err := cfg.RatesRefresh()
	if err != nil {
		return err
	}
	cached, err := rates.NewCached(staticSource{num: ethRateNum, den: ethRateDen}, cfg.Rates.CacheSize, refresh)
	if err != nil {
		return err
	}

	deps := offering.Collaborators{
		Vault:     &ledgers.CurrencyVault{},
		Units:     ledgers.NewUnitLedger(),
		Rewards:   ledgers.NewRewardLedger(rewardNum, rewardDen),
		Identity:  allowAllIdentity{},
		Custodial: ledgers.NewCustodialWallet(),
		Fees:      &ledgers.FeeCollector{},
		Rates:     cached,
		Legal:     ledgers.NewLegalRegistry(terms.Issuer, terms.Nominee),
	}

	var jnl *journal.Journal
	if cfg.Journal.Enabled {
		jnl, err = journal.Open(cfg.Journal.Path)
		if err != nil {
			return fmt.Errorf("failed to open journal: %w", err)
		}
		defer jnl.Close()
		deps.Auditor = journal.NewRecorder(jnl, func(err error) {
			log.Printf("journal append failed: %v", err)
		})
	}

	engine, err := offering.NewEngine(terms, deps)
	if err != nil {
		return err
	}

	addr := cfg.Server.Addr
	if bindAddr != "" {
		addr = bindAddr
	}

	mux := http.NewServeMux()
	rpcServer := jsonrpc.NewServer(jsonrpc.NewOfferingHandler(engine, jnl))
	mux.Handle("/", rpcServer)
	mux.Handle("/rpc", rpcServer)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok","service":"offeringd","phase":%q}`, engine.Phase())
	})
	httpServer := &http.Server{Addr: addr, Handler: mux}

	if !quiet {
		fmt.Println("Starting offeringd - capital-raise settlement daemon")
		fmt.Printf("  - HTTP JSON-RPC: http://%s/rpc\n", addr)
		fmt.Printf("  - Health check:  http://%s/health\n", addr)
		fmt.Printf("  - Journal:       %v\n", cfg.Journal.Enabled)
		fmt.Printf("  - Phase:         %s\n", engine.Phase())
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		ticker := time.NewTicker(tickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				engine.Tick()
			}
		}
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
