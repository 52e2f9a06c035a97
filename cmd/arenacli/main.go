package main

import (
	"context"
	"flag"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/davecgh/go-spew/spew"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	ethparams "github.com/ethereum/go-ethereum/params"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/monarena/client/arena"
	"github.com/monarena/client/arena/api"
	"github.com/monarena/client/arena/contracts"
	"github.com/monarena/client/arena/store"
)

func main() {
	// Context with cancel for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	RunCLI(ctx)
}

func RunCLI(ctx context.Context) {
	// Use a local FlagSet (no globals).
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)

	configPath := fs.String("config", "", "Path to YAML config")
	endpoint := fs.String("endpoint", "", "Chain node endpoint (overrides config)")
	keyHex := fs.String("key", "", "Hex private key (overrides ARENA_PRIVATE_KEY)")
	dbPath := fs.String("db-path", "", "Snapshot DB directory (overrides config)")
	rpcAddr := fs.String("rpc-addr", "", "Status RPC listen address (overrides config)")

	_ = fs.Parse(os.Args[1:])

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	if *endpoint != "" {
		cfg.Endpoint = *endpoint
	}

	if *keyHex != "" {
		cfg.PrivateKey = *keyHex
	}

	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	if *rpcAddr != "" {
		cfg.RPCAddr = *rpcAddr
	}

	args := fs.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(2)
	}

	Run(ctx, cfg, args)
}

func printUsage() {
	pterm.DefaultSection.Println("arenacli <command> [args]")
	pterm.Info.Println(`view:     status | refresh | creatures [mine] | dump
serve:    watch | serve
bets:     bet-single|bet-double|bet-big|bet-small|bet-banker|bet-player|bet-tie <amount>
          lucky-number <number> <amount>
market:   buy-creature <id> | sell <id> <price> | unsell <id>
play:     breed <id> <id> | fight <id> <id> | heal <id> <units> <item>
          share <id> <address> | claim <id> <amount> | rename <id> <name>
mint:     mint | multi-mint | register | register-invited <address>
funds:    cash-in <amount> | cash-out <amount> | buy-item <units> <price> <item>
          burn <amount>`)
}

func Run(ctx context.Context, cfg *Config, args []string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.Level(cfg.LogLevel))

	// Cancel on SIGINT/SIGTERM too (centralized; no per-runner signal goroutines needed)
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open snapshot database")
	}

	defer st.Close()

	notify := arena.NewQueue(64)

	go drainNotifications(ctx, notify)

	session := arena.NewSession()
	session.Connecting()

	backend := connect(ctx, cfg, session)
	if backend == nil {
		if args[0] == "status" {
			renderSessionState(session.Status(), "", errDetail(session.Err()))

			return
		}

		log.Fatal().Err(session.Err()).Msg("No chain connection")
	}

	defer backend.Close()

	game, err := contracts.NewGame(common.HexToAddress(cfg.GameContract), backend)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to bind game contract")
	}

	token, err := contracts.NewToken(common.HexToAddress(cfg.TokenContract), backend)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to bind token contract")
	}

	credit, err := contracts.NewToken(common.HexToAddress(cfg.CreditContract), backend)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to bind credit contract")
	}

	items, err := contracts.NewItems(common.HexToAddress(cfg.ItemsContract), backend)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to bind items contract")
	}

	waiter := arena.NewMinedWaiter(backend)
	view := arena.NewCoordinator(session, game, token, items, notify, st)

	if seed, err := st.LatestSnapshot(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to load persisted snapshot")
	} else {
		view.Seed(seed)
	}

	orch := arena.NewOrchestrator(session, waiter, view, notify)
	bridge := arena.NewBridge(session, game, view, orch.Release, notify, st)
	client := arena.NewClient(
		orch, session, view, bridge,
		game, token, credit, items,
		game.Address(), notify,
	)

	dispatch(ctx, cfg, client, view, bridge, args)
}

// connect dials the node and verifies the chain. Failures land on the
// session as a persistent error state rather than a notification.
func connect(ctx context.Context, cfg *Config, session *arena.Session) *ethclient.Client {
	backend, err := ethclient.DialContext(ctx, cfg.Endpoint)
	if err != nil {
		session.Fail(fmt.Errorf("%w: %w", arena.ErrNotConnected, err))

		return nil
	}

	chainID, err := backend.ChainID(ctx)
	if err != nil {
		backend.Close()
		session.Fail(fmt.Errorf("%w: %w", arena.ErrNotConnected, err))

		return nil
	}

	if chainID.Uint64() != cfg.ChainID {
		backend.Close()
		session.Fail(fmt.Errorf("%w: got chain %s, want %d", arena.ErrWrongChain, chainID, cfg.ChainID))

		return nil
	}

	if cfg.PrivateKey == "" {
		session.Disconnect()

		return backend
	}

	wallet, err := arena.NewKeyWallet(cfg.PrivateKey, chainID)
	if err != nil {
		session.Fail(err)

		return backend
	}

	session.Connect(wallet)

	return backend
}

func dispatch(
	ctx context.Context,
	cfg *Config,
	client *arena.Client,
	view *arena.Coordinator,
	bridge *arena.Bridge,
	args []string,
) {
	cmd, params := args[0], args[1:]

	switch cmd {
	case "status":
		renderSession(client)
		renderSnapshot(client.Snapshot())

		return

	case "refresh":
		if err := view.Refresh(ctx); err != nil {
			os.Exit(1)
		}

		renderSnapshot(client.Snapshot())

		return

	case "creatures":
		if err := view.Refresh(ctx); err != nil {
			os.Exit(1)
		}

		mineOnly := len(params) > 0 && params[0] == "mine"
		renderCreatures(client.Snapshot(), mineOnly)

		return

	case "dump":
		pterm.Println(spew.Sdump(client.Snapshot()))
		pterm.Println(spew.Sdump(client.LastFight()))
		pterm.Println(spew.Sdump(client.LastReward()))

		return

	case "watch":
		if err := bridge.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to subscribe to result events")
		}

		defer bridge.Stop()

		pterm.Info.Println("watching for fight results and rewards, Ctrl-C to stop")
		<-ctx.Done()

		return

	case "serve":
		if err := bridge.Start(ctx); err != nil {
			log.Warn().Err(err).Msg("Result events unavailable")
		} else {
			defer bridge.Stop()
		}

		if err := view.Refresh(ctx); err != nil {
			log.Warn().Err(err).Msg("Initial refresh failed")
		}

		log.Info().Str("addr", cfg.RPCAddr).Msg("Starting status RPC server")

		if err := api.Serve(ctx, cfg.RPCAddr, client, cfg.UseFiber, nil); err != nil {
			log.Fatal().Err(err).Msg("Status RPC server crashed")
		}

		return
	}

	res := runAction(ctx, client, cmd, params)

	if res.Status != arena.StatusSucceeded {
		os.Exit(1)
	}
}

//nolint:gocyclo // one arm per action keeps the mapping flat and greppable
func runAction(ctx context.Context, client *arena.Client, cmd string, params []string) arena.Result {
	switch arena.Kind(cmd) {
	case arena.KindBetSingle:
		return client.BetSingle(ctx, amountArg(params, 0))
	case arena.KindBetDouble:
		return client.BetDouble(ctx, amountArg(params, 0))
	case arena.KindBetBig:
		return client.BetBig(ctx, amountArg(params, 0))
	case arena.KindBetSmall:
		return client.BetSmall(ctx, amountArg(params, 0))
	case arena.KindBetBanker:
		return client.BetBanker(ctx, amountArg(params, 0))
	case arena.KindBetPlayer:
		return client.BetPlayer(ctx, amountArg(params, 0))
	case arena.KindBetTie:
		return client.BetTie(ctx, amountArg(params, 0))
	case arena.KindLuckyNumber:
		return client.LuckyNumber(ctx, intArg(params, 0), amountArg(params, 1))
	case arena.KindBuyCreature:
		return client.BuyCreature(ctx, intArg(params, 0))
	case arena.KindSell:
		return client.AddForSale(ctx, intArg(params, 0), amountArg(params, 1))
	case arena.KindUnsell:
		return client.RemoveFromSale(ctx, intArg(params, 0))
	case arena.KindBreed:
		return client.Breed(ctx, intArg(params, 0), intArg(params, 1))
	case arena.KindFight:
		return client.Fight(ctx, intArg(params, 0), intArg(params, 1))
	case arena.KindShare:
		return client.StartSharing(ctx, intArg(params, 0), addressArg(params, 1))
	case arena.KindClaim:
		return client.ClaimReward(ctx, intArg(params, 0), amountArg(params, 1))
	case arena.KindRename:
		return client.Rename(ctx, intArg(params, 0), stringArg(params, 1))
	case arena.KindMint:
		return client.Mint(ctx)
	case arena.KindMultiMint:
		return client.MultiMint(ctx)
	case arena.KindRegister:
		return client.Register(ctx)
	case arena.KindRegisterInvited:
		return client.RegisterWithInvitor(ctx, addressArg(params, 0))
	case arena.KindCashIn:
		return client.AddCredit(ctx, amountArg(params, 0))
	case arena.KindCashOut:
		return client.CashOut(ctx, amountArg(params, 0))
	case arena.KindBuyItem:
		return client.BuyItem(ctx, intArg(params, 0), amountArg(params, 1), intArg(params, 2), nil)
	case arena.KindHeal:
		return client.Heal(ctx, intArg(params, 0), intArg(params, 1), intArg(params, 2), nil)
	case arena.KindBurn:
		return client.Burn(ctx, amountArg(params, 0))
	default:
		printUsage()
		os.Exit(2)

		return arena.Result{}
	}
}

// amountArg parses a decimal token amount ("1.5") into its smallest unit.
func amountArg(params []string, i int) *big.Int {
	if i >= len(params) {
		log.Fatal().Int("position", i+1).Msg("Missing amount argument")
	}

	r, ok := new(big.Rat).SetString(params[i])
	if !ok {
		log.Fatal().Str("amount", params[i]).Msg("Invalid amount")
	}

	wei := new(big.Int).Mul(r.Num(), big.NewInt(ethparams.Ether))

	return wei.Div(wei, r.Denom())
}

func intArg(params []string, i int) *big.Int {
	if i >= len(params) {
		log.Fatal().Int("position", i+1).Msg("Missing numeric argument")
	}

	v, err := strconv.ParseUint(params[i], 10, 64)
	if err != nil {
		log.Fatal().Str("value", params[i]).Msg("Invalid numeric argument")
	}

	return new(big.Int).SetUint64(v)
}

func addressArg(params []string, i int) common.Address {
	if i >= len(params) {
		log.Fatal().Int("position", i+1).Msg("Missing address argument")
	}

	if !common.IsHexAddress(params[i]) {
		log.Fatal().Str("value", params[i]).Msg("Invalid address argument")
	}

	return common.HexToAddress(params[i])
}

func stringArg(params []string, i int) string {
	if i >= len(params) {
		log.Fatal().Int("position", i+1).Msg("Missing argument")
	}

	return params[i]
}

func drainNotifications(ctx context.Context, q *arena.Queue) {
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-q.C():
			if n.Severity == arena.SeverityError {
				pterm.Error.Println(n.Text)
			} else {
				pterm.Success.Println(n.Text)
			}
		}
	}
}

func errDetail(err error) string {
	if err == nil {
		return ""
	}

	return err.Error()
}

func renderSession(client *arena.Client) {
	status, addr, detail := client.SessionStatus()

	renderSessionState(status, addr, detail)
}

func renderSessionState(status arena.Status, addr, detail string) {
	data := pterm.TableData{{"status", status.String()}}

	if addr != "" {
		data = append(data, []string{"address", addr})
	}

	if detail != "" {
		data = append(data, []string{"error", detail})
	}

	_ = pterm.DefaultTable.WithData(data).Render()
}

func renderSnapshot(snap *arena.Snapshot) {
	if snap == nil {
		pterm.Info.Println("no snapshot yet, run refresh while connected")

		return
	}

	_ = pterm.DefaultTable.WithData(pterm.TableData{
		{"round", strconv.FormatUint(snap.Round, 10)},
		{"taken", snap.TakenAt.Format("2006-01-02 15:04:05")},
		{"balance", snap.Balance.String()},
		{"creatures", strconv.Itoa(len(snap.Creatures))},
		{"mine", strconv.Itoa(len(snap.Mine))},
		{"healing potions", strconv.FormatUint(snap.Items.HealingPotions, 10)},
		{"mana potions", strconv.FormatUint(snap.Items.ManaPotions, 10)},
		{"magic potions", strconv.FormatUint(snap.Items.MagicPotions, 10)},
		{"swords", strconv.FormatUint(snap.Items.Swords, 10)},
		{"shields", strconv.FormatUint(snap.Items.Shields, 10)},
	}).Render()
}

func renderCreatures(snap *arena.Snapshot, mineOnly bool) {
	if snap == nil {
		pterm.Info.Println("no snapshot yet, run refresh while connected")

		return
	}

	set := snap.Creatures
	if mineOnly {
		set = snap.Mine
	}

	data := pterm.TableData{{"id", "name", "lv", "atk", "def", "hp", "power", "owner", "for sale", "price"}}

	for _, c := range set {
		price := ""
		if c.ForSale && c.Price != nil {
			price = c.Price.String()
		}

		data = append(data, []string{
			strconv.FormatUint(c.ID, 10),
			c.Name,
			strconv.FormatUint(c.Level, 10),
			strconv.FormatUint(c.Attack, 10),
			strconv.FormatUint(c.Defense, 10),
			strconv.FormatUint(c.HitPoints, 10),
			strconv.FormatUint(c.Power(), 10),
			c.Owner.Hex(),
			strconv.FormatBool(c.ForSale),
			price,
		})
	}

	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
