package timelock

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/smartcontractkit/timelock"
	"github.com/smartcontractkit/timelock/clock"
	"github.com/smartcontractkit/timelock/sdk"
	solanasdk "github.com/smartcontractkit/timelock/sdk/solana"
	"github.com/smartcontractkit/timelock/store/boltdb"
	"github.com/smartcontractkit/timelock/store/sqlite"
	"github.com/smartcontractkit/timelock/types"
)

const (
	storeBolt   = "bolt"
	storeSQLite = "sqlite"
)

// settings are read from the environment (and a .env file) and overridden by flags.
type settings struct {
	PrivateKey string `validate:"required"`
	Store      string `validate:"oneof=bolt sqlite"`
	StorePath  string `validate:"required"`
	ProgramID  string
	RPCURL     string `validate:"omitempty,url"`
	Tick       uint64
	Debug      bool
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func loadSettings(cmd *cobra.Command) (settings, error) {
	// a missing .env is fine, the environment may already be set
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return settings{}, fmt.Errorf("unable to load .env file: %w", err)
	}

	s := settings{
		PrivateKey: os.Getenv("PRIVATE_KEY"),
		Store:      os.Getenv("TIMELOCK_STORE"),
		StorePath:  os.Getenv("TIMELOCK_STORE_PATH"),
		ProgramID:  os.Getenv("TIMELOCK_PROGRAM_ID"),
		RPCURL:     os.Getenv("RPC_URL"),
	}
	if s.Store == "" {
		s.Store = storeBolt
	}
	if tick := os.Getenv("TIMELOCK_TICK"); tick != "" {
		v, err := cast.ToUint64E(tick)
		if err != nil {
			return settings{}, fmt.Errorf("invalid TIMELOCK_TICK %q: %w", tick, err)
		}
		s.Tick = v
	}

	flags := cmd.Flags()
	if flags.Changed("store") {
		s.Store, _ = flags.GetString("store")
	}
	if flags.Changed("store-path") {
		s.StorePath, _ = flags.GetString("store-path")
	}
	if flags.Changed("program-id") {
		s.ProgramID, _ = flags.GetString("program-id")
	}
	if flags.Changed("rpc-url") {
		s.RPCURL, _ = flags.GetString("rpc-url")
	}
	if flags.Changed("tick") {
		s.Tick, _ = flags.GetUint64("tick")
	}
	s.Debug, _ = flags.GetBool("debug")

	if err := validate.Struct(s); err != nil {
		return settings{}, fmt.Errorf("invalid settings: %w", err)
	}

	return s, nil
}

// environment holds everything a command needs to talk to the engine.
type environment struct {
	ctx       context.Context
	engine    *timelock.Engine
	inspector *timelock.Inspector
	caller    solana.PublicKey
	close     func() error
}

func openEnvironment(cmd *cobra.Command) (*environment, error) {
	s, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}

	pk, err := solana.PrivateKeyFromBase58(s.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("unable to parse PRIVATE_KEY: %w", err)
	}
	caller := pk.PublicKey()

	programID := solanasdk.DefaultProgramID
	if s.ProgramID != "" {
		programID, err = solana.PublicKeyFromBase58(s.ProgramID)
		if err != nil {
			return nil, fmt.Errorf("unable to parse program id: %w", err)
		}
	}

	logger, err := newLogger(s.Debug)
	if err != nil {
		return nil, err
	}
	ctx := sdk.ContextWithLogger(cmd.Context(), logger.Sugar())

	store, closeStore, err := openStore(s)
	if err != nil {
		return nil, err
	}

	var clk sdk.Clock = clock.NewManual(s.Tick)
	if s.RPCURL != "" {
		clk = solanasdk.NewSlotClock(rpc.New(s.RPCURL), rpc.CommitmentFinalized)
	}

	router := solanasdk.NewRouter(programID,
		solanasdk.WithSigners(caller),
		solanasdk.WithFallbackProgram(solanasdk.ProgramFunc(logDelegatedCall)),
	)

	return &environment{
		ctx:       ctx,
		engine:    timelock.NewEngine(store, clk, router, timelock.WithProgramID(programID)),
		inspector: timelock.NewInspector(store, clk),
		caller:    caller,
		close: func() error {
			_ = logger.Sync()
			return closeStore()
		},
	}, nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}

	return zap.NewProduction()
}

func openStore(s settings) (sdk.Store, func() error, error) {
	switch s.Store {
	case storeSQLite:
		store, err := sqlite.Open(s.StorePath)
		if err != nil {
			return nil, nil, err
		}

		return store, store.Close, nil
	default:
		store, err := boltdb.Open(s.StorePath)
		if err != nil {
			return nil, nil, err
		}

		return store, store.Close, nil
	}
}

// logDelegatedCall stands in for programs the CLI has no implementation for.
func logDelegatedCall(ctx context.Context, accounts []*solana.AccountMeta, data []byte) error {
	sdk.LoggerFrom(ctx).Infof("delegated call with %d accounts, data %s", len(accounts), hexutil.Encode(data))
	return nil
}

// withEnvironment opens the environment, runs fn and closes it again.
func withEnvironment(cmd *cobra.Command, fn func(env *environment) error) error {
	env, err := openEnvironment(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	return fn(env)
}

func parsePublicKey(name, value string) (solana.PublicKey, error) {
	key, err := solana.PublicKeyFromBase58(value)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}

	return key, nil
}

// parseAccount parses an account flag of the form <pubkey>[:s][:w]. The s suffix marks the
// account as an authorizer, w as mutable.
func parseAccount(value string) (types.AccountParameter, error) {
	parts := strings.Split(value, ":")

	identity, err := parsePublicKey("account", parts[0])
	if err != nil {
		return types.AccountParameter{}, err
	}

	param := types.AccountParameter{Identity: identity}
	for _, flag := range parts[1:] {
		switch flag {
		case "s":
			param.IsAuthorizer = true
		case "w":
			param.IsMutable = true
		default:
			return types.AccountParameter{}, fmt.Errorf("invalid account flag %q in %q", flag, value)
		}
	}

	return param, nil
}
