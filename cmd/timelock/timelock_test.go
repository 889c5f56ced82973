package timelock

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcontractkit/timelock"
	"github.com/smartcontractkit/timelock/types"
)

func setupEnv(t *testing.T, store string) solana.PrivateKey {
	t.Helper()

	pk, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	t.Setenv("PRIVATE_KEY", pk.String())
	t.Setenv("TIMELOCK_STORE", store)
	t.Setenv("TIMELOCK_STORE_PATH", filepath.Join(t.TempDir(), "timelock.db"))
	t.Setenv("TIMELOCK_PROGRAM_ID", "")
	t.Setenv("RPC_URL", "")
	t.Setenv("TIMELOCK_TICK", "")

	return pk
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := BuildTimelockCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())

	return out.String(), err
}

func TestTimelockCmd_Lifecycle(t *testing.T) {
	for _, store := range []string{storeBolt, storeSQLite} {
		t.Run(store, func(t *testing.T) {
			pk := setupEnv(t, store)
			caller := pk.PublicKey()
			target := solana.NewWallet().PublicKey()

			out, err := run(t, "config", "create", "--id", "1", "--delay", "10", "--proposer", caller.String())
			require.NoError(t, err)
			assert.Contains(t, out, "Timelock tiME1hz9F5C5ZecbvE5z6Msjy8PKfTqo1UuRYXfndKF.1 created")

			out, err = run(t, "batch", "create", "--id", "1")
			require.NoError(t, err)
			batch := strings.TrimSpace(out)
			_, err = solana.PublicKeyFromBase58(batch)
			require.NoError(t, err)

			_, err = run(t, "batch", "add", "--batch", batch, "--target", target.String(),
				"--account", solana.NewWallet().PublicKey().String()+":w", "--data", "0x0102")
			require.NoError(t, err)
			_, err = run(t, "batch", "add", "--batch", batch, "--target", target.String())
			require.NoError(t, err)

			out, err = run(t, "batch", "seal", "--batch", batch)
			require.NoError(t, err)
			assert.Equal(t, "Batch "+batch+" is Sealed\n", out)

			out, err = run(t, "batch", "approve", "--batch", batch, "--tick", "100")
			require.NoError(t, err)
			assert.Equal(t, "Batch "+batch+" is Enqueued\n", out)

			_, err = run(t, "batch", "execute", "--batch", batch, "--tick", "110")
			require.ErrorIs(t, err, timelock.ErrTooEarly)

			out, err = run(t, "batch", "execute", "--batch", batch, "--tick", "111", "--all")
			require.NoError(t, err)
			assert.Contains(t, out, "Operation 0 (")
			assert.Contains(t, out, "Operation 1 (")
			assert.Contains(t, out, "batch is Executed")

			out, err = run(t, "batch", "show", "--batch", batch)
			require.NoError(t, err)
			assert.Contains(t, out, `"status": "Executed"`)
			assert.Contains(t, out, `"enqueuedAtTick": 100`)

			out, err = run(t, "config", "show", "--id", "1")
			require.NoError(t, err)
			assert.Contains(t, out, `"administrator": "`+caller.String()+`"`)
			assert.Contains(t, out, `"delayTicks": 10`)
		})
	}
}

func TestTimelockCmd_Administration(t *testing.T) {
	setupEnv(t, storeBolt)
	newAdmin := solana.NewWallet().PublicKey()

	_, err := run(t, "config", "create", "--id", "2", "--delay", "10")
	require.NoError(t, err)

	out, err := run(t, "batch", "create", "--id", "2")
	require.NoError(t, err)
	batch := strings.TrimSpace(out)
	_, err = run(t, "batch", "seal", "--batch", batch)
	require.NoError(t, err)
	_, err = run(t, "batch", "approve", "--batch", batch, "--tick", "50")
	require.NoError(t, err)

	out, err = run(t, "batch", "veto", "--batch", batch, "--tick", "55")
	require.NoError(t, err)
	assert.Equal(t, "Batch "+batch+" is Cancelled\n", out)

	out, err = run(t, "config", "set-delay", "--id", "2", "--delay", "0")
	require.NoError(t, err)
	assert.Equal(t, "Delay of timelock 2 set to 0 ticks\n", out)

	_, err = run(t, "config", "set-admin", "--id", "2", "--admin", newAdmin.String())
	require.NoError(t, err)

	_, err = run(t, "config", "set-delay", "--id", "2", "--delay", "5")
	require.ErrorIs(t, err, timelock.ErrUnauthorized)

	_, err = run(t, "config", "create", "--id", "3", "--max-proposers", "1",
		"--proposer", newAdmin.String(), "--proposer", newAdmin.String())
	require.ErrorIs(t, err, timelock.ErrInvalidCapacity)

	_, err = run(t, "config", "create", "--id", "3", "--max-proposers", "70000")
	require.ErrorContains(t, err, "exceeds uint16 range")
}

func TestLoadSettings(t *testing.T) {
	tests := []struct {
		name     string
		giveEnv  map[string]string
		giveArgs []string
		want     settings
		wantErr  string
	}{
		{
			name:    "success: defaults",
			giveEnv: map[string]string{"PRIVATE_KEY": "key", "TIMELOCK_STORE_PATH": "/tmp/a.db"},
			want:    settings{PrivateKey: "key", Store: storeBolt, StorePath: "/tmp/a.db"},
		},
		{
			name: "success: environment",
			giveEnv: map[string]string{
				"PRIVATE_KEY": "key", "TIMELOCK_STORE": "sqlite", "TIMELOCK_STORE_PATH": "/tmp/a.db",
				"RPC_URL": "http://localhost:8899", "TIMELOCK_TICK": "42",
			},
			want: settings{
				PrivateKey: "key", Store: storeSQLite, StorePath: "/tmp/a.db",
				RPCURL: "http://localhost:8899", Tick: 42,
			},
		},
		{
			name:     "success: flags override environment",
			giveEnv:  map[string]string{"PRIVATE_KEY": "key", "TIMELOCK_STORE_PATH": "/tmp/a.db", "TIMELOCK_TICK": "42"},
			giveArgs: []string{"--store", "sqlite", "--store-path", "/tmp/b.db", "--tick", "7", "--debug"},
			want:     settings{PrivateKey: "key", Store: storeSQLite, StorePath: "/tmp/b.db", Tick: 7, Debug: true},
		},
		{
			name:    "failure: missing private key",
			giveEnv: map[string]string{"TIMELOCK_STORE_PATH": "/tmp/a.db"},
			wantErr: "PrivateKey",
		},
		{
			name:    "failure: unknown store",
			giveEnv: map[string]string{"PRIVATE_KEY": "key", "TIMELOCK_STORE": "redis", "TIMELOCK_STORE_PATH": "/tmp/a.db"},
			wantErr: "Store",
		},
		{
			name:    "failure: invalid rpc url",
			giveEnv: map[string]string{"PRIVATE_KEY": "key", "TIMELOCK_STORE_PATH": "/tmp/a.db", "RPC_URL": "not a url"},
			wantErr: "RPCURL",
		},
		{
			name:    "failure: invalid tick",
			giveEnv: map[string]string{"PRIVATE_KEY": "key", "TIMELOCK_STORE_PATH": "/tmp/a.db", "TIMELOCK_TICK": "soon"},
			wantErr: "invalid TIMELOCK_TICK",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{
				"PRIVATE_KEY", "TIMELOCK_STORE", "TIMELOCK_STORE_PATH", "TIMELOCK_PROGRAM_ID", "RPC_URL", "TIMELOCK_TICK",
			} {
				t.Setenv(key, tt.giveEnv[key])
			}

			cmd := BuildTimelockCmd()
			require.NoError(t, cmd.ParseFlags(tt.giveArgs))

			got, err := loadSettings(cmd)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAccount(t *testing.T) {
	t.Parallel()

	key := solana.NewWallet().PublicKey()

	tests := []struct {
		name    string
		give    string
		want    types.AccountParameter
		wantErr string
	}{
		{name: "plain", give: key.String(), want: types.AccountParameter{Identity: key}},
		{name: "authorizer", give: key.String() + ":s", want: types.AccountParameter{Identity: key, IsAuthorizer: true}},
		{
			name: "authorizer and mutable",
			give: key.String() + ":w:s",
			want: types.AccountParameter{Identity: key, IsAuthorizer: true, IsMutable: true},
		},
		{name: "unknown flag", give: key.String() + ":x", wantErr: `invalid account flag "x"`},
		{name: "invalid key", give: "nope:w", wantErr: `invalid account "nope"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := parseAccount(tt.give)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
