package arena

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

// Well-known hardhat development key; never holds real funds.
const devKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func TestKeyWallet(t *testing.T) {
	wallet, err := NewKeyWallet(devKey, big.NewInt(56))
	require.NoError(t, err)

	require.Equal(t, common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"), wallet.Address())

	opts, err := wallet.NewTransactor(t.Context())
	require.NoError(t, err)
	require.Equal(t, wallet.Address(), opts.From)
	require.NotNil(t, opts.Signer)
	require.Equal(t, t.Context(), opts.Context)
}

func TestKeyWalletHexPrefix(t *testing.T) {
	wallet, err := NewKeyWallet("0x"+devKey, big.NewInt(56))
	require.NoError(t, err)
	require.Equal(t, common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"), wallet.Address())
}

func TestKeyWalletBadKey(t *testing.T) {
	_, err := NewKeyWallet("not-a-key", big.NewInt(56))
	require.Error(t, err)
}

func TestSessionLifecycle(t *testing.T) {
	s := NewSession()

	require.Equal(t, StatusDisconnected, s.Status())
	require.False(t, s.Connected())

	_, ok := s.Address()
	require.False(t, ok)

	s.Connecting()
	require.Equal(t, StatusConnecting, s.Status())
	require.False(t, s.Connected())

	wallet := fakeWallet{addr: common.HexToAddress("0x01")}
	s.Connect(wallet)
	require.Equal(t, StatusConnected, s.Status())
	require.True(t, s.Connected())

	addr, ok := s.Address()
	require.True(t, ok)
	require.Equal(t, wallet.addr, addr)

	s.Disconnect()
	require.Equal(t, StatusDisconnected, s.Status())
	require.NoError(t, s.Err())

	_, ok = s.Wallet()
	require.False(t, ok)
}

// A connectivity failure is a persistent banner state, cleared only by the
// next successful connect.
func TestSessionFail(t *testing.T) {
	s := NewSession()
	s.Connect(fakeWallet{addr: common.HexToAddress("0x01")})

	failure := errors.New("wrong network")
	s.Fail(failure)

	require.Equal(t, StatusError, s.Status())
	require.ErrorIs(t, s.Err(), failure)
	require.False(t, s.Connected())

	_, ok := s.Address()
	require.False(t, ok)

	s.Connect(fakeWallet{addr: common.HexToAddress("0x02")})
	require.NoError(t, s.Err())
	require.True(t, s.Connected())
}

func TestStatusString(t *testing.T) {
	require.Equal(t, "disconnected", StatusDisconnected.String())
	require.Equal(t, "connecting", StatusConnecting.String())
	require.Equal(t, "connected", StatusConnected.String())
	require.Equal(t, "error", StatusError.String())
	require.Equal(t, "unknown", Status(200).String())
}
