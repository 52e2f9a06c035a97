package arena

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Status is the connectivity state of the wallet session.
type Status uint8

const (
	StatusDisconnected Status = iota
	StatusConnecting
	StatusConnected
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Wallet is the signing side of the session. The wallet itself is an
// external collaborator; the client only needs an address and transactors.
type Wallet interface {
	Address() common.Address
	NewTransactor(ctx context.Context) (*bind.TransactOpts, error)
}

// Session tracks the connected wallet for the lifetime of the client.
// Balances and the creature cache are only fetched while it is connected.
type Session struct {
	mu     sync.RWMutex
	wallet Wallet
	status Status
	err    error
}

func NewSession() *Session {
	return &Session{status: StatusDisconnected}
}

func (s *Session) Connecting() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status = StatusConnecting
	s.err = nil
}

// Connect binds a wallet to the session and marks it connected.
func (s *Session) Connect(w Wallet) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.wallet = w
	s.status = StatusConnected
	s.err = nil
}

// Fail records a connectivity error. The error stays visible until the next
// Connect or Disconnect; it is a banner condition, not a notification.
func (s *Session) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.wallet = nil
	s.status = StatusError
	s.err = err
}

func (s *Session) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.wallet = nil
	s.status = StatusDisconnected
	s.err = nil
}

func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.status
}

func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.err
}

func (s *Session) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.status == StatusConnected && s.wallet != nil
}

// Wallet returns the bound wallet, or false when not connected.
func (s *Session) Wallet() (Wallet, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.status != StatusConnected || s.wallet == nil {
		return nil, false
	}

	return s.wallet, true
}

// Address returns the session address, or false when not connected.
func (s *Session) Address() (common.Address, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.status != StatusConnected || s.wallet == nil {
		return common.Address{}, false
	}

	return s.wallet.Address(), true
}

// KeyWallet signs with a raw private key. It is the headless stand-in for a
// browser wallet; rejection before submission is the only client-side cancel.
type KeyWallet struct {
	key     *ecdsa.PrivateKey
	addr    common.Address
	chainID *big.Int
}

func NewKeyWallet(hexKey string, chainID *big.Int) (*KeyWallet, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, err
	}

	return &KeyWallet{
		key:     key,
		addr:    crypto.PubkeyToAddress(key.PublicKey),
		chainID: chainID,
	}, nil
}

func (w *KeyWallet) Address() common.Address {
	return w.addr
}

func (w *KeyWallet) NewTransactor(ctx context.Context) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(w.key, w.chainID)
	if err != nil {
		return nil, err
	}

	opts.Context = ctx

	return opts, nil
}
