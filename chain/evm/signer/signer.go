package signer

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"strings"
	"time"

	hb "github.com/cordialsys/hopbridge"
	"github.com/cordialsys/hopbridge/chain/evm/client"
	"github.com/cordialsys/hopbridge/chain/evm/tx"
	"github.com/cordialsys/hopbridge/errors"
	"github.com/cordialsys/hopbridge/gateway"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sirupsen/logrus"
)

const EnvPrivateKey = "HOP_EVM_PRIVATE_KEY"

const DefaultPollInterval = 4 * time.Second

// Signer holds a local secp256k1 key and signs EIP-1559 transactions with it.
type Signer struct {
	client          *client.Client
	key             *ecdsa.PrivateKey
	address         hb.Address
	pollInterval    time.Duration
	ensureAllowance bool
}

var _ gateway.EvmGateway = &Signer{}

type SignerOption func(s *Signer)

func WithPollInterval(interval time.Duration) SignerOption {
	return func(s *Signer) {
		s.pollInterval = interval
	}
}

// WithEnsureAllowance approves the spender of a call before sending it, when
// the current allowance does not cover the call.
func WithEnsureAllowance(enabled bool) SignerOption {
	return func(s *Signer) {
		s.ensureAllowance = enabled
	}
}

func NewSigner(client *client.Client, privateKeyHex string, options ...SignerOption) (*Signer, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid evm private key: %v", err)
	}
	s := &Signer{
		client:       client,
		key:          key,
		address:      hb.Address(crypto.PubkeyToAddress(key.PublicKey).Hex()).Normalize(),
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

func (s *Signer) Address() hb.Address {
	return s.address
}

func (s *Signer) sign(ctx context.Context, call *hb.EvmCall) (*tx.Tx, error) {
	input, err := s.client.FetchTxInput(ctx, call)
	if err != nil {
		return nil, err
	}
	trans := tx.NewTx(call, input)
	sighash, err := trans.Sighash()
	if err != nil {
		return nil, err
	}
	signature, err := crypto.Sign(sighash, s.key)
	if err != nil {
		return nil, err
	}
	if err := trans.SetSignature(signature); err != nil {
		return nil, err
	}
	return trans, nil
}

func (s *Signer) signAndSubmit(ctx context.Context, call *hb.EvmCall) (hb.TxHash, error) {
	trans, err := s.sign(ctx, call)
	if err != nil {
		return "", err
	}
	if err := s.client.SubmitTx(ctx, trans); err != nil {
		return "", err
	}
	hash := trans.Hash()
	logrus.WithFields(logrus.Fields{
		"hash": hash,
		"to":   call.To,
	}).Info("submitted evm transaction")
	return hash, nil
}

// SignAndSubmitEvm signs call with the local key and broadcasts it.
func (s *Signer) SignAndSubmitEvm(ctx context.Context, call *hb.EvmCall) (hb.TxHash, error) {
	if call.From.Normalize() != s.address {
		return "", errors.SignatureDeclinedf("signer %s cannot sign for %s", s.address, call.From)
	}
	if s.ensureAllowance && call.Allowance != nil {
		if err := s.EnsureAllowance(ctx, call); err != nil {
			return "", err
		}
	}
	return s.signAndSubmit(ctx, call)
}

// EnsureAllowance approves call.To for the allowance the call needs, and waits
// for the approval to be included.
func (s *Signer) EnsureAllowance(ctx context.Context, call *hb.EvmCall) error {
	required := call.Allowance.Amount
	current, err := s.client.Allowance(ctx, call.Allowance.Token, call.From, call.To)
	if err != nil {
		return err
	}
	if current.Cmp(&required) >= 0 {
		return nil
	}
	log := logrus.WithFields(logrus.Fields{
		"token":     call.Allowance.Token,
		"spender":   call.To,
		"allowance": current.String(),
		"required":  required.String(),
	})
	log.Info("approving spender")
	approve, err := s.client.ApproveCall(call.From, call.Allowance.Token, call.To, required)
	if err != nil {
		return err
	}
	hash, err := s.signAndSubmit(ctx, approve)
	if err != nil {
		return err
	}
	receipt, err := s.AwaitEvmConfirmation(ctx, hash)
	if err != nil {
		return err
	}
	if !receipt.Success {
		return errors.SubmissionFailedf("approval %s reverted", hash)
	}
	log.WithField("hash", hash).Info("approval confirmed")
	return nil
}

// AwaitEvmConfirmation polls for the receipt until the transaction is included.
func (s *Signer) AwaitEvmConfirmation(ctx context.Context, hash hb.TxHash) (gateway.EvmReceipt, error) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()
	for {
		receipt, err := s.client.FetchReceipt(ctx, hash)
		if err != nil {
			logrus.WithField("hash", hash).WithError(err).Debug("could not fetch receipt")
		} else if receipt != nil {
			result := gateway.EvmReceipt{
				TxHash:    hash,
				BlockHash: receipt.BlockHash.Hex(),
				Success:   receipt.Status == 1,
			}
			if receipt.BlockNumber != nil {
				result.BlockNumber = receipt.BlockNumber.Uint64()
			}
			return result, nil
		}
		select {
		case <-ctx.Done():
			return gateway.EvmReceipt{}, ctx.Err()
		case <-ticker.C:
		}
	}
}
