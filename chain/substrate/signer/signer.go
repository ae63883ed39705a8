package signer

import (
	"context"
	"fmt"
	"strings"

	hb "github.com/cordialsys/hopbridge"
	"github.com/cordialsys/hopbridge/chain/substrate/address"
	"github.com/cordialsys/hopbridge/chain/substrate/client"
	"github.com/cordialsys/hopbridge/chain/substrate/tx"
	"github.com/cordialsys/hopbridge/chain/substrate/tx_input"
	"github.com/cordialsys/hopbridge/errors"
	"github.com/cordialsys/hopbridge/gateway"
	"github.com/sirupsen/logrus"
	"github.com/vedhavyas/go-subkey/v2"
	"github.com/vedhavyas/go-subkey/v2/sr25519"
)

// Secret URI of the hub account, e.g. a hex seed, a mnemonic or "//Alice".
const EnvSecretURI = "HOP_SUBSTRATE_SURI"

// Signer holds an sr25519 keypair and signs hub extrinsics with it.
type Signer struct {
	client  *client.Client
	keyPair subkey.KeyPair
	address hb.Address
}

var _ gateway.SubstrateGateway = &Signer{}

func NewSigner(client *client.Client, secretURI string) (*Signer, error) {
	secretURI = strings.TrimSpace(secretURI)
	if secretURI == "" {
		return nil, fmt.Errorf("substrate secret uri is empty")
	}
	keyPair, err := subkey.DeriveKeyPair(sr25519.Scheme{}, secretURI)
	if err != nil {
		return nil, fmt.Errorf("invalid substrate secret uri: %v", err)
	}
	addr, err := client.AddressBuilder().GetAddressFromPublicKey(keyPair.Public())
	if err != nil {
		return nil, err
	}
	return &Signer{
		client:  client,
		keyPair: keyPair,
		address: addr,
	}, nil
}

func (s *Signer) Address() hb.Address {
	return s.address
}

// Sign builds and signs the extrinsic for call using txInput.
func (s *Signer) Sign(call *hb.SubstrateCall, txInput *tx_input.TxInput) (*tx.Tx, error) {
	sender, err := address.DecodeMulti(s.address)
	if err != nil {
		return nil, err
	}
	if call.Tip != nil {
		txInput.Tip = *call.Tip
	}
	extrinsic, err := tx.NewTx(call.Call, sender, txInput)
	if err != nil {
		return nil, err
	}
	sighash, err := extrinsic.Sighash()
	if err != nil {
		return nil, err
	}
	signature, err := s.keyPair.Sign(sighash)
	if err != nil {
		return nil, errors.SignatureDeclinedf("could not sign %s: %v", call.Method, err)
	}
	if err := extrinsic.SetSignature(signature); err != nil {
		return nil, err
	}
	return extrinsic, nil
}

// SignAndSubmitSubstrate signs call as its sender and watches it on the hub.
func (s *Signer) SignAndSubmitSubstrate(ctx context.Context, call *hb.SubstrateCall) (gateway.Subscription, error) {
	if !address.SameAccount(call.From, s.address) {
		return nil, errors.SignatureDeclinedf("signer holds %s, cannot sign for %s", s.address, call.From)
	}
	txInput, err := s.client.FetchTxInput(ctx, s.address)
	if err != nil {
		return nil, err
	}
	extrinsic, err := s.Sign(call, txInput)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"method": call.Method,
		"nonce":  txInput.Nonce,
		"tip":    txInput.Tip,
		"hash":   extrinsic.Hash(),
	}).Info("submitting extrinsic")
	return s.client.SubmitAndWatch(ctx, extrinsic)
}
