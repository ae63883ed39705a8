package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	gsrpc "github.com/centrifuge/go-substrate-rpc-client/v4"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
	hb "github.com/cordialsys/hopbridge"
	"github.com/cordialsys/hopbridge/chain/substrate/address"
	"github.com/cordialsys/hopbridge/chain/substrate/tx"
	"github.com/cordialsys/hopbridge/chain/substrate/tx_input"
	"github.com/cordialsys/hopbridge/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Client for the hub parachain: XCM quotes, transfer_assets payloads and their
// validation, balances and extrinsic submission.
type Client struct {
	DotClient  *gsrpc.SubstrateAPI
	ss58Prefix uint16
	// applied to the estimated tip
	tipMultiplier decimal.Decimal
	maxTip        uint64

	metaLock sync.Mutex
	meta     *tx_input.Metadata
}

type ClientOption func(c *Client)

func WithSS58Prefix(prefix uint16) ClientOption {
	return func(c *Client) {
		c.ss58Prefix = prefix
	}
}

func WithTipMultiplier(multiplier decimal.Decimal) ClientOption {
	return func(c *Client) {
		c.tipMultiplier = multiplier
	}
}

func WithMaxTip(max uint64) ClientOption {
	return func(c *Client) {
		c.maxTip = max
	}
}

// WithMetadata pins the call indices instead of reading them from the runtime.
func WithMetadata(meta tx_input.Metadata) ClientOption {
	return func(c *Client) {
		c.meta = &meta
	}
}

// NewClient returns a new hub Client
func NewClient(url string, options ...ClientOption) (*Client, error) {
	if url == "" {
		return nil, fmt.Errorf("hub rpc url is not set")
	}
	api, err := gsrpc.NewSubstrateAPI(url)
	if err != nil {
		// connectivity is checked on first use
		logrus.WithField("url", url).Warnf("could not connect to hub rpc: %v", err)
	}
	return NewClientFromAPI(api, options...), nil
}

func NewClientFromAPI(api *gsrpc.SubstrateAPI, options ...ClientOption) *Client {
	client := &Client{
		DotClient:     api,
		ss58Prefix:    address.GenericPrefix,
		tipMultiplier: decimal.NewFromInt(1),
	}
	for _, opt := range options {
		opt(client)
	}
	return client
}

func (client *Client) AddressBuilder() address.AddressBuilder {
	return address.NewAddressBuilder(client.ss58Prefix)
}

func (client *Client) connected() error {
	if client.DotClient == nil {
		return fmt.Errorf("not connected to the hub")
	}
	return nil
}

// CallMetadata returns the transfer call indices, read once from the runtime.
func (client *Client) CallMetadata(ctx context.Context) (*tx_input.Metadata, error) {
	client.metaLock.Lock()
	defer client.metaLock.Unlock()
	if client.meta != nil {
		return client.meta, nil
	}
	if err := client.connected(); err != nil {
		return nil, err
	}
	meta, err := client.DotClient.RPC.State.GetMetadataLatest()
	if err != nil {
		return nil, err
	}
	parsed, err := tx_input.ParseMeta(meta)
	if err != nil {
		return nil, err
	}
	client.meta = &parsed
	return client.meta, nil
}

func (client *Client) FetchTxInputChain() (*types.Metadata, *tx_input.TxInput, error) {
	txInput := tx_input.NewTxInput()
	if err := client.connected(); err != nil {
		return nil, txInput, err
	}
	rpc := client.DotClient.RPC
	meta, err := rpc.State.GetMetadataLatest()
	if err != nil {
		return meta, &tx_input.TxInput{}, err
	}
	txInput.Meta, err = tx_input.ParseMeta(meta)
	if err != nil {
		return meta, &tx_input.TxInput{}, err
	}
	txInput.GenesisHash, err = rpc.Chain.GetBlockHash(0)
	if err != nil {
		return meta, &tx_input.TxInput{}, err
	}
	rv, err := rpc.State.GetRuntimeVersionLatest()
	if err != nil {
		return meta, &tx_input.TxInput{}, err
	}
	txInput.Rv = *rv
	header, err := rpc.Chain.GetHeaderLatest()
	if err != nil {
		return meta, &tx_input.TxInput{}, err
	}
	txInput.CurrentHeight = uint64(header.Number)
	txInput.CurHash, err = rpc.Chain.GetBlockHash(txInput.CurrentHeight)
	if err != nil {
		return meta, &tx_input.TxInput{}, err
	}
	return meta, txInput, nil
}

func (client *Client) FetchAccountNonce(meta types.Metadata, from hb.Address) (uint64, error) {
	sender, err := address.DecodeMulti(from)
	if err != nil {
		return 0, err
	}
	storageKey, err := types.CreateStorageKey(&meta, "System", "Account", sender.AsID[:])
	if err != nil {
		return 0, err
	}
	var accountInfo AccountInfoMinimal
	ok, err := client.DotClient.RPC.State.GetStorageLatest(storageKey, &accountInfo)
	if err != nil || !ok {
		return 0, err
	}
	return uint64(accountInfo.Nonce), nil
}

// FetchTxInput returns everything needed to sign an extrinsic from `from`.
func (client *Client) FetchTxInput(ctx context.Context, from hb.Address) (*tx_input.TxInput, error) {
	meta, txInput, err := client.FetchTxInputChain()
	if err != nil {
		return &tx_input.TxInput{}, err
	}
	txInput.Nonce, err = client.FetchAccountNonce(*meta, from)
	if err != nil {
		return &tx_input.TxInput{}, err
	}
	tip, err := client.EstimateTip(ctx)
	if err != nil {
		logrus.WithError(err).Warn("could not estimate tip")
	}
	txInput.Tip = client.adjustTip(tip)
	return txInput, nil
}

func (client *Client) adjustTip(tip uint64) uint64 {
	input := tx_input.TxInput{Tip: tip}
	input.ApplyTipMultiplier(client.tipMultiplier)
	if client.maxTip > 0 {
		input.CapTip(client.maxTip)
	}
	return input.Tip
}

// EstimateTip looks at the latest extrinsics to try to calculate an average tip paid
func (client *Client) EstimateTip(ctx context.Context) (uint64, error) {
	if err := client.connected(); err != nil {
		return 0, err
	}
	block, err := client.DotClient.RPC.Chain.GetBlockLatest()
	if err != nil {
		return 0, err
	}

	var total uint64
	var count uint64
	for _, ext := range block.Block.Extrinsics {
		tip := ext.Signature.Tip.Int64()
		if tip > 0 {
			total += uint64(tip)
			count += 1
		}
	}
	if count < 5 {
		return 0, nil
	}

	return total / count, nil
}

type RpcError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// The current rpc client omits the .data in it's err.Error() method
func AsRpcErrorMaybe(inputError error) error {
	bz, err := json.Marshal(inputError)
	if err != nil {
		return inputError
	}
	var outputError RpcError
	err = json.Unmarshal(bz, &outputError)
	if err != nil {
		return inputError
	}
	if outputError.Code != 0 && len(outputError.Message) > 0 {
		if outputError.Data != nil {
			return fmt.Errorf("%s: %v (%d)", outputError.Message, outputError.Data, outputError.Code)
		} else {
			return fmt.Errorf("%s (%d)", outputError.Message, outputError.Code)
		}
	}
	return inputError
}

// classifySubmitError tags node rejections; an already imported extrinsic is
// reported as nil.
func classifySubmitError(err error) error {
	if err == nil {
		return nil
	}
	err = AsRpcErrorMaybe(err)
	if strings.Contains(strings.ToLower(err.Error()), "transaction already imported") {
		return nil
	}
	return errors.SubmissionFailedf("%v", err)
}

// SubmitTx submits a signed extrinsic without watching it
func (client *Client) SubmitTx(ctx context.Context, signed *tx.Tx) error {
	if err := client.connected(); err != nil {
		return err
	}
	data, err := signed.Serialize()
	if err != nil {
		return err
	}

	var res string
	encoded := codec.HexEncodeToString(data)
	logrus.WithField("tx", encoded).Debug("submitting tx")
	err = client.DotClient.Client.Call(&res, "author_submitExtrinsic", encoded)
	return classifySubmitError(err)
}
