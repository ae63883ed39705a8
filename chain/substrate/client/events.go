package client

import (
	"fmt"
	"strings"

	"github.com/centrifuge/go-substrate-rpc-client/v4/registry"
	"github.com/centrifuge/go-substrate-rpc-client/v4/registry/parser"
	"github.com/centrifuge/go-substrate-rpc-client/v4/registry/retriever"
	"github.com/centrifuge/go-substrate-rpc-client/v4/registry/state"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
)

const EventExtrinsicFailed = "System.ExtrinsicFailed"

// GetEvents returns every event emitted in the block.
func (client *Client) GetEvents(blockHash types.Hash) ([]*parser.Event, error) {
	if err := client.connected(); err != nil {
		return nil, err
	}
	retriever, err := retriever.NewDefaultEventRetriever(state.NewEventProvider(client.DotClient.RPC.State), client.DotClient.RPC.State)
	if err != nil {
		return nil, err
	}
	return retriever.GetEvents(blockHash)
}

// DispatchError looks for a failure event of the extrinsic at index and
// describes it.
func DispatchError(events []*parser.Event, index uint32) (string, bool) {
	for _, event := range events {
		if event.Phase == nil || !event.Phase.IsApplyExtrinsic || event.Phase.AsApplyExtrinsic != index {
			continue
		}
		if !strings.EqualFold(event.Name, EventExtrinsicFailed) {
			continue
		}
		parts := []string{}
		for _, field := range event.Fields {
			if field == nil || field.Name == "dispatch_info" {
				continue
			}
			parts = append(parts, describeField(field))
		}
		if len(parts) == 0 {
			return EventExtrinsicFailed, true
		}
		return fmt.Sprintf("%s: %s", EventExtrinsicFailed, strings.Join(parts, ", ")), true
	}
	return "", false
}

func describeField(field *registry.DecodedField) string {
	value := describeValue(field.Value)
	if field.Name == "" {
		return value
	}
	return field.Name + ": " + value
}

func describeValue(value any) string {
	switch value := value.(type) {
	case registry.DecodedFields:
		parts := make([]string, 0, len(value))
		for _, field := range value {
			if field != nil {
				parts = append(parts, describeField(field))
			}
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *registry.DecodedField:
		return describeField(value)
	case []any:
		if bz, ok := asBytes(value); ok {
			return codec.HexEncodeToString(bz)
		}
		parts := make([]string, 0, len(value))
		for _, v := range value {
			parts = append(parts, describeValue(v))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprint(value)
	}
}

func asBytes(values []any) ([]byte, bool) {
	bz := make([]byte, 0, len(values))
	for _, v := range values {
		switch b := v.(type) {
		case types.U8:
			bz = append(bz, byte(b))
		case byte:
			bz = append(bz, b)
		default:
			return nil, false
		}
	}
	return bz, len(bz) > 0
}
