package hopbridge

import (
	"encoding/json"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/cordialsys/hopbridge/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Token decimals accepted by the converter.
const MinDecimals = 0
const MaxDecimals = 36

// AmountBlockchain is a big integer amount in base units, as the chain expects it.
type AmountBlockchain big.Int

// AmountHumanReadable is a decimal amount as a human expects it for readability.
type AmountHumanReadable decimal.Decimal

func (amount AmountBlockchain) Bytes() []byte {
	bigInt := big.Int(amount)
	return bigInt.Bytes()
}

func (amount AmountBlockchain) String() string {
	bigInt := big.Int(amount)
	return bigInt.String()
}

// Int converts an AmountBlockchain into *big.Int
func (amount AmountBlockchain) Int() *big.Int {
	bigInt := big.Int(amount)
	return &bigInt
}

func (amount AmountBlockchain) Sign() int {
	bigInt := big.Int(amount)
	return bigInt.Sign()
}

// Uint64 converts an AmountBlockchain into uint64
func (amount AmountBlockchain) Uint64() uint64 {
	bigInt := big.Int(amount)
	return bigInt.Uint64()
}

// Use the underlying big.Int.Cmp()
func (amount *AmountBlockchain) Cmp(other *AmountBlockchain) int {
	return amount.Int().Cmp(other.Int())
}

// Use the underlying big.Int.Add()
func (amount *AmountBlockchain) Add(x *AmountBlockchain) AmountBlockchain {
	sum := new(big.Int)
	sum.Set((*big.Int)(amount))
	return AmountBlockchain(*sum.Add(sum, x.Int()))
}

// Use the underlying big.Int.Sub()
func (amount *AmountBlockchain) Sub(x *AmountBlockchain) AmountBlockchain {
	diff := new(big.Int)
	diff.Set((*big.Int)(amount))
	return AmountBlockchain(*diff.Sub(diff, x.Int()))
}

// Use the underlying big.Int.Mul()
func (amount *AmountBlockchain) Mul(x *AmountBlockchain) AmountBlockchain {
	prod := new(big.Int)
	prod.Set((*big.Int)(amount))
	return AmountBlockchain(*prod.Mul(prod, x.Int()))
}

var zero = big.NewInt(0)

func (amount *AmountBlockchain) IsZero() bool {
	return amount.Int().Cmp(zero) == 0
}

func (amount AmountBlockchain) ToHuman(decimals int32) AmountHumanReadable {
	dec := decimal.NewFromBigInt(amount.Int(), -decimals)
	return AmountHumanReadable(dec)
}

// NewAmountBlockchainFromUint64 creates a new AmountBlockchain from a uint64
func NewAmountBlockchainFromUint64(u64 uint64) AmountBlockchain {
	bigInt := new(big.Int).SetUint64(u64)
	return AmountBlockchain(*bigInt)
}

// NewAmountBlockchainFromStr creates a new AmountBlockchain from a string.
// Invalid input yields zero.
func NewAmountBlockchainFromStr(str string) AmountBlockchain {
	bigInt, ok := new(big.Int).SetString(str, 0)
	if !ok {
		return NewAmountBlockchainFromUint64(0)
	}
	return AmountBlockchain(*bigInt)
}

// NewAmountBlockchainFromBig copies a *big.Int. A nil input yields zero.
func NewAmountBlockchainFromBig(i *big.Int) AmountBlockchain {
	if i == nil {
		return NewAmountBlockchainFromUint64(0)
	}
	return AmountBlockchain(*new(big.Int).Set(i))
}

// optional digits, optional dot, digits
var humanAmountPattern = regexp.MustCompile(`^[0-9]*\.?[0-9]+$`)

// ToBaseUnits converts a human decimal string into integer base units without
// any floating point arithmetic. A comma is accepted as the decimal separator.
// Fractional digits beyond `decimals` are rejected rather than truncated.
func ToBaseUnits(human string, decimals int) (AmountBlockchain, error) {
	if decimals < MinDecimals || decimals > MaxDecimals {
		return AmountBlockchain{}, errors.InvalidAmountf("decimals %d out of range [%d, %d]", decimals, MinDecimals, MaxDecimals)
	}
	normalized := strings.Replace(strings.TrimSpace(human), ",", ".", 1)
	if !humanAmountPattern.MatchString(normalized) {
		return AmountBlockchain{}, errors.InvalidAmountf("'%s' is not a decimal amount", human)
	}

	whole, frac, _ := strings.Cut(normalized, ".")
	if len(frac) > decimals {
		return AmountBlockchain{}, errors.InvalidAmountf(
			"'%s' has %d fractional digits, token supports at most %d", human, len(frac), decimals,
		)
	}
	frac += strings.Repeat("0", decimals-len(frac))

	digits := strings.TrimLeft(whole+frac, "0")
	if digits == "" {
		digits = "0"
	}
	value, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return AmountBlockchain{}, errors.InvalidAmountf("'%s' is not a decimal amount", human)
	}
	return AmountBlockchain(*value), nil
}

// NewAmountHumanReadableFromStr creates a new AmountHumanReadable from a string
func NewAmountHumanReadableFromStr(str string) (AmountHumanReadable, error) {
	decimal, err := decimal.NewFromString(str)
	return AmountHumanReadable(decimal), err
}

func (amount AmountHumanReadable) Decimal() decimal.Decimal {
	return decimal.Decimal(amount)
}

func (amount AmountHumanReadable) String() string {
	return decimal.Decimal(amount).String()
}

var _ json.Marshaler = AmountHumanReadable{}
var _ json.Unmarshaler = &AmountHumanReadable{}
var _ yaml.Unmarshaler = &AmountHumanReadable{}
var _ yaml.Marshaler = AmountHumanReadable{}

func (b AmountHumanReadable) MarshalYAML() (interface{}, error) {
	return b.String(), nil
}

func (b *AmountHumanReadable) UnmarshalYAML(node *yaml.Node) error {
	value := strings.Trim(strings.TrimSpace(node.Value), "\"")
	dec, err := decimal.NewFromString(value)
	if err != nil {
		return fmt.Errorf("invalid decimal amount: %v", err)
	}
	*b = AmountHumanReadable(dec)
	return nil
}

func (b AmountHumanReadable) MarshalJSON() ([]byte, error) {
	return []byte("\"" + b.String() + "\""), nil
}

func (b *AmountHumanReadable) UnmarshalJSON(p []byte) error {
	if string(p) == "null" {
		return nil
	}
	dec, err := decimal.NewFromString(strings.Trim(string(p), "\""))
	if err != nil {
		return err
	}
	*b = AmountHumanReadable(dec)
	return nil
}

var _ json.Marshaler = AmountBlockchain{}
var _ json.Unmarshaler = &AmountBlockchain{}
var _ yaml.Marshaler = AmountBlockchain{}
var _ yaml.Unmarshaler = &AmountBlockchain{}

func (b AmountBlockchain) MarshalJSON() ([]byte, error) {
	return []byte("\"" + b.String() + "\""), nil
}

func (b *AmountBlockchain) UnmarshalJSON(p []byte) error {
	if string(p) == "null" {
		return nil
	}
	str := strings.Trim(string(p), "\"")
	var z big.Int
	_, ok := z.SetString(str, 0)
	if !ok {
		return fmt.Errorf("not a valid big integer: %s", p)
	}
	*b = AmountBlockchain(z)
	return nil
}

func (b AmountBlockchain) MarshalYAML() (interface{}, error) {
	return b.String(), nil
}

func (b *AmountBlockchain) UnmarshalYAML(node *yaml.Node) error {
	var z big.Int
	_, ok := z.SetString(strings.TrimSpace(node.Value), 0)
	if !ok {
		return fmt.Errorf("not a valid big integer: %s", node.Value)
	}
	*b = AmountBlockchain(z)
	return nil
}
