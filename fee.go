package hopbridge

// FeeQuote is the delivery fee for moving a token across one edge.
// Detail is protocol specific and is passed through unchanged to the builder.
type FeeQuote struct {
	Protocol Protocol         `json:"protocol" yaml:"protocol"`
	Amount   AmountBlockchain `json:"amount" yaml:"amount"`
	// Empty when the fee is paid in the chain's native asset
	FeeAsset ContractAddress `json:"fee_asset,omitempty" yaml:"fee_asset,omitempty"`
	Detail   any             `json:"-" yaml:"-"`
}
