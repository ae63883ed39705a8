package testutil

import (
	"encoding/hex"
	"strings"

	hb "github.com/cordialsys/hopbridge"
)

func FromHex(s string) []byte {
	bz, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		panic(err)
	}
	return bz
}

func HumanToBlockchain(amount string, decimals int) hb.AmountBlockchain {
	base, err := hb.ToBaseUnits(amount, decimals)
	if err != nil {
		panic(err)
	}
	return base
}
