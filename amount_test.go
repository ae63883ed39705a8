package hopbridge_test

import (
	"encoding/json"
	"strings"

	. "github.com/cordialsys/hopbridge"
	"github.com/cordialsys/hopbridge/errors"
)

func (s *HopbridgeTestSuite) TestNewAmountBlockchainFromUint64() {
	require := s.Require()
	amount := NewAmountBlockchainFromUint64(123)
	require.Equal(uint64(123), amount.Uint64())
	require.Equal("123", amount.String())
}

func (s *HopbridgeTestSuite) TestNewBlockchainAmountStr() {
	require := s.Require()
	amount := NewAmountBlockchainFromStr("10")
	require.EqualValues(10, amount.Uint64())

	amount = NewAmountBlockchainFromStr("0x10")
	require.EqualValues(16, amount.Uint64())

	amount = NewAmountBlockchainFromStr("invalid")
	require.EqualValues(0, amount.Uint64())
}

func (s *HopbridgeTestSuite) TestToBaseUnits() {
	require := s.Require()
	vectors := []struct {
		human    string
		decimals int
		expected string
		err      bool
	}{
		{"1.5", 6, "1500000", false},
		{"0.0000001", 6, "", true},
		{"0.000001", 6, "1", false},
		{"0", 0, "0", false},
		{".5", 2, "50", false},
		{"1,5", 6, "1500000", false},
		{"  2.25  ", 2, "225", false},
		{"007", 3, "7000", false},
		{"0.0", 1, "0", false},
		{"10", 0, "10", false},
		{"1.0", 0, "", true},
		{"1.", 6, "", true},
		{"", 6, "", true},
		{".", 6, "", true},
		{"-1", 6, "", true},
		{"1e6", 6, "", true},
		{"1.2.3", 6, "", true},
		{"1,000.5", 6, "", true},
		{"abc", 6, "", true},
		{"1", 37, "", true},
		{"1", -1, "", true},
		// beyond 64 bit
		{"123456789012345678901234567890", 18, "123456789012345678901234567890000000000000000000", false},
		{"1." + strings.Repeat("0", 35) + "1", 36, "1" + strings.Repeat("0", 35) + "1", false},
	}
	for _, v := range vectors {
		amount, err := ToBaseUnits(v.human, v.decimals)
		if v.err {
			require.Error(err, "expected '%s' @%d to fail", v.human, v.decimals)
			require.Equal(errors.InvalidAmount, errors.StatusOf(err))
			continue
		}
		require.NoError(err, "'%s' @%d", v.human, v.decimals)
		require.Equal(v.expected, amount.String(), "'%s' @%d", v.human, v.decimals)
	}
}

func (s *HopbridgeTestSuite) TestToBaseUnitsCommaEquivalence() {
	require := s.Require()
	inputs := []string{"1,5", "0,000001", ",25", "12,0", "3"}
	for _, input := range inputs {
		for _, decimals := range []int{0, 2, 6, 18} {
			withComma, errComma := ToBaseUnits(input, decimals)
			withDot, errDot := ToBaseUnits(strings.Replace(input, ",", ".", 1), decimals)
			require.Equal(errComma == nil, errDot == nil, input)
			if errComma == nil {
				require.Equal(withDot.String(), withComma.String(), input)
			}
		}
	}
}

func (s *HopbridgeTestSuite) TestToBaseUnitsRoundTripsThroughHuman() {
	require := s.Require()
	amount, err := ToBaseUnits("0.000123", 18)
	require.NoError(err)
	require.Equal("0.000123", amount.ToHuman(18).String())
}

func (s *HopbridgeTestSuite) TestAmountJson() {
	require := s.Require()
	amount, err := ToBaseUnits("12345678901234567890.5", 1)
	require.NoError(err)
	bz, err := json.Marshal(amount)
	require.NoError(err)
	require.Equal(`"123456789012345678905"`, string(bz))

	var decoded AmountBlockchain
	require.NoError(json.Unmarshal(bz, &decoded))
	require.Equal(0, decoded.Cmp(&amount))

	require.Error(json.Unmarshal([]byte(`"1.5"`), &decoded))
}

func (s *HopbridgeTestSuite) TestNewAmountHumanReadableFromStr() {
	require := s.Require()
	amount, err := NewAmountHumanReadableFromStr("10.3")
	require.NoError(err)
	require.Equal("10.3", amount.String())

	_, err = NewAmountHumanReadableFromStr("invalid")
	require.Error(err)
}
