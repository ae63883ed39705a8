package hopbridge_test

import (
	. "github.com/cordialsys/hopbridge"
	"github.com/cordialsys/hopbridge/errors"
)

const (
	evmSender   = "0x00000000000000000000000000000000000000aa"
	weth        = "0xfff9976782d46cc05630d1f6ebab18b2324d6b14"
	ss58Alice   = "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"
	ss58Bob     = "5FHneW46xGXgs5mUiveU4sbTyGBzmstUspZC92UhjJM694ty"
	sepoliaID   = 11155111
	hubParaID   = 1000
	neuroParaID = 2043
)

func fixtureNodes() (Node, Node, Node) {
	evm := NewEvmNode(EnvPaseoSepolia, sepoliaID, "Sepolia")
	hub := NewParachainNode(EnvPaseoSepolia, hubParaID, "AssetHub (Paseo) (1000)")
	other := NewParachainNode(EnvPaseoSepolia, neuroParaID, "Neuro (2043)")
	return evm, hub, other
}

func fixtureToken() TokenInfo {
	return TokenInfo{
		Symbol:   "WETH",
		Address:  weth,
		Decimals: 18,
		Origin:   OriginEvm,
		ChainID:  sepoliaID,
	}
}

func (s *HopbridgeTestSuite) TestPreparedTransferAmount() {
	require := s.Require()
	evm, _, other := fixtureNodes()

	prepared, err := NewPreparedTransfer(EnvPaseoSepolia, evm, other, evmSender, ss58Alice, fixtureToken(), "1,5")
	require.NoError(err)
	expected, err := ToBaseUnits("1.5", 18)
	require.NoError(err)
	base := prepared.AmountBase()
	require.Equal(0, base.Cmp(&expected))

	_, err = NewPreparedTransfer(EnvPaseoSepolia, evm, other, evmSender, ss58Alice, fixtureToken(), "0.0000000000000000001")
	require.Equal(errors.InvalidAmount, errors.StatusOf(err))

	_, err = NewPreparedTransfer(EnvPaseoSepolia, evm, other, evmSender, ss58Alice, fixtureToken(), "0")
	require.Error(err)
}

func (s *HopbridgeTestSuite) TestPreparedTransferAddresses() {
	require := s.Require()
	evm, hub, other := fixtureNodes()

	_, err := NewPreparedTransfer(EnvPaseoSepolia, evm, other, ss58Alice, ss58Alice, fixtureToken(), "1")
	require.ErrorContains(err, "source")

	_, err = NewPreparedTransfer(EnvPaseoSepolia, evm, other, evmSender, evmSender, fixtureToken(), "1")
	require.ErrorContains(err, "destination")

	_, err = NewPreparedTransfer(EnvPaseoSepolia, hub, other, ss58Bob, ss58Alice, fixtureToken(), "1")
	require.NoError(err)
}

func (s *HopbridgeTestSuite) TestPreparedTransferHolders() {
	require := s.Require()
	evm, hub, other := fixtureNodes()

	prepared, err := NewPreparedTransfer(EnvPaseoSepolia, evm, other, evmSender, ss58Alice, fixtureToken(), "1")
	require.NoError(err)
	require.EqualValues(evmSender, prepared.HolderOf(evm))
	require.EqualValues(ss58Alice, prepared.HolderOf(hub))
	require.EqualValues(ss58Alice, prepared.HolderOf(other))

	prepared, err = NewPreparedTransfer(EnvPaseoSepolia, evm, other, evmSender, ss58Alice, fixtureToken(), "1", OptionHubAddress(ss58Bob))
	require.NoError(err)
	require.EqualValues(ss58Bob, prepared.HolderOf(hub))
	require.EqualValues(ss58Alice, prepared.HolderOf(other))
}

func (s *HopbridgeTestSuite) TestPreparedTransferID() {
	require := s.Require()
	evm, _, other := fixtureNodes()

	a, err := NewPreparedTransfer(EnvPaseoSepolia, evm, other, evmSender, ss58Alice, fixtureToken(), "1.5")
	require.NoError(err)
	b, err := NewPreparedTransfer(EnvPaseoSepolia, evm, other, "0x00000000000000000000000000000000000000AA", ss58Alice, fixtureToken(), "1,50")
	require.NoError(err)
	// same parameters, separate submits
	require.Equal(a.Digest(), b.Digest())
	require.NotEqual(a.ID(), b.ID())
	require.False(a.Resumed())

	c, err := NewPreparedTransfer(EnvPaseoSepolia, evm, other, evmSender, ss58Alice, fixtureToken(), "1.6")
	require.NoError(err)
	require.NotEqual(a.Digest(), c.Digest())

	resumed, err := NewPreparedTransfer(EnvPaseoSepolia, evm, other, evmSender, ss58Alice, fixtureToken(), "1.5", OptionResume(a.ID()))
	require.NoError(err)
	require.Equal(a.ID(), resumed.ID())
	require.Equal(a.Digest(), resumed.Digest())
	require.True(resumed.Resumed())

	_, err = NewPreparedTransfer(EnvPaseoSepolia, evm, other, evmSender, ss58Alice, fixtureToken(), "1.5", OptionResume("not-an-id"))
	require.ErrorContains(err, "invalid transfer id")
}

func (s *HopbridgeTestSuite) TestRouteValidate() {
	require := s.Require()
	evm, hub, other := fixtureNodes()

	direct := NewRoute(Edge{Protocol: ProtocolGateway, From: evm, To: hub})
	require.NoError(direct.Validate(hub))
	require.Equal("Sepolia → AssetHub (Paseo) (1000)", direct.Label)

	twoHop := NewRoute(
		Edge{Protocol: ProtocolGateway, From: evm, To: hub},
		Edge{Protocol: ProtocolXcm, From: hub, To: other},
	)
	require.NoError(twoHop.Validate(hub))

	broken := NewRoute(
		Edge{Protocol: ProtocolGateway, From: evm, To: other},
		Edge{Protocol: ProtocolXcm, From: other, To: hub},
	)
	require.ErrorContains(broken.Validate(hub), "not the hub")

	require.Error(NewRoute().Validate(hub))
}

func (s *HopbridgeTestSuite) TestAddressShapes() {
	require := s.Require()
	require.True(IsHexAddress(weth))
	require.False(IsHexAddress("0x1234"))
	require.False(IsHexAddress(ss58Alice))
	require.True(IsSS58(ss58Alice))
	require.False(IsSS58(evmSender))
	require.False(IsSS58("5G0O"))
}
