package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	hb "github.com/cordialsys/hopbridge"
	"github.com/cordialsys/hopbridge/config/constants"
	vault "github.com/hashicorp/vault/api"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigTestSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (s *ConfigTestSuite) writeConfig(content string) {
	path := filepath.Join(s.T().TempDir(), "hop.yaml")
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o600))
	s.T().Setenv(constants.ConfigEnv, path)
}

func (s *ConfigTestSuite) TestLoadDefaultsWithoutFile() {
	require := s.Require()
	s.T().Setenv(constants.ConfigEnv, filepath.Join(s.T().TempDir(), "missing.yaml"))

	cfg, err := Load()
	require.NoError(err)
	require.Equal(hb.EnvPaseoSepolia, cfg.Env)
	require.Len(cfg.Networks, len(hb.EnvList))

	network, err := cfg.Network(hb.EnvPolkadotMainnet)
	require.NoError(err)
	require.EqualValues(1, network.EvmChainID)
	require.Equal(hb.DefaultHubParaID, network.HubParaID)
	require.NoError(network.Validate())
}

func (s *ConfigTestSuite) TestLoadOverridesDefaults() {
	require := s.Require()
	s.writeConfig(`
hop:
  env: westend_sepolia
  networks:
    westend_sepolia:
      evm_rpc: http://localhost:8545
      poll_interval: 2s
      destination_fee: "1000"
      registry: /tmp/westend.json
`)
	cfg, err := Load()
	require.NoError(err)
	require.Equal(hb.EnvWestendSepolia, cfg.Env)

	network, err := cfg.Network(hb.EnvWestendSepolia)
	require.NoError(err)
	require.Equal("http://localhost:8545", network.EvmRpc)
	require.Equal(2*time.Second, network.PollInterval)
	require.Equal("/tmp/westend.json", network.Registry)
	// untouched fields keep their defaults
	require.Equal("wss://westend-asset-hub-rpc.polkadot.io", network.HubWs)
	require.Equal(hb.ContractAddress("0x9ed8b47bc3417e3bd0507adc06e56e2fa360a4e9"), network.Gateway)
	require.Equal(hb.ContractAddress("0xfff9976782d46cc05630d1f6ebab18b2324d6b14"), network.Weth)
	fee, err := network.DestinationFeeAmount()
	require.NoError(err)
	require.EqualValues(1000, fee.Uint64())

	// other networks are still present
	_, err = cfg.Network(hb.EnvPaseoSepolia)
	require.NoError(err)
}

func (s *ConfigTestSuite) TestNetworkErrors() {
	require := s.Require()
	cfg := DefaultConfig()
	_, err := cfg.Network("devnet")
	require.ErrorContains(err, "invalid environment")

	delete(cfg.Networks, hb.EnvLocal)
	_, err = cfg.Network(hb.EnvLocal)
	require.ErrorContains(err, "no network configured")

	network, err := cfg.Network(hb.EnvPaseoSepolia)
	require.NoError(err)
	require.Equal(filepath.Join(constants.DefaultHome, "paseo_sepolia.registry.json"), network.Registry)

	network.Gateway = "0x1234"
	require.ErrorContains(network.Validate(), "gateway")
	network.Gateway = "0x9ed8b47bc3417e3bd0507adc06e56e2fa360a4e9"
	network.Weth = "weth"
	require.ErrorContains(network.Validate(), "weth")
	network.Weth = ""
	network.DestinationFee = "-5"
	require.ErrorContains(network.Validate(), "destination_fee")
	network.DestinationFee = "0x10"
	require.NoError(network.Validate())
	network.HubWs = ""
	require.ErrorContains(network.Validate(), "hub_ws")
}

func (s *ConfigTestSuite) TestRequireConfigWithoutDefaults() {
	require := s.Require()
	s.T().Setenv(constants.ConfigEnv, filepath.Join(s.T().TempDir(), "missing.yaml"))
	cfg := &Config{}
	err := RequireConfig(Section, cfg, nil)
	require.ErrorContains(err, "fatal error reading config file")
}

func (s *ConfigTestSuite) TestApplyDefaults() {
	require := s.Require()
	type inner struct {
		Url  string   `yaml:"url,omitempty"`
		Tags []string `yaml:"tags,omitempty"`
	}
	type outer struct {
		Name  string            `yaml:"name,omitempty"`
		Inner map[string]*inner `yaml:"inner,omitempty"`
	}
	defaults := outer{
		Name: "default",
		Inner: map[string]*inner{
			"a": {Url: "http://a", Tags: []string{"x"}},
			"b": {Url: "http://b"},
		},
	}
	overrides := outer{
		Inner: map[string]*inner{
			"a": {Url: "http://a2"},
			"c": {Url: "http://c"},
		},
	}
	merged := outer{}
	require.NoError(ApplyDefaults(defaults, overrides, &merged))
	require.Equal("default", merged.Name)
	require.Equal("http://a2", merged.Inner["a"].Url)
	require.Equal([]string{"x"}, merged.Inner["a"].Tags)
	require.Equal("http://b", merged.Inner["b"].Url)
	require.Equal("http://c", merged.Inner["c"].Url)
}

func (s *ConfigTestSuite) TestGetSecretEnv() {
	require := s.Require()
	s.T().Setenv("HOPTEST", " mysecret ")
	secret, err := GetSecret("env:HOPTEST")
	require.NoError(err)
	require.Equal("mysecret", secret)
}

func (s *ConfigTestSuite) TestGetSecretRaw() {
	require := s.Require()
	secret := NewRawSecret("//Alice")
	value, err := secret.Load()
	require.NoError(err)
	require.Equal("//Alice", value)
	require.Equal("raw:***", secret.String())
	require.True(HasTypePrefix(string(secret)))
	require.False(HasTypePrefix("gsm:project,secret"))
}

func (s *ConfigTestSuite) TestGetSecretFile() {
	require := s.Require()
	path := filepath.Join(s.T().TempDir(), "key")
	require.NoError(os.WriteFile(path, []byte(" MY SECRET \n"), 0o600))

	secret, err := GetSecret("file:" + path)
	require.NoError(err)
	require.Equal("MY SECRET", secret)

	secret, err = GetSecret("file:" + path + "invalid")
	require.Equal("", secret)
	require.Error(err)
	require.Equal("", Secret("file:"+path+"invalid").LoadOrBlank())
}

func (s *ConfigTestSuite) TestGetSecretInvalid() {
	require := s.Require()
	secret, err := GetSecret("invalid")
	require.Equal("", secret)
	require.ErrorIs(err, errInvalidSource)

	secret, err = GetSecret("invalid:value")
	require.Equal("", secret)
	require.ErrorIs(err, errInvalidSource)
}

type MockedVaultLoader struct {
	data map[string]interface{}
}

var _ VaultLoader = &MockedVaultLoader{}

func (l *MockedVaultLoader) LoadSecretData(path string) (*vault.Secret, error) {
	data, ok := l.data[path]
	if !ok {
		return &vault.Secret{}, errors.New("path not found")
	}
	return &vault.Secret{
		Data: data.(map[string]interface{}),
	}, nil
}

func (s *ConfigTestSuite) TestGetSecretVault() {
	require := s.Require()
	original := NewVaultClient
	defer func() { NewVaultClient = original }()
	NewVaultClient = func(cfg *vault.Config) (VaultLoader, error) {
		vaultRes := `{
			"path1/to": {
				"data": {
					"secret": "mysecret"
				}
			}
		}`
		data := make(map[string]interface{})
		err := json.Unmarshal([]byte(vaultRes), &data)
		require.NoError(err)
		return &MockedVaultLoader{data: data}, nil
	}

	_, err := GetSecret("vault:wrong_args")
	require.ErrorContains(err, "vault secret has 2 comma separated arguments")
	_, err = GetSecret("vault:url,aaa")
	require.ErrorContains(err, "malformed vault secret")
	_, err = GetSecret("vault:url,aaa/secret")
	require.EqualError(err, "path not found")

	secret, err := GetSecret("vault:https://example.com,path1/to/secret")
	require.NoError(err)
	require.Equal("mysecret", secret)

	secret, err = GetSecret("vault:https://example.com,path1/to/secret_none")
	require.NoError(err)
	require.Equal("", secret)
}

func (s *ConfigTestSuite) TestLogLevels() {
	require := s.Require()
	require.Equal(logrus.DebugLevel, ParseLevel("DEBUG"))
	require.Equal(logrus.InfoLevel, ParseLevel("nonsense"))
	require.Equal("warn", VerbosityLevel(0))
	require.Equal("debug", VerbosityLevel(2))
	require.Equal("trace", VerbosityLevel(5))

	s.T().Setenv(LogLevelEnv, "error")
	ConfigureLogger()
	require.Equal(logrus.ErrorLevel, logrus.GetLevel())
	ConfigureLogger("trace")
	require.Equal(logrus.TraceLevel, logrus.GetLevel())
	logrus.SetLevel(logrus.InfoLevel)
}
