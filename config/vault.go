package config

import (
	"errors"
	"strings"

	vault "github.com/hashicorp/vault/api"
)

type VaultLoader interface {
	LoadSecretData(path string) (*vault.Secret, error)
}

type DefaultVaultLoader struct {
	*vault.Client
}

var _ VaultLoader = &DefaultVaultLoader{}

func (v *DefaultVaultLoader) LoadSecretData(vaultPath string) (*vault.Secret, error) {
	secret, err := v.Logical().Read(vaultPath)
	if err != nil || secret == nil { // yes, secret can be nil
		return &vault.Secret{}, err
	}
	return secret, nil
}

func newVaultClient(cfg *vault.Config) (VaultLoader, error) {
	cli, err := vault.NewClient(cfg)
	if err != nil {
		return &DefaultVaultLoader{}, err
	}
	return &DefaultVaultLoader{Client: cli}, nil
}

// Replaced in tests.
var NewVaultClient = newVaultClient

// loadVaultSecret reads "<url>,<path>/<key>" from a kv v2 mount. VAULT_TOKEN
// is read from the environment by the vault client.
func loadVaultSecret(arg string) (string, error) {
	vaultArgs := strings.Split(arg, ",")
	if len(vaultArgs) != 2 {
		return "", errors.New("vault secret has 2 comma separated arguments (url,path)")
	}
	vaultUrl := vaultArgs[0]
	vaultFullPath := vaultArgs[1]

	client, err := NewVaultClient(&vault.Config{Address: vaultUrl})
	if err != nil {
		return "", err
	}

	idx := strings.LastIndex(vaultFullPath, "/")
	if idx <= 0 || idx == len(vaultFullPath)-1 {
		return "", errors.New("malformed vault secret in config file")
	}
	vaultKey := vaultFullPath[idx+1:]
	vaultPath := vaultFullPath[:idx]

	secret, err := client.LoadSecretData(vaultPath)
	if err != nil {
		return "", err
	}
	data, _ := secret.Data["data"].(map[string]interface{})
	result, _ := data[vaultKey].(string)
	return strings.TrimSpace(result), nil
}
