package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Secret is a reference to a secret value, e.g. "env:HOP_EVM_KEY" or
// "file:~/.hop/evm.key". The value itself is read on Load.
type Secret string

type SecretType string

var Env SecretType = "env"
var Vault SecretType = "vault"
var Raw SecretType = "raw"
var File SecretType = "file"

var errInvalidSource = errors.New("invalid secret source for: ***")

func (s Secret) Load() (string, error) {
	return GetSecret(string(s))
}

func (s Secret) LoadOrBlank() string {
	deref, _ := GetSecret(string(s))
	return deref
}

func (s Secret) IsSet() bool {
	return strings.TrimSpace(string(s)) != ""
}

// String never reveals raw secrets.
func (s Secret) String() string {
	if strings.HasPrefix(string(s), string(Raw)+":") {
		return "raw:***"
	}
	return string(s)
}

func NewRawSecret(secret string) Secret {
	return Secret(fmt.Sprintf("raw:%s", secret))
}

func HasTypePrefix(secretRef string) bool {
	switch SecretType(strings.Split(secretRef, ":")[0]) {
	case Env, Vault, Raw, File:
		return true
	}
	return false
}

// GetSecret resolves a secret reference.
func GetSecret(uri string) (string, error) {
	kind, path, ok := strings.Cut(uri, ":")
	if !ok {
		return "", errInvalidSource
	}

	switch SecretType(kind) {
	case Env:
		return strings.TrimSpace(os.Getenv(path)), nil
	case Raw:
		return strings.TrimSpace(path), nil
	case File:
		if len(path) > 1 && path[0] == '~' {
			path = strings.Replace(path, "~", os.Getenv("HOME"), 1)
		}
		bz, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(bz)), nil
	case Vault:
		return loadVaultSecret(path)
	}
	return "", errInvalidSource
}
