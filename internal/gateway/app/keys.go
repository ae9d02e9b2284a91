package app

import (
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/bankgate/pkg/cryptox"
	"github.com/aussiebroadwan/bankgate/pkg/jwtx"
)

// Keys is the key material a running gateway needs.
type Keys struct {
	Sealer   *cryptox.Sealer
	Pepper   string
	Signer   *jwtx.EdDSASigner
	KeySet   *jwtx.KeySet
	Verifier jwtx.Verifier
}

// InitKeys loads the master key, pepper and session signing key.
//
// Without a master key file or GATEWAY_MASTER_KEY the master key is random
// per process: sealed session secrets and a persisted signing key cannot be
// read after a restart, so SigningKeyFile is ignored in that case.
func InitKeys(cfg Config, logger *slog.Logger) (*Keys, error) {
	material, ephemeral, err := cryptox.LoadMasterKey(cfg.MasterKeyPath, MasterKeyEnv)
	if err != nil {
		return nil, err
	}
	sealer, err := cryptox.NewSealer(material)
	if err != nil {
		return nil, err
	}
	if ephemeral {
		logger.Warn("no master key configured, using an ephemeral one; sessions will not survive restarts")
	}

	pepper, err := cryptox.LoadOrCreatePepper(cfg.PepperFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}

	keyFile := cfg.SigningKeyFile
	if ephemeral && keyFile != "" {
		logger.Warn("signing key file ignored without a master key", "path", keyFile)
		keyFile = ""
	}
	pemKey, err := cryptox.LoadOrCreateSigningKey(keyFile, sealer)
	if err != nil {
		return nil, fmt.Errorf("failed to load signing key: %w", err)
	}

	signer, err := jwtx.NewSignerEdDSA(cryptox.FingerprintToken(string(pemKey))[:16], pemKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse signing key: %w", err)
	}
	keys := jwtx.NewKeySet()
	keys.AddSigner(signer)

	logger.Info("session signing key ready", "kid", signer.KID(), "persistent", keyFile != "")

	return &Keys{
		Sealer:   sealer,
		Pepper:   pepper,
		Signer:   signer,
		KeySet:   keys,
		Verifier: jwtx.NewVerifierEdDSA(keys, cfg.Issuer, nil),
	}, nil
}
