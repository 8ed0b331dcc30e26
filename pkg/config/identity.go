package config

import (
	"fmt"

	"github.com/atomyze-foundation/hlf-lifecycle/system/pkcs11"
	"github.com/hyperledger/fabric/bccsp/factory"
	"github.com/hyperledger/fabric/cmd/common/signer"
	"github.com/hyperledger/fabric/protoutil"
	"go.uber.org/zap"
)

var signProbe = []byte("hlf-lifecycle identity probe")

// Identity is the signing identity used for every proposal and transaction.
type Identity struct {
	Cert  string              `yaml:"cert"`
	Key   string              `yaml:"key"`
	BCCSP factory.FactoryOpts `yaml:"bccsp"`
}

// Load returns signer of msp: file key based when key path is set, HSM based otherwise.
// Signer is checked by signing a probe message.
func (i *Identity) Load(log *zap.Logger, mspID string) (protoutil.Signer, error) {
	id, err := i.signer(log, mspID)
	if err != nil {
		return nil, err
	}
	if _, err = id.Sign(signProbe); err != nil {
		return nil, fmt.Errorf("identity of %s cannot sign: %w", mspID, err)
	}
	log.Debug("signing identity loaded", zap.String("mspId", mspID), zap.Bool("hsm", i.Key == ""))
	return id, nil
}

func (i *Identity) signer(log *zap.Logger, mspID string) (protoutil.Signer, error) {
	if i.Key == "" {
		id, err := pkcs11.NewPKCS11Signer(log, mspID, i.Cert, &i.BCCSP)
		if err != nil {
			return nil, fmt.Errorf("pkcs11 identity: %w", err)
		}
		return id, nil
	}
	id, err := signer.NewSigner(signer.Config{
		MSPID:        mspID,
		IdentityPath: i.Cert,
		KeyPath:      i.Key,
	})
	if err != nil {
		return nil, fmt.Errorf("file identity: %w", err)
	}
	return id, nil
}
