//go:build !pkcs11
// +build !pkcs11

package pkcs11

import (
	"github.com/hyperledger/fabric/bccsp/factory"
	"github.com/hyperledger/fabric/protoutil"
	"go.uber.org/zap"
)

// NewPKCS11Signer is available only in binaries built with pkcs11 tag.
func NewPKCS11Signer(_ *zap.Logger, mspID string, _ string, _ *factory.FactoryOpts) (protoutil.Signer, error) {
	return nil, &UnsupportedError{MspID: mspID}
}
