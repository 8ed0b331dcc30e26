//go:build pkcs11
// +build pkcs11

package pkcs11

import (
	"fmt"
	"os"

	"github.com/golang/protobuf/proto" //nolint:staticcheck
	"github.com/hyperledger/fabric-protos-go/msp"
	"github.com/hyperledger/fabric/bccsp"
	"github.com/hyperledger/fabric/bccsp/factory"
	"github.com/hyperledger/fabric/protoutil"
	"go.uber.org/zap"
)

// hsmSigner signs with a key kept in HSM, the key is looked up by subject key identifier.
type hsmSigner struct {
	csp   bccsp.BCCSP
	ski   []byte
	cert  []byte
	mspID string
}

func (s *hsmSigner) Sign(msg []byte) ([]byte, error) {
	key, err := s.csp.GetKey(s.ski)
	if err != nil {
		return nil, fmt.Errorf("get key: %w", err)
	}
	digest, err := s.csp.Hash(msg, &bccsp.SHA256Opts{})
	if err != nil {
		return nil, fmt.Errorf("hash: %w", err)
	}
	return s.csp.Sign(key, digest, nil)
}

func (s *hsmSigner) Serialize() ([]byte, error) {
	return proto.Marshal(&msp.SerializedIdentity{Mspid: s.mspID, IdBytes: s.cert})
}

// NewPKCS11Signer creates signing identity of msp backed by PKCS11 BCCSP.
func NewPKCS11Signer(log *zap.Logger, mspID string, certPath string, opts *factory.FactoryOpts) (protoutil.Signer, error) {
	csp, err := factory.GetBCCSPFromOpts(opts)
	if err != nil {
		return nil, fmt.Errorf("bccsp init: %w", err)
	}

	cert, err := os.ReadFile(certPath)
	if err != nil {
		return nil, fmt.Errorf("read certificate: %w", err)
	}

	var altID string
	if opts.PKCS11 != nil {
		altID = opts.PKCS11.AltID
	}
	ski, err := SubjectKeyID(cert, altID)
	if err != nil {
		return nil, err
	}

	log.Named("pkcs11").Debug("using signer", zap.String("mspId", mspID), zap.ByteString("ski", ski))
	return &hsmSigner{csp: csp, ski: ski, cert: cert, mspID: mspID}, nil
}
