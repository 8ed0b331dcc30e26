package mocks

import (
	"github.com/hyperledger/fabric-protos-go/msp"
	"github.com/hyperledger/fabric/protoutil"
)

// Signer is a signing identity double producing constant signatures.
type Signer struct {
	MspID string
}

func (s *Signer) Sign(msg []byte) ([]byte, error) {
	return []byte("signature"), nil
}

func (s *Signer) Serialize() ([]byte, error) {
	return protoutil.MarshalOrPanic(&msp.SerializedIdentity{Mspid: s.MspID, IdBytes: []byte("identity")}), nil
}
