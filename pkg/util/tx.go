package util

import (
	"crypto/rand"
	"fmt"

	"github.com/hyperledger/fabric-protos-go/common"
	"github.com/hyperledger/fabric/protoutil"
)

// nonceSize matches the nonce length used by Fabric crypto utilities.
const nonceSize = 24

// NewNonce returns random bytes for the signature header of a proposal.
func NewNonce() ([]byte, error) {
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("read nonce: %w", err)
	}
	return nonce, nil
}

// GetTxIDFromEnvelope returns the transaction id carried by the envelope channel header.
func GetTxIDFromEnvelope(env *common.Envelope) (string, error) {
	payload, err := protoutil.UnmarshalPayload(env.GetPayload())
	if err != nil {
		return "", fmt.Errorf("unmarshal payload: %w", err)
	}
	chHeader, err := protoutil.UnmarshalChannelHeader(payload.GetHeader().GetChannelHeader())
	if err != nil {
		return "", fmt.Errorf("unmarshal channel header: %w", err)
	}
	return chHeader.GetTxId(), nil
}
