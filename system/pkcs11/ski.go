package pkcs11

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"fmt"
)

// UnsupportedError is returned when binary is built without pkcs11 support.
type UnsupportedError struct {
	MspID string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("pkcs11 identity of %s requested, rebuild with -tags pkcs11", e.MspID)
}

// SubjectKeyID returns identifier of the HSM key matching certificate public key.
// altID takes precedence when set.
func SubjectKeyID(certPEM []byte, altID string) ([]byte, error) {
	if altID != "" {
		return []byte(altID), nil
	}

	b, _ := pem.Decode(certPEM)
	if b == nil {
		return nil, fmt.Errorf("no certificate block")
	}

	cert, err := x509.ParseCertificate(b.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse certificate: %w", err)
	}

	pk, ok := cert.PublicKey.(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("public key is not ecdsa")
	}

	hash := sha256.Sum256(elliptic.Marshal(pk.Curve, pk.X, pk.Y)) //nolint:staticcheck
	return hash[:], nil
}
