package pkcs11

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func selfSigned(t *testing.T) ([]byte, *ecdsa.PrivateKey) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "admin"},
		NotBefore:    time.Now(),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), key
}

func TestSubjectKeyID(t *testing.T) {
	cert, key := selfSigned(t)

	ski, err := SubjectKeyID(cert, "")
	require.NoError(t, err)
	expected := sha256.Sum256(elliptic.Marshal(key.Curve, key.X, key.Y)) //nolint:staticcheck
	assert.Equal(t, expected[:], ski)

	ski, err = SubjectKeyID(cert, "alt-key")
	require.NoError(t, err)
	assert.Equal(t, []byte("alt-key"), ski)

	_, err = SubjectKeyID([]byte("garbage"), "")
	assert.Error(t, err)
}
