package fixtures

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"

	"github.com/hyperledger/fabric/core/chaincode/persistence"
	"github.com/hyperledger/fabric/core/container/externalbuilder"
)

const (
	ccFilePerm          = 0o600
	externalDefaultType = "ccaas"
)

// Package builds installable chaincode package with code archive of presented type.
func Package(label, ccType string, code []byte) ([]byte, error) {
	md, err := json.Marshal(persistence.ChaincodePackageMetadata{Type: ccType, Label: label})
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	return archive(map[string][]byte{
		persistence.MetadataFile:    md,
		persistence.CodePackageFile: code,
	}, persistence.MetadataFile, persistence.CodePackageFile)
}

// ExternalPackage builds chaincode-as-a-service package pointing to address.
func ExternalPackage(label, address string) ([]byte, error) {
	conn, err := json.Marshal(externalbuilder.ChaincodeServerUserData{Address: address})
	if err != nil {
		return nil, fmt.Errorf("marshal connection data: %w", err)
	}
	code, err := archive(map[string][]byte{"connection.json": conn}, "connection.json")
	if err != nil {
		return nil, fmt.Errorf("create code package: %w", err)
	}
	return Package(label, externalDefaultType, code)
}

func archive(files map[string][]byte, order ...string) ([]byte, error) {
	buf := new(bytes.Buffer)
	gzWr := gzip.NewWriter(buf)
	tarWr := tar.NewWriter(gzWr)

	for _, name := range order {
		content := files[name]
		if err := tarWr.WriteHeader(&tar.Header{
			Name: name,
			Mode: ccFilePerm,
			Size: int64(len(content)),
		}); err != nil {
			return nil, fmt.Errorf("write header for %s: %w", name, err)
		}
		if _, err := tarWr.Write(content); err != nil {
			return nil, fmt.Errorf("write %s bytes: %w", name, err)
		}
	}

	if err := tarWr.Close(); err != nil {
		return nil, fmt.Errorf("tar close: %w", err)
	}
	if err := gzWr.Close(); err != nil {
		return nil, fmt.Errorf("gzip close: %w", err)
	}
	return buf.Bytes(), nil
}
