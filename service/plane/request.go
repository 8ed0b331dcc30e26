package plane

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/atomyze-foundation/hlf-lifecycle/pkg/chaincode"
)

const (
	paramNetwork   = "network_name"
	paramOperation = "operations_type"
	paramName      = "chaincode_name"
	paramVersion   = "chaincode_version"

	partDefinition  = "chaincodeOperations"
	partCollections = "collection_config"
	partPackage     = "package"

	defaultMaxMemory = 32 << 20
)

// requestError is a malformed request detected before reaching the orchestrator.
type requestError struct {
	field  string
	reason string
}

func (e *requestError) Error() string {
	return fmt.Sprintf("invalid request field %s: %s", e.field, e.reason)
}

func requiredParam(r *http.Request, name string) (string, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return "", &requestError{field: name, reason: "parameter is required"}
	}
	return v, nil
}

// lifecycleBody is a definition with its optional collection config and package.
type lifecycleBody struct {
	def         chaincode.Definition
	collections chaincode.CollectionConfig
	pkg         []byte
}

func (s *srv) readBody(w http.ResponseWriter, r *http.Request) (*lifecycleBody, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return nil, &requestError{field: "Content-Type", reason: err.Error()}
	}

	maxMemory := s.maxPackageSize
	if maxMemory <= 0 {
		maxMemory = defaultMaxMemory
	}

	body := &lifecycleBody{collections: chaincode.NoCollectionConfig()}
	switch mediaType {
	case "application/json":
		if err = json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMemory)).Decode(&body.def); err != nil {
			return nil, &requestError{field: partDefinition, reason: err.Error()}
		}
		return body, nil
	case "multipart/form-data":
	default:
		return nil, &requestError{field: "Content-Type", reason: "unsupported media type " + mediaType}
	}

	if err = r.ParseMultipartForm(maxMemory); err != nil {
		return nil, &requestError{field: "body", reason: err.Error()}
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	raw, ok, err := formPart(r, partDefinition)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &requestError{field: partDefinition, reason: "part is required"}
	}
	if err = json.Unmarshal(raw, &body.def); err != nil {
		return nil, &requestError{field: partDefinition, reason: err.Error()}
	}

	if raw, ok, err = formPart(r, partCollections); err != nil {
		return nil, err
	} else if ok {
		body.collections = chaincode.SomeCollectionConfig(raw)
	}

	if body.pkg, _, err = formPart(r, partPackage); err != nil {
		return nil, err
	}
	return body, nil
}

// formPart returns content of multipart file or value by name.
func formPart(r *http.Request, name string) ([]byte, bool, error) {
	if files := r.MultipartForm.File[name]; len(files) > 0 {
		f, err := files[0].Open()
		if err != nil {
			return nil, false, &requestError{field: name, reason: err.Error()}
		}
		defer f.Close()
		b, err := io.ReadAll(f)
		if err != nil {
			return nil, false, &requestError{field: name, reason: err.Error()}
		}
		return b, true, nil
	}
	if values := r.MultipartForm.Value[name]; len(values) > 0 {
		return []byte(values[0]), true, nil
	}
	return nil, false, nil
}
