package predictor

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-ucsform/pkg/form"
)

//go:embed contract/predict.yaml
var contractDocument []byte

const (
	recordSchemaName     = "MaterialRecord"
	predictionSchemaName = "Prediction"
)

// Contract is the OpenAPI description of the prediction service. It checks
// outbound records and inbound predictions against their schemas.
type Contract struct {
	doc        *openapi3.T
	record     *openapi3.Schema
	prediction *openapi3.Schema
}

var (
	defaultContractOnce sync.Once
	defaultContract     *Contract
	defaultContractErr  error
)

// ContractDocument returns the embedded OpenAPI document.
func ContractDocument() []byte {
	out := make([]byte, len(contractDocument))
	copy(out, contractDocument)
	return out
}

// DefaultContract parses the embedded document once.
func DefaultContract() (*Contract, error) {
	defaultContractOnce.Do(func() {
		defaultContract, defaultContractErr = LoadContract(context.Background(), contractDocument)
	})
	return defaultContract, defaultContractErr
}

// LoadContract parses and validates an OpenAPI document that declares the
// MaterialRecord and Prediction schemas.
func LoadContract(ctx context.Context, raw []byte) (*Contract, error) {
	if len(raw) == 0 {
		return nil, errors.New("predictor: contract document is empty")
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("predictor: load contract: %w", err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("predictor: validate contract: %w", err)
	}

	record, err := componentSchema(doc, recordSchemaName)
	if err != nil {
		return nil, err
	}
	prediction, err := componentSchema(doc, predictionSchemaName)
	if err != nil {
		return nil, err
	}

	return &Contract{doc: doc, record: record, prediction: prediction}, nil
}

// ValidateRecord checks an outbound payload against MaterialRecord.
func (c *Contract) ValidateRecord(payload form.Payload) error {
	decoded, err := roundTrip(payload)
	if err != nil {
		return fmt.Errorf("predictor: encode record: %w", err)
	}
	if err := c.record.VisitJSON(decoded); err != nil {
		return fmt.Errorf("predictor: record violates contract: %w", err)
	}
	return nil
}

// ValidatePrediction checks a decoded JSON response against Prediction.
func (c *Contract) ValidatePrediction(decoded any) error {
	if err := c.prediction.VisitJSON(decoded); err != nil {
		return fmt.Errorf("predictor: prediction violates contract: %w", err)
	}
	return nil
}

func componentSchema(doc *openapi3.T, name string) (*openapi3.Schema, error) {
	ref, ok := doc.Components.Schemas[name]
	if !ok || ref == nil || ref.Value == nil {
		return nil, fmt.Errorf("predictor: contract is missing schema %q", name)
	}
	return ref.Value, nil
}

func roundTrip(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
