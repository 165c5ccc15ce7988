package adapter

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/optic/loan-origination/internal/domain/port"
	"github.com/optic/loan-origination/internal/domain/valueobject"
)

var _ port.RiskValidationGateway = (*StubRiskGateway)(nil)

// StubRiskGateway is a development/test adapter that returns a deterministic
// assessment derived from the document.
type StubRiskGateway struct{}

// NewStubRiskGateway creates a new stub adapter.
func NewStubRiskGateway() *StubRiskGateway {
	return &StubRiskGateway{}
}

// Assess hashes the document to a level in [1, 4]. Levels 1 to 3 approve;
// level 4 rejects at the high tier. This allows repeatable test scenarios.
func (g *StubRiskGateway) Assess(_ context.Context, document string) (valueobject.RiskAssessment, error) {
	if document == "" {
		return valueobject.RiskAssessment{}, fmt.Errorf("document is required")
	}

	h := sha256.Sum256([]byte(document))
	level := 1 + int(binary.BigEndian.Uint32(h[:4])%4)

	verdict := valueobject.VerdictApproved
	if level == 4 {
		verdict = valueobject.VerdictRejected
	}
	return valueobject.NewRiskAssessment(document, valueobject.RiskTierFromLevel(&level), verdict), nil
}
