package model

// RiskLevel is the coarse classification the scan service assigns to a target.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// RiskLevels lists the known levels in chart order.
var RiskLevels = []RiskLevel{RiskLow, RiskMedium, RiskHigh}

// Valid reports whether r is one of the known levels.
func (r RiskLevel) Valid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

func (r RiskLevel) String() string { return string(r) }

type ScanResult struct {
	URL             string                 `json:"url" validate:"required"`
	RiskLevel       RiskLevel              `json:"risk_level" validate:"required,oneof=Low Medium High"`
	Tips            []string               `json:"tips"`
	Vulnerabilities []VulnerabilityFinding `json:"vulnerabilities" validate:"dive"`
}

type VulnerabilityFinding struct {
	Type    string   `json:"type" validate:"required"`
	Count   int      `json:"count" validate:"gte=0"`
	Details []string `json:"details,omitempty"`
}
