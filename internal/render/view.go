// Package render projects a scan result onto the display state of a page.
package render

import (
	"strings"

	"github.com/scanview/frontend/internal/chart"
	"github.com/scanview/frontend/internal/model"
)

const (
	riskPrefix          = "Risk Level: "
	VulnerabilitiesHead = "Vulnerabilities Found"
)

// ViewState is everything the result regions of a page show. The zero value
// is the state of a page that has not rendered a scan yet.
type ViewState struct {
	Rendered        bool                `json:"rendered"`
	URL             string              `json:"url,omitempty"`
	RiskLevel       model.RiskLevel     `json:"risk_level,omitempty"`
	RiskText        string              `json:"risk_text"`
	Tips            []string            `json:"tips"`
	Vulnerabilities []VulnerabilityItem `json:"vulnerabilities"`
	BarChart        chart.Bar           `json:"bar_chart"`
	PieChart        chart.Pie           `json:"pie_chart"`
}

// VulnerabilityItem is one line of the vulnerability list: the type shown in
// emphasis followed by the joined details, if any.
type VulnerabilityItem struct {
	Type    string `json:"type"`
	Details string `json:"details,omitempty"`
}

func (v VulnerabilityItem) Text() string {
	if v.Details == "" {
		return v.Type
	}
	return v.Type + ": " + v.Details
}

// Render builds a fresh ViewState from result. It does not modify result and
// the returned state shares no slices with it.
func Render(result model.ScanResult) ViewState {
	vs := ViewState{
		Rendered:        true,
		URL:             result.URL,
		RiskLevel:       result.RiskLevel,
		RiskText:        riskPrefix + string(result.RiskLevel),
		Tips:            append([]string{}, result.Tips...),
		Vulnerabilities: make([]VulnerabilityItem, 0, len(result.Vulnerabilities)),
	}

	for _, v := range result.Vulnerabilities {
		vs.Vulnerabilities = append(vs.Vulnerabilities, VulnerabilityItem{
			Type:    v.Type,
			Details: strings.Join(v.Details, ", "),
		})
	}

	vs.BarChart = chart.NewBar(result.Vulnerabilities)
	vs.PieChart = chart.NewPie(result.RiskLevel)
	return vs
}
