package model

import (
	"time"

	"github.com/google/uuid"
)

// HistoryEntry is the minimal record of a past scan kept for display.
type HistoryEntry struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	RiskLevel RiskLevel `json:"risk_level"`
	AddedAt   time.Time `json:"added_at"`
}

func NewHistoryEntry(result ScanResult) HistoryEntry {
	return HistoryEntry{
		ID:        uuid.NewString(),
		URL:       result.URL,
		RiskLevel: result.RiskLevel,
		AddedAt:   time.Now(),
	}
}
