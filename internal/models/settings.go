package models

import "time"

// MaxAlertEmailRecipients bounds the recipient list of EmailAlertSettings.
const MaxAlertEmailRecipients = 50

// EmailAlertSettings is the singleton email notification configuration.
type EmailAlertSettings struct {
	Recipients        []string   `json:"recipients"`
	EnabledAlertTypes []string   `json:"enabledAlertTypes"`
	UpdatedAt         *time.Time `json:"updatedAt"`

	// ProviderConfigured is derived from process configuration, never persisted.
	ProviderConfigured bool `json:"providerConfigured"`
}

// Enables reports whether notifications are switched on for alertType.
func (s EmailAlertSettings) Enables(alertType string) bool {
	for _, t := range s.EnabledAlertTypes {
		if t == alertType {
			return true
		}
	}
	return false
}
