package domain

import "time"

// SettingAssistantKey is the settings-table key holding the external
// assistant's credential.
const SettingAssistantKey = "assistant_api_key"

// Setting is a process-wide key/value entry.
type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"-"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SettingPreview is the only shape in which a stored credential is exposed
// after write: a masked preview, never the plaintext value.
type SettingPreview struct {
	Configured bool   `json:"configured"`
	Preview    string `json:"preview,omitempty"`
}
