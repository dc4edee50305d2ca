package domain

import (
	"strings"
	"time"
)

type TerminalStatus string

const (
	TerminalActive     TerminalStatus = "Active"
	TerminalInactive   TerminalStatus = "Inactive"
	TerminalProcessing TerminalStatus = "Processing"
	TerminalDeleted    TerminalStatus = "Deleted"
)

var remoteTerminalStates = map[string]TerminalStatus{
	"CREATE":     TerminalProcessing,
	"PROCESSING": TerminalProcessing,
	"ACTIVE":     TerminalActive,
	"INACTIVE":   TerminalInactive,
	"DELETING":   TerminalDeleted,
	"DELETED":    TerminalDeleted,
}

func MapRemoteTerminalState(token string) (TerminalStatus, bool) {
	status, ok := remoteTerminalStates[strings.ToUpper(strings.TrimSpace(token))]
	return status, ok
}

// Terminal is a physical card reader registered with the processor.
type Terminal struct {
	ID                   string
	RemoteID             int64
	Identifier           string
	Name                 string
	Type                 string
	DefaultCurrency      string
	SerialNumber         *string
	ConfigurationVersion *int64
	LocationVersion      *int64
	Status               TerminalStatus
	IsDefault            bool
	LastSyncedAt         *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func NewTerminalFromSnapshot(id string, s TerminalSnapshot, now time.Time) (*Terminal, error) {
	if s.RemoteID == nil {
		return nil, NewMissingRequiredFieldError("terminal id")
	}
	t := &Terminal{
		ID:        id,
		RemoteID:  *s.RemoteID,
		Status:    TerminalInactive,
		CreatedAt: now,
	}
	t.Apply(s, now)
	return t, nil
}

// Apply copies the processor's view. The local default flag is untouched.
func (t *Terminal) Apply(s TerminalSnapshot, now time.Time) {
	if s.Identifier != "" {
		t.Identifier = s.Identifier
	}
	if s.Name != "" {
		t.Name = s.Name
	}
	if s.Type != "" {
		t.Type = s.Type
	}
	if s.DefaultCurrency != "" {
		t.DefaultCurrency = s.DefaultCurrency
	}
	if s.SerialNumber != "" {
		serial := s.SerialNumber
		t.SerialNumber = &serial
	}
	if s.ConfigurationVersion != nil {
		v := *s.ConfigurationVersion
		t.ConfigurationVersion = &v
	}
	if s.LocationVersion != nil {
		v := *s.LocationVersion
		t.LocationVersion = &v
	}
	if status, ok := MapRemoteTerminalState(s.State); ok {
		t.Status = status
	}
	t.LastSyncedAt = timePtr(now)
	t.UpdatedAt = now
}

func (t *Terminal) IsActive() bool {
	return t.Status == TerminalActive
}

// ResourceKind distinguishes the processor objects a terminal is provisioned from.
type ResourceKind string

const (
	ResourceLocation      ResourceKind = "location"
	ResourceConfiguration ResourceKind = "configuration"
)

func ParseResourceKind(s string) (ResourceKind, bool) {
	switch ResourceKind(strings.ToLower(s)) {
	case ResourceLocation:
		return ResourceLocation, true
	case ResourceConfiguration:
		return ResourceConfiguration, true
	}
	return "", false
}

// TerminalResource is a terminal location or configuration.
type TerminalResource struct {
	ID            string
	Kind          ResourceKind
	Name          string
	RemoteID      *int64
	RemoteVersion *int64
	IsDefault     bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
