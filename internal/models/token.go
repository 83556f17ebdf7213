package models

import (
	"time"
)

// Named credential slots of a session
const (
	SlotAccess  = "access-token"
	SlotRefresh = "refresh-token"
)

type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// Token pair issued by the backend on login, register or refresh
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}

// Credential stored in a slot for a profile
type Credential struct {
	Profile   string
	Slot      string
	Value     string
	ExpiresAt time.Time
}
