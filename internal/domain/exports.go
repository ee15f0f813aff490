package domain

import (
	interfaces "vkrelay/internal/domain/interfaces"
	types "vkrelay/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	HostID               = types.HostID
	ClientID             = types.ClientID
	SigningSessionID     = types.SigningSessionID
	RelaySessionID       = types.RelaySessionID
	AuthCode             = types.AuthCode
	PairedHostCredential = types.PairedHostCredential
	Signature            = types.Signature
	RefreshRequest       = types.RefreshRequest
	HostContext          = types.HostContext
	WsMessageType        = types.WsMessageType
	Envelope             = types.Envelope
)

// Envelope message type constants re-exported for compact imports.
const (
	WsText   = types.WsText
	WsBinary = types.WsBinary
	WsPing   = types.WsPing
	WsPong   = types.WsPong
	WsClose  = types.WsClose
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	PairingStore       = interfaces.PairingStore
	ActiveHostStore    = interfaces.ActiveHostStore
	RelaySessionClient = interfaces.RelaySessionClient
	KeyStore           = interfaces.KeyStore
	SessionResolver    = interfaces.SessionResolver
)
