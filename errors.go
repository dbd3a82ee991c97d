package client

import "fmt"

// ErrorKind classifies failures surfaced through the OnError delegate. All
// of them are non-fatal to the process.
type ErrorKind int

const (
	ErrorKindDiscoveryFailure ErrorKind = iota
	ErrorKindAuthFailure
	ErrorKindTokenInvalid
	ErrorKindProtocolError
	ErrorKindProjectInaccessible
	ErrorKindDuplicateSession
	ErrorKindTransportBroken
	ErrorKindReplyError
	ErrorKindMisuse
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindDiscoveryFailure:
		return "DiscoveryFailure"
	case ErrorKindAuthFailure:
		return "AuthFailure"
	case ErrorKindTokenInvalid:
		return "TokenInvalid"
	case ErrorKindProtocolError:
		return "ProtocolError"
	case ErrorKindProjectInaccessible:
		return "ProjectInaccessible"
	case ErrorKindDuplicateSession:
		return "DuplicateSession"
	case ErrorKindTransportBroken:
		return "TransportBroken"
	case ErrorKindReplyError:
		return "ReplyError"
	case ErrorKindMisuse:
		return "MisuseError"
	default:
		return "Unknown"
	}
}

// ErrMissingConfig is the only hard startup failure: the project cannot be
// identified without both ids.
var ErrMissingConfig = fmt.Errorf("interactive config missing appid or projectversionid")
