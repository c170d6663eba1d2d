package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"
	ErrProtoVersion    = "E_PROTO_VERSION"

	// Session layer.
	ErrBadRequest   = "E_BAD_REQUEST"
	ErrUnknownLevel = "E_UNKNOWN_LEVEL"
	ErrBadAction    = "E_BAD_ACTION"
	ErrObserverOnly = "E_OBSERVER_ONLY"
	ErrInternal     = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrProtoVersion:    {},
	ErrBadRequest:      {},
	ErrUnknownLevel:    {},
	ErrBadAction:       {},
	ErrObserverOnly:    {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
