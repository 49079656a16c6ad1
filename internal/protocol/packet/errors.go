package packet

import (
	"fmt"

	domaintypes "blechat/internal/domain/types"
)

func truncated(t Type, got, want int) error {
	return domaintypes.Wrap(domaintypes.CodeTruncatedPacket,
		fmt.Sprintf("%s packet is %d bytes, need %d", t, got, want), nil)
}

func malformed(format string, args ...any) error {
	return domaintypes.Wrap(domaintypes.CodeMalformedPacket,
		"malformed packet: "+fmt.Sprintf(format, args...), nil)
}

func malformedCause(field string, cause error) error {
	return domaintypes.Wrap(domaintypes.CodeMalformedPacket, "malformed packet: "+field, cause)
}

func encoding(field string, cause error) error {
	return domaintypes.Wrap(domaintypes.CodeEncoding, "encode "+field, cause)
}
