package can

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrSyntax is returned for frame strings that do not follow cansend notation.
var ErrSyntax = errors.New("frame syntax")

// ParseFrame parses cansend notation:
//
//	<id>#<data>    data frame, up to 8 hex byte pairs, '.' separators allowed
//	<id>#R[<len>]  remote frame with optional length code 0..8
//
// Three hex digits select a standard identifier, eight an extended one.
func ParseFrame(s string) (Frame, error) {
	var f Frame
	idPart, rest, ok := strings.Cut(strings.TrimSpace(s), "#")
	if !ok {
		return f, fmt.Errorf("%w: missing '#' in %q", ErrSyntax, s)
	}
	switch len(idPart) {
	case 3:
		id, err := strconv.ParseUint(idPart, 16, 32)
		if err != nil || id > CAN_SFF_MASK {
			return f, fmt.Errorf("%w: bad standard id %q", ErrSyntax, idPart)
		}
		f.CANID = uint32(id)
	case 8:
		id, err := strconv.ParseUint(idPart, 16, 32)
		if err != nil || id > CAN_EFF_MASK {
			return f, fmt.Errorf("%w: bad extended id %q", ErrSyntax, idPart)
		}
		f.CANID = uint32(id) | CAN_EFF_FLAG
	default:
		return f, fmt.Errorf("%w: id %q must have 3 or 8 hex digits", ErrSyntax, idPart)
	}

	if strings.HasPrefix(rest, "R") || strings.HasPrefix(rest, "r") {
		f.CANID |= CAN_RTR_FLAG
		if l := rest[1:]; l != "" {
			n, err := strconv.ParseUint(l, 10, 8)
			if err != nil || n > MaxDataLen {
				return f, fmt.Errorf("%w: bad remote length %q", ErrSyntax, l)
			}
			f.Len = uint8(n)
		}
		return f, nil
	}

	raw, err := hex.DecodeString(strings.ReplaceAll(rest, ".", ""))
	if err != nil {
		return f, fmt.Errorf("%w: data: %v", ErrSyntax, err)
	}
	if len(raw) > MaxDataLen {
		return f, fmt.Errorf("%w: %d data bytes exceeds %d", ErrSyntax, len(raw), MaxDataLen)
	}
	f.Len = uint8(copy(f.Data[:], raw))
	return f, nil
}
