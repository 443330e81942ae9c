package audio

import (
	"errors"

	ole "github.com/go-ole/go-ole"
)

// sFalse is the HRESULT COM returns when a call succeeded without changing
// anything, e.g. SetMute on an endpoint already in that state or
// CoInitializeEx on a thread that already joined an apartment.
const sFalse = 0x00000001

// succeeded drops S_FALSE errors, which go-ole reports like any other
// non-zero HRESULT.
func succeeded(err error) error {
	var oleErr *ole.OleError
	if errors.As(err, &oleErr) && oleErr.Code() == sFalse {
		return nil
	}
	return err
}
