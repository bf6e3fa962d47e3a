package sheetstore

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
)

var (
	// ErrRangeNotFound means the addressed sheet or range does not exist.
	ErrRangeNotFound = errors.New("range not found")

	// ErrRemoteUnavailable covers every other failure talking to the
	// spreadsheet provider. The provider's message is preserved verbatim.
	ErrRemoteUnavailable = errors.New("spreadsheet unavailable")

	// ErrShareFailed means the permission grant to the service account was
	// rejected, typically because the spreadsheet is not visible to it.
	ErrShareFailed = errors.New("failed to share spreadsheet")
)

func wrapAPIError(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Code == http.StatusNotFound ||
			(gerr.Code == http.StatusBadRequest && strings.Contains(gerr.Message, "Unable to parse range")) {
			return fmt.Errorf("%s: %w: %s", op, ErrRangeNotFound, gerr.Message)
		}
	}
	return fmt.Errorf("%s: %w: %v", op, ErrRemoteUnavailable, err)
}
