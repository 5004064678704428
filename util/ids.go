package util

import (
	"github.com/rs/xid"
)

// GenID generates a short unique ID string.
// IDs are globally unique and sortable.
func GenID() string {
	return xid.New().String()
}
