package repos

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is what handlers map to a 404.
var ErrNotFound = errors.New("record not found")

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
