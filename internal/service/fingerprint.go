package service

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"

	"github.com/jjenkins/billt/internal/model"
)

// Fingerprint returns the value used to detect changes to a bill between runs.
// LegiScan's change_hash is used as is; bills without one are hashed from the
// fields the archive stores.
func Fingerprint(b model.Bill, d *model.BillDetail) string {
	if b.ChangeHash != "" {
		return b.ChangeHash
	}

	input := fmt.Sprintf("%d|%s|%s|%s|%s|%s",
		b.BillID, b.State, b.BillNumber, b.Title, b.LastActionDate, b.LastAction)
	if d != nil {
		input += fmt.Sprintf("|%d|%s", d.Status.Code(), d.StatusDate)
	}

	hash := md5.Sum([]byte(input))
	return hex.EncodeToString(hash[:])
}
