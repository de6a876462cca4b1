package repository

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"gorm.io/gorm"
)

// Bill number prefixes per transaction type.
const (
	PurchaseBillPrefix = "PB"
	SaleBillPrefix     = "SB"
)

var billSeqPattern = regexp.MustCompile(`-(\d{4})$`)

// NextBillNumber issues the next sequential bill number for today, e.g.
// PB-20260827-0007. The sequence restarts each calendar day. It must run
// inside the bill's transaction; the unique index on bill_number backstops
// any race between two bills issued in the same instant. Table is queried
// unscoped, so numbers of soft-deleted bills are never reissued.
func NextBillNumber(tx *gorm.DB, table, prefix string) (string, error) {
	datePart := time.Now().Format("20060102")

	var latest []string
	err := tx.Table(table).
		Where("bill_number LIKE ?", fmt.Sprintf("%s-%s-%%", prefix, datePart)).
		Order("bill_number DESC").
		Limit(1).
		Pluck("bill_number", &latest).Error
	if err != nil {
		return "", err
	}

	sequence := 1
	if len(latest) > 0 {
		if m := billSeqPattern.FindStringSubmatch(latest[0]); m != nil {
			n, err := strconv.Atoi(m[1])
			if err == nil {
				sequence = n + 1
			}
		}
	}

	return fmt.Sprintf("%s-%s-%04d", prefix, datePart, sequence), nil
}
