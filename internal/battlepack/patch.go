package battlepack

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/CerulanLumina/ff12tza-utils/internal/common"
)

// Equipment record array layout inside the battle pack. The array carries
// no declared offset in the section table; it is rediscovered by signature
// on every patch invocation.
const (
	equipmentArrayOffset = 8 // from the signature to the first record
	equipmentRecordSize  = 52
	equipmentRecordCount = 200
	flyingFlagOffset     = 7 // within each record
	flyingFlagMask       = 0b100
)

var equipmentSignature = []byte{0x44, 0x71, 0x00}

// AllowAllFlying locates the equipment record array in the battle pack at
// path and sets the flying-capability bit on every record, in place. It
// returns the number of records whose flag byte actually changed. No byte
// is modified unless the signature was found.
func AllowAllFlying(path string, audit *common.PatchLog) (int, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	loc, found, err := FindSignature(f, equipmentSignature)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, ErrSignatureNotFound
	}

	base := loc + equipmentArrayOffset
	changed, err := PatchRecordArray(f, base, equipmentRecordSize, flyingFlagOffset, equipmentRecordCount, flyingFlagMask, audit)
	if err != nil {
		return changed, err
	}
	return changed, f.Sync()
}

// PatchRecordArray ORs mask into the byte at base + i*stride + fieldOffset
// for each of count records. Records are patched strictly in order via
// read-modify-write at the exact position; setting bits only, the operation
// is idempotent. Any read or write failure aborts the whole operation with
// no rollback of records already patched.
func PatchRecordArray(f *os.File, base, stride, fieldOffset int64, count int, mask byte, audit *common.PatchLog) (int, error) {
	changed := 0
	buf := make([]byte, 1)
	for i := 0; i < count; i++ {
		off := base + int64(i)*stride + fieldOffset
		if _, err := f.ReadAt(buf, off); err != nil {
			return changed, fmt.Errorf("read record %d at offset %d: %w", i, off, err)
		}
		before := buf[0]
		buf[0] |= mask
		if _, err := f.WriteAt(buf, off); err != nil {
			return changed, fmt.Errorf("write record %d at offset %d: %w", i, off, err)
		}
		if buf[0] != before {
			changed++
		}
		if audit != nil {
			entry := common.PatchEntry{
				Op:        "set-record-flag",
				Offset:    off,
				BeforeHex: hex.EncodeToString([]byte{before}),
				AfterHex:  hex.EncodeToString([]byte{buf[0]}),
			}
			if err := audit.Append(entry); err != nil {
				return changed, fmt.Errorf("append audit entry for record %d: %w", i, err)
			}
		}
	}
	return changed, nil
}
