package treasure

import (
	"encoding/binary"
	"fmt"
	"io"
)

// recordSize is the fixed on-disk size of one treasure record inside a
// zone's .ebp file. All fields are little-endian.
const recordSize = 24

// Record is one treasure chest entry decoded from a zone file.
type Record struct {
	ID             uint32
	PosX           int16
	PosY           int16
	RespawnSlot    uint8
	SpawnChance    uint8
	GilChance      uint8
	FirstItem      uint16
	SecondItem     uint16
	RareFirstItem  uint16
	RareSecondItem uint16
	GilAmount      uint16
	RareGilAmount  uint16
}

// decodeRecord interprets a single 24-byte treasure record.
func decodeRecord(buf []byte) Record {
	return Record{
		ID:             binary.LittleEndian.Uint32(buf[0:4]),
		PosX:           int16(binary.LittleEndian.Uint16(buf[4:6])),
		PosY:           int16(binary.LittleEndian.Uint16(buf[6:8])),
		RespawnSlot:    buf[9], // buf[8] is padding
		SpawnChance:    buf[10],
		GilChance:      buf[11],
		FirstItem:      binary.LittleEndian.Uint16(buf[12:14]),
		SecondItem:     binary.LittleEndian.Uint16(buf[14:16]),
		RareFirstItem:  binary.LittleEndian.Uint16(buf[16:18]),
		RareSecondItem: binary.LittleEndian.Uint16(buf[18:20]),
		GilAmount:      binary.LittleEndian.Uint16(buf[20:22]),
		RareGilAmount:  binary.LittleEndian.Uint16(buf[22:24]),
	}
}

// ReadRecords seeks to offset in r and decodes quantity consecutive
// treasure records.
func ReadRecords(r io.ReadSeeker, offset int64, quantity int) ([]Record, error) {
	if _, err := r.Seek(offset, io.SeekStart); err != nil {
		return nil, err
	}
	records := make([]Record, 0, quantity)
	buf := make([]byte, recordSize)
	for i := 0; i < quantity; i++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		records = append(records, decodeRecord(buf))
	}
	return records, nil
}
