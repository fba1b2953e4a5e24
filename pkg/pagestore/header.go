package pagestore

import (
	"encoding/binary"
	"fmt"

	"github.com/segmentio/ksuid"
)

var fileMagic = [8]byte{'B', 'T', 'R', 'E', 'E', 'P', 'F', '1'}

// headerSize is the fixed size of the file header occupying the first
// bytes of a page file.
const headerSize = 64

// fileHeader describes the page file's fixed layout: page geometry
// (must match the type descriptor and branching factor the caller opens
// it with), the page-allocation high-water mark, the current root page
// id and tree height (rewritten every time the root changes, so a
// reopen resumes at the live root instead of guessing page 1), and a
// fresh KSUID stamped on every open as a crash-recovery breadcrumb,
// mirroring the instance tagging the teacher's storage layer does with
// the same library.
type fileHeader struct {
	pageSize      uint32
	keySize       uint32
	valueSize     uint32
	maxNodeSize   uint32
	nextPageIndex uint32
	rootPageID    uint32
	height        uint32
	sessionID     ksuid.KSUID
}

func encodeHeader(h fileHeader) []byte {
	buf := make([]byte, headerSize)
	copy(buf[0:8], fileMagic[:])
	binary.BigEndian.PutUint32(buf[8:12], h.pageSize)
	binary.BigEndian.PutUint32(buf[12:16], h.keySize)
	binary.BigEndian.PutUint32(buf[16:20], h.valueSize)
	binary.BigEndian.PutUint32(buf[20:24], h.maxNodeSize)
	binary.BigEndian.PutUint32(buf[24:28], h.nextPageIndex)
	binary.BigEndian.PutUint32(buf[28:32], h.rootPageID)
	binary.BigEndian.PutUint32(buf[32:36], h.height)
	copy(buf[36:56], h.sessionID.Bytes())
	return buf
}

func decodeHeader(buf []byte) (fileHeader, error) {
	if len(buf) < headerSize {
		return fileHeader{}, fmt.Errorf("pagestore: decode header: truncated")
	}
	if string(buf[0:8]) != string(fileMagic[:]) {
		return fileHeader{}, fmt.Errorf("pagestore: decode header: bad magic")
	}
	sid, err := ksuid.FromBytes(buf[36:56])
	if err != nil {
		return fileHeader{}, fmt.Errorf("pagestore: decode header: session id: %w", err)
	}
	return fileHeader{
		pageSize:      binary.BigEndian.Uint32(buf[8:12]),
		keySize:       binary.BigEndian.Uint32(buf[12:16]),
		valueSize:     binary.BigEndian.Uint32(buf[16:20]),
		maxNodeSize:   binary.BigEndian.Uint32(buf[20:24]),
		nextPageIndex: binary.BigEndian.Uint32(buf[24:28]),
		rootPageID:    binary.BigEndian.Uint32(buf[28:32]),
		height:        binary.BigEndian.Uint32(buf[32:36]),
		sessionID:     sid,
	}, nil
}
