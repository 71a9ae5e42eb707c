package shard

import (
	"bufio"
	"encoding/binary"
	"io"
)

// ReadMSRecord decodes one `.ms.tmp` record per spec §4.E: m (u64), then m
// pointers, then m lengths, all native-endian. Returns io.EOF (unwrapped,
// so callers can use it as a normal end-of-file sentinel) once r is
// exhausted between records.
func ReadMSRecord(r *bufio.Reader) (pointers, lengths []uint64, err error) {
	var m uint64
	if err := binary.Read(r, nativeEndian, &m); err != nil {
		return nil, nil, err
	}

	pointers = make([]uint64, m)
	if err := binary.Read(r, nativeEndian, pointers); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, nil, err
	}

	lengths = make([]uint64, m)
	if err := binary.Read(r, nativeEndian, lengths); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, nil, err
	}

	return pointers, lengths, nil
}
