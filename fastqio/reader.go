package fastqio

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"os"

	"github.com/shenwei356/bio/seqio/fastx"
)

// Record is one parsed (name, sequence) pair, matching spec §3's Read.
type Record struct {
	Name []byte
	Seq  []byte
}

// RecordSource is the common interface ShardReader and WholeFileReader
// satisfy, so package shard doesn't need to know which one it's driving.
type RecordSource interface {
	Next() (*Record, error)
	Close() error
}

// ErrMalformedRecord is returned by ShardReader when a record's framing
// can't be parsed; per spec §7 this is non-fatal, and callers are expected
// to log and skip rather than abort.
var ErrMalformedRecord = errors.New("fastqio: malformed record")

// ShardReader is the lazy, finite, non-restartable FASTQ/FASTA iterator of
// spec §4.B, scanning a single shard's byte range [start, end) of an
// already-open file handle.
type ShardReader struct {
	r       *bufio.Reader
	f       *os.File
	end     int64
	pos     int64
	stopped bool
}

// NewShardReader seeks f to start and returns a ShardReader that yields
// records until the cursor at a record's start reaches end or the file
// ends, per spec §4.B.
func NewShardReader(f *os.File, start, end int64) (*ShardReader, error) {
	if _, err := f.Seek(start, io.SeekStart); err != nil {
		return nil, err
	}
	return &ShardReader{
		r:   bufio.NewReaderSize(f, 1<<16),
		f:   f,
		end: end,
		pos: start,
	}, nil
}

// Next returns the next record, or (nil, io.EOF) once the shard is
// exhausted.
func (s *ShardReader) Next() (*Record, error) {
	if s.stopped || s.pos >= s.end {
		return nil, io.EOF
	}

	lead, err := s.r.Peek(1)
	if err != nil {
		s.stopped = true
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, err
	}

	switch lead[0] {
	case '@':
		return s.nextFastq()
	case '>':
		return s.nextFasta()
	default:
		// Unrecognized framing at what should be a record boundary: a
		// MalformedFastq condition (spec §7). Not fatal -- skip this byte
		// and let the caller retry, same contract as io.EOF otherwise.
		s.r.Discard(1)
		s.pos++
		return nil, ErrMalformedRecord
	}
}

func (s *ShardReader) nextFastq() (*Record, error) {
	nameLine, err := s.readLine()
	if err != nil {
		return nil, err
	}
	seqLine, err := s.readLine()
	if err != nil {
		return nil, err
	}
	plusLine, err := s.readLine()
	if err != nil {
		return nil, err
	}
	if len(plusLine) == 0 || plusLine[0] != '+' {
		return nil, ErrMalformedRecord
	}
	qualLine, err := s.readLine()
	if err != nil && err != io.EOF {
		return nil, err
	}
	_ = qualLine

	name := bytes.TrimPrefix(nameLine, []byte{'@'})
	if sp := bytes.IndexByte(name, ' '); sp >= 0 {
		name = name[:sp]
	}
	return &Record{Name: name, Seq: seqLine}, nil
}

func (s *ShardReader) nextFasta() (*Record, error) {
	nameLine, err := s.readLine()
	if err != nil {
		return nil, err
	}
	name := bytes.TrimPrefix(nameLine, []byte{'>'})
	if sp := bytes.IndexByte(name, ' '); sp >= 0 {
		name = name[:sp]
	}

	var seq bytes.Buffer
	for {
		lead, err := s.r.Peek(1)
		if err != nil || lead[0] == '>' {
			break
		}
		line, err := s.readLine()
		if err != nil {
			break
		}
		seq.Write(line)
	}

	return &Record{Name: name, Seq: seq.Bytes()}, nil
}

// readLine reads one newline-terminated line (without the terminator),
// tracking s.pos so Next can tell when the cursor has crossed s.end.
func (s *ShardReader) readLine() ([]byte, error) {
	line, err := s.r.ReadBytes('\n')
	s.pos += int64(len(line))
	line = bytes.TrimRight(line, "\r\n")
	if err != nil {
		if err == io.EOF && len(line) > 0 {
			return line, nil
		}
		return nil, err
	}
	return line, nil
}

// Close is a no-op: ShardReader doesn't own f (the shard driver does, since
// multiple readers over the lifetime of a worker might share an open
// handle in principle, and because f was opened by the caller in the first
// place).
func (s *ShardReader) Close() error { return nil }

// WholeFileReader wraps github.com/shenwei356/bio/seqio/fastx for the
// single-shard, possibly-gzipped path (spec §4.B.1): when a patterns file
// is gzip-detected, the driver forces one shard spanning the whole file, so
// there are no interior byte-range boundaries to honor and the real
// FASTA/FASTQ decoder can be used directly instead of the hand-rolled,
// shard-boundary-aware ShardReader above.
type WholeFileReader struct {
	rd *fastx.Reader
}

// NewWholeFileReader opens path, transparently gzip-decompressing it (the
// same way lexicmap/cmd/search.go drives fastx.NewReader over its input
// files), and returns a WholeFileReader.
func NewWholeFileReader(path string) (*WholeFileReader, error) {
	rd, err := fastx.NewReader(nil, path, "")
	if err != nil {
		return nil, err
	}
	return &WholeFileReader{rd: rd}, nil
}

func (w *WholeFileReader) Next() (*Record, error) {
	rec, err := w.rd.Read()
	if err != nil {
		return nil, err
	}
	return &Record{Name: append([]byte(nil), rec.ID...), Seq: append([]byte(nil), rec.Seq.Seq...)}, nil
}

func (w *WholeFileReader) Close() error {
	w.rd.Close()
	return nil
}
