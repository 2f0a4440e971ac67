package stores

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"time"

	"github.com/MrEthical07/goCred/credential"
)

const (
	recordFormatV1 = 1

	flagPasswordChangedAt   = 1 << 0
	flagLockUntil           = 1 << 1
	flagResetTokenExpiresAt = 1 << 2
)

var ErrCorruptRecord = errors.New("corrupt credential record")

// Layout (big endian):
//
//	format u8 | version i64 | attempts u32 | flags u8 |
//	created i64 | updated i64 | [changed i64] [lockUntil i64] [resetExpires i64] |
//	id str16 | hash str16 | resetHash str16
//
// Times are Unix nanoseconds; str16 is a u16 length followed by bytes.
func encodeRecord(r *credential.Record) ([]byte, error) {
	if r.LoginAttempts < 0 {
		return nil, errors.New("negative login attempts")
	}

	var buf bytes.Buffer
	buf.WriteByte(recordFormatV1)

	var flags byte
	if r.PasswordChangedAt != nil {
		flags |= flagPasswordChangedAt
	}
	if r.LockUntil != nil {
		flags |= flagLockUntil
	}
	if r.ResetTokenExpiresAt != nil {
		flags |= flagResetTokenExpiresAt
	}

	fixed := []any{
		r.Version,
		uint32(r.LoginAttempts),
		flags,
		r.CreatedAt.UnixNano(),
		r.UpdatedAt.UnixNano(),
	}
	for _, v := range fixed {
		if err := binary.Write(&buf, binary.BigEndian, v); err != nil {
			return nil, err
		}
	}

	for _, t := range []*time.Time{r.PasswordChangedAt, r.LockUntil, r.ResetTokenExpiresAt} {
		if t == nil {
			continue
		}
		if err := binary.Write(&buf, binary.BigEndian, t.UnixNano()); err != nil {
			return nil, err
		}
	}

	for _, s := range []string{r.ID, r.PasswordHash, r.ResetTokenHash} {
		if err := writeString16(&buf, s); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

func decodeRecord(data []byte) (*credential.Record, error) {
	r, err := decodeRecordV1(data)
	if err != nil {
		return nil, errors.Join(ErrCorruptRecord, err)
	}
	return r, nil
}

func decodeRecordV1(data []byte) (*credential.Record, error) {
	reader := bytes.NewReader(data)

	format, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if format != recordFormatV1 {
		return nil, errors.New("unknown record format")
	}

	var (
		r        credential.Record
		attempts uint32
		flags    byte
		created  int64
		updated  int64
	)
	for _, v := range []any{&r.Version, &attempts, &flags, &created, &updated} {
		if err := binary.Read(reader, binary.BigEndian, v); err != nil {
			return nil, err
		}
	}
	r.LoginAttempts = int(attempts)
	r.CreatedAt = time.Unix(0, created).UTC()
	r.UpdatedAt = time.Unix(0, updated).UTC()

	optional := []struct {
		flag byte
		dst  **time.Time
	}{
		{flagPasswordChangedAt, &r.PasswordChangedAt},
		{flagLockUntil, &r.LockUntil},
		{flagResetTokenExpiresAt, &r.ResetTokenExpiresAt},
	}
	for _, o := range optional {
		if flags&o.flag == 0 {
			continue
		}
		var ns int64
		if err := binary.Read(reader, binary.BigEndian, &ns); err != nil {
			return nil, err
		}
		t := time.Unix(0, ns).UTC()
		*o.dst = &t
	}

	for _, dst := range []*string{&r.ID, &r.PasswordHash, &r.ResetTokenHash} {
		s, err := readString16(reader)
		if err != nil {
			return nil, err
		}
		*dst = s
	}

	if reader.Len() != 0 {
		return nil, errors.New("trailing bytes")
	}
	return &r, nil
}

func writeString16(buf *bytes.Buffer, s string) error {
	if len(s) > 65535 {
		return errors.New("record field too long")
	}
	if err := binary.Write(buf, binary.BigEndian, uint16(len(s))); err != nil {
		return err
	}
	buf.WriteString(s)
	return nil
}

func readString16(reader *bytes.Reader) (string, error) {
	var n uint16
	if err := binary.Read(reader, binary.BigEndian, &n); err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(reader, b); err != nil {
		return "", err
	}
	return string(b), nil
}
