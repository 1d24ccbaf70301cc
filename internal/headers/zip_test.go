package headers

import (
	"encoding/binary"
	"testing"
)

func le32(v uint32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, v)
	return buf
}

func TestFindEndOfCentralDirNoComment(t *testing.T) {
	var archive []byte
	archive = append(archive, "PK\x03\x04 fake local header bytes..."...)
	eocd := append(le32(EndOfCentralDirSignature), make([]byte, 18)...)
	archive = append(archive, eocd...)

	offset, err := FindEndOfCentralDir(archive)
	if err != nil {
		t.Fatalf("FindEndOfCentralDir: %v", err)
	}
	if offset != len(archive)-EndOfCentralDirSize {
		t.Fatalf("offset = %d, want %d", offset, len(archive)-EndOfCentralDirSize)
	}
}

func TestFindEndOfCentralDirMissing(t *testing.T) {
	if _, err := FindEndOfCentralDir([]byte("not a zip file at all")); err == nil {
		t.Fatal("FindEndOfCentralDir on non-ZIP data must fail")
	}
}

func TestReadEndOfCentralDirFields(t *testing.T) {
	buf := make([]byte, EndOfCentralDirSize)
	binary.LittleEndian.PutUint32(buf[0:4], EndOfCentralDirSignature)
	binary.LittleEndian.PutUint16(buf[10:12], 3)
	binary.LittleEndian.PutUint32(buf[12:16], 100)
	binary.LittleEndian.PutUint32(buf[16:20], 200)

	eocd, err := ReadEndOfCentralDir(buf, 0)
	if err != nil {
		t.Fatalf("ReadEndOfCentralDir: %v", err)
	}
	if eocd.TotalEntries != 3 || eocd.CentralDirSize != 100 || eocd.CentralDirOffset != 200 {
		t.Fatalf("ReadEndOfCentralDir = %+v", eocd)
	}
}

func TestReadCentralDirectoryEntryRoundTrip(t *testing.T) {
	name := "hello.txt"
	buf := make([]byte, CentralDirectoryFixedSize+len(name))
	binary.LittleEndian.PutUint32(buf[0:4], CentralDirectorySignature)
	binary.LittleEndian.PutUint16(buf[10:12], 8)
	binary.LittleEndian.PutUint32(buf[16:20], 0xDEADBEEF)
	binary.LittleEndian.PutUint32(buf[20:24], 42)
	binary.LittleEndian.PutUint32(buf[24:28], 100)
	binary.LittleEndian.PutUint16(buf[28:30], uint16(len(name)))
	binary.LittleEndian.PutUint32(buf[42:46], 7)
	copy(buf[CentralDirectoryFixedSize:], name)

	entry, next, err := ReadCentralDirectoryEntry(buf, 0)
	if err != nil {
		t.Fatalf("ReadCentralDirectoryEntry: %v", err)
	}
	if entry.CompressionMethod != 8 || entry.CRC32 != 0xDEADBEEF || entry.CompressedSize != 42 ||
		entry.UncompressedSize != 100 || entry.Filename != name || entry.LocalHeaderOffset != 7 {
		t.Fatalf("ReadCentralDirectoryEntry = %+v", entry)
	}
	if next != len(buf) {
		t.Fatalf("next = %d, want %d", next, len(buf))
	}
}

func TestReadLocalFileHeaderComputesPayloadOffset(t *testing.T) {
	name := "a.bin"
	buf := make([]byte, LocalFileHeaderSize+len(name))
	binary.LittleEndian.PutUint32(buf[0:4], LocalFileHeaderSignature)
	binary.LittleEndian.PutUint16(buf[26:28], uint16(len(name)))
	binary.LittleEndian.PutUint16(buf[28:30], 4) // extra field length
	buf = append(buf, make([]byte, 4)...)
	copy(buf[LocalFileHeaderSize:], name)

	hdr, payloadOffset, err := ReadLocalFileHeader(buf, 0)
	if err != nil {
		t.Fatalf("ReadLocalFileHeader: %v", err)
	}
	if hdr.FilenameLength != uint16(len(name)) || hdr.ExtraFieldLength != 4 {
		t.Fatalf("ReadLocalFileHeader = %+v", hdr)
	}
	want := LocalFileHeaderSize + len(name) + 4
	if payloadOffset != want {
		t.Fatalf("payloadOffset = %d, want %d", payloadOffset, want)
	}
}
