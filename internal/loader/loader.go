// Package loader handles ROM file loading operations, including ROMs
// that are stored inside of compressed archives (ZIP, 7z, gzip, tar.gz, RAR).
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrogolib/log"
)

// Extensions lists the file extensions of CHIP-8 ROMs.
var Extensions = []string{".ch8", ".c8", ".rom", ".bin"}

var (
	// ErrNoROMFile is returned when no ROM file is found in an archive.
	ErrNoROMFile = errors.New("no ROM file found in archive")
	// ErrROMTooLarge is returned for ROMs that do not fit into the program space.
	ErrROMTooLarge = errors.New("ROM exceeds program space")
	// ErrEmptyROM is returned for ROMs without any data.
	ErrEmptyROM = errors.New("ROM is empty")
)

// Magic bytes for format detection.
var (
	magicZIP    = []byte{0x50, 0x4B, 0x03, 0x04}
	magicZIPEnd = []byte{0x50, 0x4B, 0x05, 0x06} // empty zip
	magic7z     = []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}
	magicGzip   = []byte{0x1F, 0x8B}
	magicRAR    = []byte{0x52, 0x61, 0x72, 0x21} // "Rar!"
)

type formatType int

const (
	formatRaw formatType = iota
	formatZIP
	format7z
	formatGzip
	formatRAR
)

// ROM is a loaded program image.
type ROM struct {
	Name string // base name of the ROM file, inside of the archive for archives
	Data []byte
}

// Loader handles loading ROM files from disk.
type Loader struct {
	logger *log.Logger
}

// New creates a new ROM loader.
func New(logger *log.Logger) *Loader {
	return &Loader{
		logger: logger,
	}
}

// Load reads a ROM from a file path. Archives are detected by their magic
// bytes or file extension and the first contained file with a CHIP-8 ROM
// extension is extracted. All other files are loaded as raw program images.
func (l *Loader) Load(path string) (ROM, error) {
	format, err := detectFileFormat(path)
	if err != nil {
		return ROM{}, err
	}

	var data []byte
	var name string

	switch format {
	case formatZIP:
		data, name, err = extractFromZIP(path, Extensions)
	case format7z:
		data, name, err = extractFrom7z(path, Extensions)
	case formatGzip:
		data, name, err = extractFromGzip(path, Extensions)
	case formatRAR:
		data, name, err = extractFromRAR(path, Extensions)
	default:
		data, name, err = readRaw(path)
	}
	if err != nil {
		return ROM{}, fmt.Errorf("loading ROM %s: %w", path, err)
	}

	l.logger.Debug("ROM file read",
		log.String("file", path),
		log.String("name", name),
		log.Int("size", len(data)))

	return l.LoadFromBytes(name, data)
}

// LoadFromBytes validates an in-memory program image.
func (l *Loader) LoadFromBytes(name string, data []byte) (ROM, error) {
	if len(data) == 0 {
		return ROM{}, fmt.Errorf("%w: %s", ErrEmptyROM, name)
	}
	if len(data) > machine.MaxProgramSize {
		return ROM{}, fmt.Errorf("%w: %s has %d bytes, maximum is %d",
			ErrROMTooLarge, name, len(data), machine.MaxProgramSize)
	}
	return ROM{Name: name, Data: data}, nil
}

func detectFileFormat(path string) (formatType, error) {
	f, err := os.Open(path)
	if err != nil {
		return formatRaw, fmt.Errorf("opening file %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	header := make([]byte, 16)
	n, err := f.Read(header)
	if err != nil && !errors.Is(err, io.EOF) {
		return formatRaw, fmt.Errorf("reading file header of %s: %w", path, err)
	}
	return detectFormat(header[:n], path), nil
}

// detectFormat determines the file format based on magic bytes and extension.
func detectFormat(header []byte, path string) formatType {
	switch {
	case bytes.HasPrefix(header, magicZIP), bytes.HasPrefix(header, magicZIPEnd):
		return formatZIP
	case bytes.HasPrefix(header, magicRAR):
		return formatRAR
	case bytes.HasPrefix(header, magic7z):
		return format7z
	case bytes.HasPrefix(header, magicGzip):
		return formatGzip
	}

	lowerPath := strings.ToLower(path)
	switch filepath.Ext(lowerPath) {
	case ".zip":
		return formatZIP
	case ".7z":
		return format7z
	case ".gz", ".tgz":
		return formatGzip
	case ".rar":
		return formatRAR
	}
	return formatRaw
}

func readRaw(path string) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("opening file: %w", err)
	}
	defer func() { _ = f.Close() }()

	data, err := limitedRead(f)
	if err != nil {
		return nil, "", err
	}
	return data, filepath.Base(path), nil
}

// isROMFile checks if a filename has one of the given ROM extensions.
func isROMFile(name string, extensions []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// limitedRead reads the program image from r, reading at most one byte more
// than fits into the program space to detect oversized ROMs.
func limitedRead(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, machine.MaxProgramSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading data: %w", err)
	}
	if len(data) > machine.MaxProgramSize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrROMTooLarge, machine.MaxProgramSize)
	}
	return data, nil
}
