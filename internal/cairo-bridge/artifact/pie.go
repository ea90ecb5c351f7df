// Package artifact reads execution artifacts: PIE archives and the relocated
// trace, memory and public input a run leaves on disk.
package artifact

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/core"
	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/hints"
)

// LegacyVersion is reported for archives written before version.json existed.
const LegacyVersion = "1.0"

// Archive members.
const (
	MemberVersion            = "version.json"
	MemberMetadata           = "metadata.json"
	MemberMemory             = "memory.bin"
	MemberExecutionResources = "execution_resources.json"
	MemberAdditionalData     = "additional_data.json"
)

// ErrMalformedArchive is returned when the container or one of its members
// cannot be decoded.
var ErrMalformedArchive = errors.New("malformed archive")

// MissingMemberError names a required archive member that is absent.
type MissingMemberError struct {
	Member string
}

func (e *MissingMemberError) Error() string {
	return fmt.Sprintf("archive member %s is missing", e.Member)
}

// Version is the archive format marker.
type Version struct {
	CairoPie string `json:"cairo_pie"`
}

// SegmentInfo is the index and used size of one segment.
type SegmentInfo struct {
	Index uint64 `json:"index"`
	Size  uint64 `json:"size"`
}

// StrippedProgram is the program part of the metadata.
type StrippedProgram struct {
	Data     []hints.BigIntAsHex `json:"data"`
	Builtins []string            `json:"builtins"`
	Main     uint64              `json:"main"`
	Prime    string              `json:"prime"`
}

// Metadata describes the segments of the run.
type Metadata struct {
	Program          StrippedProgram        `json:"program"`
	ProgramSegment   SegmentInfo            `json:"program_segment"`
	ExecutionSegment SegmentInfo            `json:"execution_segment"`
	RetFpSegment     SegmentInfo            `json:"ret_fp_segment"`
	RetPcSegment     SegmentInfo            `json:"ret_pc_segment"`
	BuiltinSegments  map[string]SegmentInfo `json:"builtin_segments"`
	ExtraSegments    []SegmentInfo          `json:"extra_segments"`
}

// Segments returns every segment listed in the metadata.
func (m *Metadata) Segments() []SegmentInfo {
	segs := []SegmentInfo{m.ProgramSegment, m.ExecutionSegment, m.RetFpSegment, m.RetPcSegment}
	for _, s := range m.BuiltinSegments {
		segs = append(segs, s)
	}
	return append(segs, m.ExtraSegments...)
}

// ExecutionResources summarizes the work a run performed.
type ExecutionResources struct {
	NSteps                 uint64            `json:"n_steps"`
	NMemoryHoles           uint64            `json:"n_memory_holes"`
	BuiltinInstanceCounter map[string]uint64 `json:"builtin_instance_counter"`
}

// AdditionalData holds per-builtin data, kept undecoded.
type AdditionalData map[string]json.RawMessage

// Pie is a position independent execution: a finished run whose memory is
// still expressed relative to segments.
type Pie struct {
	Version            Version
	Metadata           Metadata
	Memory             PieMemory
	ExecutionResources ExecutionResources
	AdditionalData     AdditionalData
}

// Option configures the readers in this package.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger sets the logger used to report decoded members.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func buildOptions(opts []Option) *options {
	o := &options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// OpenPie reads a PIE archive from path.
func OpenPie(path string, opts ...Option) (*Pie, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open pie")
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(err, "stat pie")
	}
	return ReadPie(f, info.Size(), opts...)
}

// ReadPie reads a PIE archive. version.json is optional and defaults to
// LegacyVersion; every other member is required.
func ReadPie(r io.ReaderAt, size int64, opts ...Option) (*Pie, error) {
	o := buildOptions(opts)

	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, errors.Wrapf(ErrMalformedArchive, "open zip: %v", err)
	}
	zr.RegisterDecompressor(zstd.ZipMethodWinZip, zstd.ZipDecompressor())

	pie := &Pie{Version: Version{CairoPie: LegacyVersion}}

	data, err := readMember(zr, MemberVersion)
	var missing *MissingMemberError
	switch {
	case errors.As(err, &missing):
		o.logger.Debug("archive has no version, assuming legacy", zap.String("version", LegacyVersion))
	case err != nil:
		return nil, err
	default:
		if err := decodeMember(MemberVersion, data, &pie.Version); err != nil {
			return nil, err
		}
	}

	if data, err = readMember(zr, MemberMetadata); err != nil {
		return nil, err
	}
	if err := decodeMember(MemberMetadata, data, &pie.Metadata); err != nil {
		return nil, err
	}
	if err := checkPrime(pie.Metadata.Program.Prime); err != nil {
		return nil, err
	}

	if data, err = readMember(zr, MemberMemory); err != nil {
		return nil, err
	}
	if pie.Memory, err = DecodePieMemory(data); err != nil {
		return nil, errors.WithMessage(err, MemberMemory)
	}

	if data, err = readMember(zr, MemberExecutionResources); err != nil {
		return nil, err
	}
	if err := decodeMember(MemberExecutionResources, data, &pie.ExecutionResources); err != nil {
		return nil, err
	}

	if data, err = readMember(zr, MemberAdditionalData); err != nil {
		return nil, err
	}
	if err := decodeMember(MemberAdditionalData, data, &pie.AdditionalData); err != nil {
		return nil, err
	}

	o.logger.Debug("read pie",
		zap.String("version", pie.Version.CairoPie),
		zap.Int("memory_cells", len(pie.Memory)),
		zap.Uint64("n_steps", pie.ExecutionResources.NSteps),
		zap.Int("builtin_segments", len(pie.Metadata.BuiltinSegments)),
	)
	return pie, nil
}

func readMember(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, errors.Wrapf(ErrMalformedArchive, "%s: %v", name, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, errors.Wrapf(ErrMalformedArchive, "%s: %v", name, err)
		}
		return data, nil
	}
	return nil, &MissingMemberError{Member: name}
}

func decodeMember(name string, data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrapf(ErrMalformedArchive, "%s: %v", name, err)
	}
	return nil
}

func checkPrime(prime string) error {
	if prime == "" {
		return nil
	}
	p, err := hints.ParseBigInt(prime)
	if err != nil || p.Int().Cmp(core.Modulus()) != 0 {
		return errors.Wrapf(ErrMalformedArchive, "%s: program prime %s is not the Cairo prime", MemberMetadata, prime)
	}
	return nil
}

// WritePie writes p as a PIE archive. Members listed in zstdMembers are
// compressed with zstd, the rest with deflate.
func WritePie(w io.Writer, p *Pie, zstdMembers ...string) error {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zstd.ZipMethodWinZip, zstd.ZipCompressor())

	memory, err := EncodePieMemory(p.Memory)
	if err != nil {
		return err
	}
	members := []struct {
		name string
		v    interface{}
		raw  []byte
	}{
		{name: MemberVersion, v: p.Version},
		{name: MemberMetadata, v: p.Metadata},
		{name: MemberMemory, raw: memory},
		{name: MemberExecutionResources, v: p.ExecutionResources},
		{name: MemberAdditionalData, v: p.AdditionalData},
	}
	for _, m := range members {
		data := m.raw
		if data == nil {
			if data, err = json.Marshal(m.v); err != nil {
				return errors.Wrapf(err, "encode %s", m.name)
			}
		}
		method := zip.Deflate
		for _, name := range zstdMembers {
			if strings.EqualFold(name, m.name) {
				method = zstd.ZipMethodWinZip
			}
		}
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: m.name, Method: method})
		if err != nil {
			return errors.Wrapf(err, "create %s", m.name)
		}
		if _, err := io.Copy(fw, bytes.NewReader(data)); err != nil {
			return errors.Wrapf(err, "write %s", m.name)
		}
	}
	return zw.Close()
}
