package calculator

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"windfield/buffer"
)

// 文件格式：TurbSim 风格的二进制全场文件，小端序
//
//	int16     格式标识 (7 = 周期性)
//	int32 ×4  Nz, Ny, 塔架点数 (0), Nt
//	real  ×6  Δz, Δy, Δt, 轮毂风速, 轮毂高度, 网格底部高度
//	real  ×6  slope/intercept，按 x, y, z 分量依次排列
//	int32     描述字符串长度，随后为字符串字节
//	int16 ×3  (vx, vy, vz)，按 时间 → z → y 嵌套排列
const (
	FormatPeriodic  int16 = 7
	FormatFullField int16 = 8

	// 解码时的合理性上限
	maxGridSide    = 4096
	maxTimesteps   = 100000000
	maxSamples     = 1 << 27
	maxDescription = 1 << 20
)

// Precision is the width of the real-valued header fields.
type Precision int

const (
	// Float32Header is the layout downstream solvers read.
	Float32Header Precision = iota
	Float64Header
)

type codecOptions struct {
	precision Precision
}

// CodecOption configures EncodeBinary and DecodeBinary.
type CodecOption func(*codecOptions)

// WithPrecision selects the width of header reals. Encoder and decoder must agree.
func WithPrecision(p Precision) CodecOption {
	return func(o *codecOptions) {
		o.precision = p
	}
}

func newCodecOptions(opts []CodecOption) codecOptions {
	o := codecOptions{precision: Float32Header}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// header 文件头
type header struct {
	tag          int16
	nz, ny, nt   int
	dz, dy, dt   float64
	hubSpeed     float64
	hubHeight    float64
	bottom       float64
	slope, icept [numAxes]float64
	description  string
}

// binWriter 记录第一个错误，之后的写入全部跳过
type binWriter struct {
	w         *bufio.Writer
	precision Precision
	err       error
}

func (b *binWriter) put(v interface{}) {
	if b.err != nil {
		return
	}
	b.err = binary.Write(b.w, binary.LittleEndian, v)
}

func (b *binWriter) real(v float64) {
	if b.precision == Float64Header {
		b.put(v)
		return
	}
	b.put(float32(v))
}

// EncodeBinary writes the field in the binary full-field layout. Header reals
// are float32 unless WithPrecision(Float64Header) is given; a file written
// with float64 reals must be decoded with the same option.
func (w *WindField) EncodeBinary(dst io.Writer, opts ...CodecOption) error {
	if !w.Valid() {
		return ErrNotCalculated
	}
	o := newCodecOptions(opts)
	bw := &binWriter{w: bufio.NewWriter(dst), precision: o.precision}
	g := w.grid

	bw.put(FormatPeriodic)
	bw.put([]int32{int32(g.Nz), int32(g.Ny), 0, int32(w.axis.Nt)})
	for _, v := range []float64{g.Dz, g.Dy, w.axis.Dt, w.meta.MeanWindSpeed, w.meta.HubHeight, g.Bottom} {
		bw.real(v)
	}
	for _, q := range w.quant {
		bw.real(q.Slope)
		bw.real(q.Intercept)
	}
	bw.put(int32(len(w.meta.Description)))
	bw.put([]byte(w.meta.Description))
	if bw.err != nil {
		return fmt.Errorf("encode header: %w", bw.err)
	}

	frame := make([]byte, g.Nz*g.Ny*numAxes*2)
	for n := 0; n < w.axis.Nt; n++ {
		off := 0
		for z := 0; z < g.Nz; z++ {
			for y := 0; y < g.Ny; y++ {
				for _, a := range w.vel {
					binary.LittleEndian.PutUint16(frame[off:], uint16(a.Get(z, y, n)))
					off += 2
				}
			}
		}
		if _, err := bw.w.Write(frame); err != nil {
			return fmt.Errorf("encode timestep %d: %w", n, err)
		}
	}
	if err := bw.w.Flush(); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// binReader 读取时把 EOF 转换成 ErrTruncated
type binReader struct {
	r         *bufio.Reader
	precision Precision
	err       error
}

func (b *binReader) get(v interface{}) {
	if b.err != nil {
		return
	}
	if err := binary.Read(b.r, binary.LittleEndian, v); err != nil {
		b.err = readErr(err)
	}
}

func (b *binReader) real() float64 {
	if b.precision == Float64Header {
		var v float64
		b.get(&v)
		return v
	}
	var v float32
	b.get(&v)
	return float64(v)
}

func readErr(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	return err
}

func formatErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrBadFormat, fmt.Sprintf(format, args...))
}

func readHeader(br *binReader) (header, error) {
	var h header
	br.get(&h.tag)
	if br.err != nil {
		return h, br.err
	}
	if h.tag != FormatPeriodic && h.tag != FormatFullField {
		return h, formatErrorf("unknown format tag %d", h.tag)
	}

	var counts [4]int32
	br.get(&counts)
	if br.err != nil {
		return h, br.err
	}
	nz, ny, tower, nt := counts[0], counts[1], counts[2], counts[3]
	switch {
	case nz < 2 || nz > maxGridSide || ny < 2 || ny > maxGridSide:
		return h, formatErrorf("grid %dx%d out of range", ny, nz)
	case tower != 0:
		return h, formatErrorf("%d tower points not supported", tower)
	case nt < 4 || nt > maxTimesteps:
		return h, formatErrorf("%d timesteps out of range", nt)
	case int64(nz)*int64(ny)*int64(nt) > maxSamples:
		return h, formatErrorf("%dx%dx%d samples exceed limit", nz, ny, nt)
	}
	h.nz, h.ny, h.nt = int(nz), int(ny), int(nt)

	h.dz, h.dy, h.dt = br.real(), br.real(), br.real()
	h.hubSpeed, h.hubHeight, h.bottom = br.real(), br.real(), br.real()
	for i := 0; i < numAxes; i++ {
		h.slope[i], h.icept[i] = br.real(), br.real()
	}
	var nchar int32
	br.get(&nchar)
	if br.err != nil {
		return h, br.err
	}

	for _, kv := range []struct {
		name string
		v    float64
	}{
		{"dz", h.dz}, {"dy", h.dy}, {"dt", h.dt},
		{"slope x", h.slope[AxisX]}, {"slope y", h.slope[AxisY]}, {"slope z", h.slope[AxisZ]},
	} {
		if !(kv.v > 0) || math.IsInf(kv.v, 0) {
			return h, formatErrorf("%s = %g must be positive", kv.name, kv.v)
		}
	}
	for _, v := range []float64{h.hubSpeed, h.hubHeight, h.bottom, h.icept[0], h.icept[1], h.icept[2]} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return h, formatErrorf("non-finite header value %g", v)
		}
	}
	if nchar < 0 || nchar > maxDescription {
		return h, formatErrorf("description length %d out of range", nchar)
	}
	desc := make([]byte, nchar)
	if _, err := io.ReadFull(br.r, desc); err != nil {
		return h, readErr(err)
	}
	h.description = string(desc)
	return h, nil
}

// DecodeBinary reads a field written in the binary full-field layout. The
// header precision must match the one the file was written with (float32
// unless WithPrecision is given). On any error it returns nil; a partially
// read file never yields a field.
func DecodeBinary(src io.Reader, opts ...CodecOption) (*WindField, error) {
	o := newCodecOptions(opts)
	br := &binReader{r: bufio.NewReader(src), precision: o.precision}
	h, err := readHeader(br)
	if err != nil {
		return nil, fmt.Errorf("decode header: %w", err)
	}

	// 缓冲区随实际读到的数据增长，样本全部读完后才分配速度数组
	frameLen := int64(h.nz * h.ny * numAxes * 2)
	var raw bytes.Buffer
	got, err := io.CopyN(&raw, br.r, frameLen*int64(h.nt))
	if err != nil {
		return nil, fmt.Errorf("decode timestep %d: %w", got/frameLen, readErr(err))
	}

	w := &WindField{
		grid: newGridSpacing(h.ny, h.nz, h.dy, h.dz, h.bottom),
		axis: NewTimeAxis(h.nt, h.dt*float64(h.nt-1)),
	}
	for i := range w.vel {
		if w.vel[i], err = buffer.New[int16](h.nz, h.ny, h.nt); err != nil {
			return nil, err
		}
		w.quant[i] = Quantizer{Slope: h.slope[i], Intercept: h.icept[i]}
	}

	data := raw.Bytes()
	off := 0
	for n := 0; n < h.nt; n++ {
		for z := 0; z < h.nz; z++ {
			for y := 0; y < h.ny; y++ {
				for _, a := range w.vel {
					a.Set(z, y, n, int16(binary.LittleEndian.Uint16(data[off:])))
					off += 2
				}
			}
		}
	}

	w.cfg = Config{
		GridPointsPerSide:  h.ny,
		FieldDiameter:      w.grid.Width,
		HubHeight:          h.hubHeight,
		MeanWindSpeed:      h.hubSpeed,
		Profile:            Uniform,
		SimulationDuration: w.axis.Duration,
		TimeStep:           h.dt,
		Method:             MethodDirect,
		Normalization:      HalfBinWidth,
		Description:        h.description,
	}
	w.meta = Metadata{
		MeanWindSpeed:     h.hubSpeed,
		HubHeight:         h.hubHeight,
		MeasurementHeight: h.hubHeight,
		Profile:           Uniform,
		Description:       h.description,
	}
	w.meta.Min, w.meta.Max = w.bounds()
	w.meta.TurbulenceIntensity = w.hubStats().TurbulenceIntensity
	w.valid.Store(true)
	return w, nil
}
