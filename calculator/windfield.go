package calculator

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"windfield/buffer"
)

// 速度分量
const (
	AxisX = iota // 顺风向
	AxisY        // 横向
	AxisZ        // 竖向
	numAxes
)

// Vec3 is a velocity or a position; X is downwind, Y lateral, Z up.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vec3) axis(i int) float64 {
	switch i {
	case AxisX:
		return v.X
	case AxisY:
		return v.Y
	default:
		return v.Z
	}
}

func (v *Vec3) setAxis(i int, f float64) {
	switch i {
	case AxisX:
		v.X = f
	case AxisY:
		v.Y = f
	default:
		v.Z = f
	}
}

// Metadata describes how a field was produced and the range it covers.
type Metadata struct {
	MeanWindSpeed       float64     `json:"mean_wind_speed"` // 轮毂高度处
	TurbulenceIntensity float64     `json:"turbulence_intensity"`
	RoughnessLength     float64     `json:"roughness_length"`
	ShearExponent       float64     `json:"shear_exponent"`
	MeasurementHeight   float64     `json:"measurement_height"`
	Profile             ProfileKind `json:"profile"`
	RandomSeed          uint64      `json:"random_seed"`
	HubHeight           float64     `json:"hub_height"`
	Min                 Vec3        `json:"min"`
	Max                 Vec3        `json:"max"`
	Description         string      `json:"description"`
}

// WindField is a quantized, time-resolved turbulent velocity field on a
// vertical cross-section. It is filled once by CalculateField or by decoding a
// file; after Valid reports true it is read-only and safe for concurrent use.
type WindField struct {
	cfg  Config
	grid Grid
	axis TimeAxis

	meta  Metadata
	quant [numAxes]Quantizer
	vel   [numAxes]*buffer.Array[int16]

	mu    sync.Mutex // 串行化 CalculateField
	valid atomic.Bool
}

// NewWindField validates cfg and lays out the grid and time axis. The field
// holds no samples until CalculateField succeeds.
func NewWindField(cfg Config) (*WindField, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	n := cfg.GridPointsPerSide
	return &WindField{
		cfg:  cfg,
		grid: NewGrid(n, n, cfg.FieldDiameter, cfg.GridBottom()),
		axis: NewTimeAxis(cfg.Timesteps(), cfg.SimulationDuration),
	}, nil
}

// Valid reports whether the field holds a complete set of samples.
func (w *WindField) Valid() bool {
	return w.valid.Load()
}

func (w *WindField) Config() Config     { return w.cfg }
func (w *WindField) Grid() Grid         { return w.grid }
func (w *WindField) TimeAxis() TimeAxis { return w.axis }
func (w *WindField) Metadata() Metadata { return w.meta }

// Quantizer returns the affine coefficients of one velocity axis.
func (w *WindField) Quantizer(axis int) Quantizer {
	return w.quant[axis]
}

// CalculateField synthesizes the field. It runs at most once: a valid field
// returns nil immediately. On error or cancellation nothing is published and
// Valid stays false.
func (w *WindField) CalculateField(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.Valid() {
		return nil
	}

	start := time.Now()
	e := newExecutor(w.cfg.Workers)
	spectrum := NewSpectrum(w.cfg)
	log.WithFields(log.Fields{
		"points":  w.grid.Points(),
		"bins":    w.cfg.FrequencyBins(),
		"steps":   w.axis.Nt,
		"workers": e.workers,
		"seed":    w.cfg.RandomSeed,
	}).Info("开始计算风场")

	state, err := correlate(ctx, e, spectrum, w.grid, w.cfg.SimulationDuration, w.cfg.FrequencyBins(), w.cfg.RandomSeed)
	if err != nil {
		return w.abort("correlation", err)
	}
	log.WithField("elapsed", time.Since(start)).Debug("spectral correlation done")

	vx, min, max, err := synthesizeSeries(ctx, e, state, spectrum.Profile, w.grid, w.axis, w.cfg.Method)
	if err != nil {
		return w.abort("time series", err)
	}
	log.WithFields(log.Fields{
		"elapsed": time.Since(start),
		"min":     min,
		"max":     max,
	}).Debug("time series done")

	quant := [numAxes]Quantizer{
		NewQuantizer(min, max),
		NewQuantizer(0, 0),
		NewQuantizer(0, 0),
	}
	var vel [numAxes]*buffer.Array[int16]
	for i := range vel {
		if vel[i], err = buffer.New[int16](w.grid.Nz, w.grid.Ny, w.axis.Nt); err != nil {
			return w.abort("quantize", err)
		}
	}
	// 横向与竖向分量为 0，直接编码 0
	for i := AxisY; i < numAxes; i++ {
		zero := quant[i].Encode(0)
		vel[i].Traverse(func(_, _ int, row []int16) {
			for k := range row {
				row[k] = zero
			}
		})
	}
	err = e.run(ctx, w.grid.Points(), func(j int) error {
		quant[AxisX].encodeRow(vel[AxisX].RowAt(j), vx.RowAt(j))
		return nil
	})
	if err != nil {
		return w.abort("quantize", err)
	}

	w.quant = quant
	w.vel = vel
	w.meta = Metadata{
		MeanWindSpeed:       spectrum.HubSpeed,
		TurbulenceIntensity: w.cfg.TurbulenceIntensity,
		RoughnessLength:     w.cfg.RoughnessLength,
		ShearExponent:       w.cfg.ShearExponent,
		MeasurementHeight:   w.cfg.ReferenceHeight(),
		Profile:             w.cfg.Profile,
		RandomSeed:          w.cfg.RandomSeed,
		HubHeight:           w.cfg.HubHeight,
		Description:         w.cfg.Description,
	}
	w.meta.Min, w.meta.Max = w.bounds()
	stats := w.hubStats()
	w.valid.Store(true)

	log.WithFields(log.Fields{
		"elapsed":  time.Since(start),
		"hubMean":  stats.Mean,
		"hubStd":   stats.StdDev,
		"hubTI(%)": stats.TurbulenceIntensity,
	}).Info("风场计算完成")
	return nil
}

func (w *WindField) abort(stage string, err error) error {
	log.WithFields(log.Fields{
		"stage": stage,
		"err":   err,
	}).Warn("风场计算中止")
	return fmt.Errorf("calculate field: %s: %w", stage, err)
}

func (w *WindField) bounds() (Vec3, Vec3) {
	var min, max Vec3
	for i, q := range w.quant {
		lo, hi := q.Bounds()
		min.setAxis(i, lo)
		max.setAxis(i, hi)
	}
	return min, max
}

// Velocity returns the dequantized sample at node (z, y, n). An invalid field
// or a node outside the grid gives the zero vector.
func (w *WindField) Velocity(z, y, n int) Vec3 {
	var v Vec3
	if !w.Valid() || !w.inRange(z, y, n) {
		return v
	}
	for i, a := range w.vel {
		v.setAxis(i, w.quant[i].Decode(a.Get(z, y, n)))
	}
	return v
}

// Series returns the dequantized time series of one axis at node (z, y).
func (w *WindField) Series(axis, z, y int) ([]float64, error) {
	if !w.Valid() {
		return nil, ErrNotCalculated
	}
	if axis < AxisX || axis >= numAxes || !w.inRange(z, y, 0) {
		return nil, fmt.Errorf("series (%d, %d, %d) out of range", axis, z, y)
	}
	return w.series(axis, z, y), nil
}

func (w *WindField) inRange(z, y, n int) bool {
	return z >= 0 && z < w.grid.Nz && y >= 0 && y < w.grid.Ny && n >= 0 && n < w.axis.Nt
}

func (w *WindField) series(axis, z, y int) []float64 {
	row := w.vel[axis].Row(z, y)
	out := make([]float64, len(row))
	for n, s := range row {
		out[n] = w.quant[axis].Decode(s)
	}
	return out
}

// HubNode is the grid node closest to hub height on the centre line.
func (w *WindField) HubNode() (z, y int) {
	return nearest(w.grid.Z, w.meta.HubHeight), nearest(w.grid.Y, 0)
}

// Stats summarizes the longitudinal series at the hub node.
type Stats struct {
	Mean                float64 `json:"mean"`
	StdDev              float64 `json:"std_dev"`
	TurbulenceIntensity float64 `json:"turbulence_intensity"` // %
}

// Stats returns the hub-node statistics, or zero for an invalid field.
func (w *WindField) Stats() Stats {
	if !w.Valid() {
		return Stats{}
	}
	return w.hubStats()
}

func (w *WindField) hubStats() Stats {
	z, y := w.HubNode()
	mean, std := stat.MeanStdDev(w.series(AxisX, z, y), nil)
	s := Stats{Mean: mean, StdDev: std}
	if mean != 0 {
		s.TurbulenceIntensity = 100 * std / mean
	}
	return s
}

// Slice returns the velocity on every node of the cross-section at time t,
// indexed [z][y]. Time wraps like Sample without mirroring.
func (w *WindField) Slice(t float64) ([][]Vec3, error) {
	if !w.Valid() {
		return nil, ErrNotCalculated
	}
	out := make([][]Vec3, w.grid.Nz)
	for z := range out {
		out[z] = make([]Vec3, w.grid.Ny)
		for y := range out[z] {
			pos := Vec3{Y: w.grid.Y[y], Z: w.grid.Z[z]}
			out[z][y] = w.Sample(pos, t, false, false, 0)
		}
	}
	return out, nil
}
