package calculator

import (
	"fmt"
	"math"
	"runtime"

	"gopkg.in/ini.v1"
)

// ProfileKind selects the height law of the mean wind speed.
type ProfileKind int

const (
	Uniform ProfileKind = iota
	PowerLaw
	Logarithmic
)

var profileNames = []string{"uniform", "powerLaw", "logarithmic"}

func (p ProfileKind) String() string {
	if p < 0 || int(p) >= len(profileNames) {
		return fmt.Sprintf("ProfileKind(%d)", int(p))
	}
	return profileNames[p]
}

// SynthesisMethod selects how the sinusoid superposition is evaluated.
type SynthesisMethod string

const (
	MethodDirect SynthesisMethod = "direct"
	MethodFFT    SynthesisMethod = "fft"
)

// Normalization selects the factor applied to the diagonal spectral term.
type Normalization string

const (
	// HalfBinWidth 固定为 Δf/2
	HalfBinWidth Normalization = "halfBinWidth"
	// UnitArea 使离散 PSD 之和等于 (TI·U)²
	UnitArea Normalization = "unitArea"
)

const configSection = "windfield"

// Config 风场计算参数
type Config struct {
	GridPointsPerSide   int         // 每边网格点数 Ny = Nz
	FieldDiameter       float64     // 风场边长 D, m
	HubHeight           float64     // 轮毂高度 H, m
	MeanWindSpeed       float64     // 参考高度处平均风速, m/s
	TurbulenceIntensity float64     // 湍流强度, %
	RoughnessLength     float64     // 粗糙度 z0, m
	MeasurementHeight   float64     // 参考高度, m; 0 表示取轮毂高度
	Profile             ProfileKind // 风廓线
	ShearExponent       float64     // 幂律指数 α
	SimulationDuration  float64     // 时长 T, s
	TimeStep            float64     // 时间步长, s
	RandomSeed          uint64

	Workers       int
	Method        SynthesisMethod
	Normalization Normalization
	Description   string
}

// DefaultConfig returns a 5×5, 60 s field at 10 m/s and 10 % turbulence.
func DefaultConfig() Config {
	return Config{
		GridPointsPerSide:   5,
		FieldDiameter:       20,
		HubHeight:           50,
		MeanWindSpeed:       10,
		TurbulenceIntensity: 10,
		RoughnessLength:     0.01,
		Profile:             PowerLaw,
		ShearExponent:       0.2,
		SimulationDuration:  60,
		TimeStep:            0.05,
		RandomSeed:          42,
		Workers:             runtime.NumCPU(),
		Method:              MethodDirect,
		Normalization:       HalfBinWidth,
		Description:         "windfield periodic turbulent field",
	}
}

// LoadConfig reads the [windfield] section of an ini file and validates it.
func LoadConfig(path string) (Config, error) {
	file, err := ini.Load(path)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	cfg := ConfigFromFile(file)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ConfigFromFile maps the [windfield] section onto a Config, falling back to
// DefaultConfig for missing keys. It does not validate.
func ConfigFromFile(file *ini.File) Config {
	d := DefaultConfig()
	s := file.Section(configSection)
	return Config{
		GridPointsPerSide:   s.Key("gridPointsPerSide").MustInt(d.GridPointsPerSide),
		FieldDiameter:       s.Key("fieldDiameter").MustFloat64(d.FieldDiameter),
		HubHeight:           s.Key("hubHeight").MustFloat64(d.HubHeight),
		MeanWindSpeed:       s.Key("meanWindSpeed").MustFloat64(d.MeanWindSpeed),
		TurbulenceIntensity: s.Key("turbulenceIntensity").MustFloat64(d.TurbulenceIntensity),
		RoughnessLength:     s.Key("roughnessLength").MustFloat64(d.RoughnessLength),
		MeasurementHeight:   s.Key("measurementHeight").MustFloat64(d.MeasurementHeight),
		Profile:             parseProfile(s.Key("profileModel").In(d.Profile.String(), profileNames)),
		ShearExponent:       s.Key("shearExponent").MustFloat64(d.ShearExponent),
		SimulationDuration:  s.Key("simulationDuration").MustFloat64(d.SimulationDuration),
		TimeStep:            s.Key("timeStep").MustFloat64(d.TimeStep),
		RandomSeed:          s.Key("randomSeed").MustUint64(d.RandomSeed),
		Workers:             s.Key("workers").MustInt(d.Workers),
		Method: SynthesisMethod(s.Key("synthesisMethod").In(string(d.Method),
			[]string{string(MethodDirect), string(MethodFFT)})),
		Normalization: Normalization(s.Key("normalization").In(string(d.Normalization),
			[]string{string(HalfBinWidth), string(UnitArea)})),
		Description: s.Key("description").MustString(d.Description),
	}
}

func parseProfile(name string) ProfileKind {
	for i, n := range profileNames {
		if n == name {
			return ProfileKind(i)
		}
	}
	return PowerLaw
}

func configErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// Validate rejects configurations synthesis cannot run on.
func (c Config) Validate() error {
	finite := func(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
	for _, kv := range []struct {
		name string
		v    float64
	}{
		{"fieldDiameter", c.FieldDiameter},
		{"hubHeight", c.HubHeight},
		{"meanWindSpeed", c.MeanWindSpeed},
		{"turbulenceIntensity", c.TurbulenceIntensity},
		{"roughnessLength", c.RoughnessLength},
		{"measurementHeight", c.MeasurementHeight},
		{"shearExponent", c.ShearExponent},
		{"simulationDuration", c.SimulationDuration},
		{"timeStep", c.TimeStep},
	} {
		if !finite(kv.v) {
			return configErrorf("%s is not finite", kv.name)
		}
	}
	switch {
	case c.GridPointsPerSide < 2:
		return configErrorf("gridPointsPerSide must be >= 2, got %d", c.GridPointsPerSide)
	case c.FieldDiameter <= 0:
		return configErrorf("fieldDiameter must be > 0, got %g", c.FieldDiameter)
	case c.HubHeight <= 0:
		return configErrorf("hubHeight must be > 0, got %g", c.HubHeight)
	case c.MeanWindSpeed <= 0:
		return configErrorf("meanWindSpeed must be > 0, got %g", c.MeanWindSpeed)
	case c.TurbulenceIntensity <= 0:
		return configErrorf("turbulenceIntensity must be > 0, got %g", c.TurbulenceIntensity)
	case c.RoughnessLength <= 0:
		return configErrorf("roughnessLength must be > 0, got %g", c.RoughnessLength)
	case c.MeasurementHeight < 0:
		return configErrorf("measurementHeight must be >= 0, got %g", c.MeasurementHeight)
	case c.SimulationDuration <= 0:
		return configErrorf("simulationDuration must be > 0, got %g", c.SimulationDuration)
	case c.TimeStep <= 0:
		return configErrorf("timeStep must be > 0, got %g", c.TimeStep)
	case c.Profile < Uniform || c.Profile > Logarithmic:
		return configErrorf("unknown profile model %d", int(c.Profile))
	case c.Method != MethodDirect && c.Method != MethodFFT:
		return configErrorf("unknown synthesis method %q", c.Method)
	case c.Normalization != HalfBinWidth && c.Normalization != UnitArea:
		return configErrorf("unknown normalization %q", c.Normalization)
	}
	if nt := c.Timesteps(); nt < 4 {
		return configErrorf("simulationDuration/timeStep gives %d timesteps, need >= 4", nt)
	}
	// 所有网格点必须高于地面，否则长度尺度为 0
	if c.GridBottom() <= 0 {
		return configErrorf("grid bottom %g m is not above ground", c.GridBottom())
	}
	if c.Profile == Logarithmic &&
		(c.GridBottom() <= c.RoughnessLength || c.ReferenceHeight() <= c.RoughnessLength) {
		return configErrorf("logarithmic profile needs all heights above roughnessLength %g", c.RoughnessLength)
	}
	return nil
}

// Timesteps is Nt: samples over [0, T] inclusive.
func (c Config) Timesteps() int {
	return int(math.Round(c.SimulationDuration/c.TimeStep)) + 1
}

// EffectiveTimeStep is T/(Nt-1), the step the time axis actually uses.
func (c Config) EffectiveTimeStep() float64 {
	return c.SimulationDuration / float64(c.Timesteps()-1)
}

// FrequencyBins is M = floor(Nt/2).
func (c Config) FrequencyBins() int {
	return c.Timesteps() / 2
}

// GridSpacing is Δy = Δz = D/(N-1).
func (c Config) GridSpacing() float64 {
	return c.FieldDiameter / float64(c.GridPointsPerSide-1)
}

// GridBottom 网格底部高度
func (c Config) GridBottom() float64 {
	return c.HubHeight - c.FieldDiameter/2
}

// ReferenceHeight is the height MeanWindSpeed refers to.
func (c Config) ReferenceHeight() float64 {
	if c.MeasurementHeight > 0 {
		return c.MeasurementHeight
	}
	return c.HubHeight
}
