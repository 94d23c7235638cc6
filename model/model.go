package model

// 前后端通信消息结构
type Msg struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// 请求类型
const (
	TypeSample = "sample"
	TypeMeta   = "meta"
	TypeSlice  = "slice"
)

// 响应类型
const (
	TypeVelocity = "velocity"
	TypeError    = "error"
)

// Vector 位置或速度，x 顺风向，y 横向，z 竖直向上
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// 单点风速查询
type SampleReq struct {
	Position  Vector  `json:"position"`
	Time      float64 `json:"time"`
	Mirror    bool    `json:"mirror"`
	AutoShift bool    `json:"auto_shift"`
	ShiftTime float64 `json:"shift_time"`
}

// 横截面查询
type SliceReq struct {
	Time float64 `json:"time"`
}

// 横截面风速，按 [z][y] 排列
type SliceData struct {
	Time float64     `json:"time"`
	Y    []float64   `json:"y"`
	Z    []float64   `json:"z"`
	Vx   [][]float64 `json:"vx"`
	Vy   [][]float64 `json:"vy"`
	Vz   [][]float64 `json:"vz"`
}

// 风场描述
type MetaData struct {
	Ny                  int     `json:"ny"`
	Nz                  int     `json:"nz"`
	Nt                  int     `json:"nt"`
	Dt                  float64 `json:"dt"`
	Duration            float64 `json:"duration"`
	Width               float64 `json:"width"`
	Bottom              float64 `json:"bottom"`
	HubHeight           float64 `json:"hub_height"`
	MeanWindSpeed       float64 `json:"mean_wind_speed"`
	TurbulenceIntensity float64 `json:"turbulence_intensity"`
	Min                 Vector  `json:"min"`
	Max                 Vector  `json:"max"`
	HubMean             float64 `json:"hub_mean"`
	HubStdDev           float64 `json:"hub_std_dev"`
	Description         string  `json:"description"`
}
