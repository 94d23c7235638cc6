package server

import (
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"windfield/calculator"
	"windfield/model"
)

// Hub serves the queries of one websocket connection against a shared,
// read-only wind field. Requests are handled in order; a single goroutine
// owns writes to the connection.
type Hub struct {
	field *calculator.WindField
	conn  *websocket.Conn
	// request
	msg chan model.Msg
	// response
	reply chan model.Msg
	done  chan struct{}
}

func NewHub(field *calculator.WindField, conn *websocket.Conn) *Hub {
	return &Hub{
		field: field,
		conn:  conn,
		msg:   make(chan model.Msg, 10),
		reply: make(chan model.Msg, 10),
		done:  make(chan struct{}),
	}
}

func (h *Hub) handleResponse() {
	for {
		select {
		case reply := <-h.reply:
			if err := h.conn.WriteJSON(&reply); err != nil {
				log.WithError(err).Warn("write reply")
			}
		case <-h.done:
			return
		}
	}
}

func (h *Hub) handleRequest() {
	for {
		select {
		case msg := <-h.msg:
			reply := h.dispatch(msg)
			select {
			case h.reply <- reply:
			case <-h.done:
				return
			}
		case <-h.done:
			return
		}
	}
}

// dispatch 根据请求类型构建响应
func (h *Hub) dispatch(msg model.Msg) model.Msg {
	var (
		content interface{}
		typ     = msg.Type
		err     error
	)
	switch msg.Type {
	case model.TypeSample:
		var req model.SampleReq
		if err = json.Unmarshal([]byte(msg.Content), &req); err == nil {
			content, err = h.sample(req)
			typ = model.TypeVelocity
		}
	case model.TypeMeta:
		content, err = h.meta()
	case model.TypeSlice:
		var req model.SliceReq
		if err = json.Unmarshal([]byte(msg.Content), &req); err == nil {
			content, err = h.slice(req)
		}
	default:
		err = fmt.Errorf("no such type %q", msg.Type)
	}
	if err != nil {
		return model.Msg{Type: model.TypeError, Content: err.Error()}
	}
	data, err := json.Marshal(content)
	if err != nil {
		return model.Msg{Type: model.TypeError, Content: err.Error()}
	}
	return model.Msg{Type: typ, Content: string(data)}
}

func (h *Hub) sample(req model.SampleReq) (model.Vector, error) {
	if !h.field.Valid() {
		return model.Vector{}, calculator.ErrNotCalculated
	}
	pos := calculator.Vec3{X: req.Position.X, Y: req.Position.Y, Z: req.Position.Z}
	v := h.field.Sample(pos, req.Time, req.Mirror, req.AutoShift, req.ShiftTime)
	return toVector(v), nil
}

func (h *Hub) meta() (model.MetaData, error) {
	if !h.field.Valid() {
		return model.MetaData{}, calculator.ErrNotCalculated
	}
	g := h.field.Grid()
	axis := h.field.TimeAxis()
	meta := h.field.Metadata()
	stats := h.field.Stats()
	return model.MetaData{
		Ny:                  g.Ny,
		Nz:                  g.Nz,
		Nt:                  axis.Nt,
		Dt:                  axis.Dt,
		Duration:            axis.Duration,
		Width:               g.Width,
		Bottom:              g.Bottom,
		HubHeight:           meta.HubHeight,
		MeanWindSpeed:       meta.MeanWindSpeed,
		TurbulenceIntensity: meta.TurbulenceIntensity,
		Min:                 toVector(meta.Min),
		Max:                 toVector(meta.Max),
		HubMean:             stats.Mean,
		HubStdDev:           stats.StdDev,
		Description:         meta.Description,
	}, nil
}

func (h *Hub) slice(req model.SliceReq) (model.SliceData, error) {
	nodes, err := h.field.Slice(req.Time)
	if err != nil {
		return model.SliceData{}, err
	}
	g := h.field.Grid()
	data := model.SliceData{
		Time: req.Time,
		Y:    g.Y,
		Z:    g.Z,
		Vx:   make([][]float64, len(nodes)),
		Vy:   make([][]float64, len(nodes)),
		Vz:   make([][]float64, len(nodes)),
	}
	for z, row := range nodes {
		data.Vx[z] = make([]float64, len(row))
		data.Vy[z] = make([]float64, len(row))
		data.Vz[z] = make([]float64, len(row))
		for y, v := range row {
			data.Vx[z][y], data.Vy[z][y], data.Vz[z][y] = v.X, v.Y, v.Z
		}
	}
	return data, nil
}

func toVector(v calculator.Vec3) model.Vector {
	return model.Vector{X: v.X, Y: v.Y, Z: v.Z}
}
