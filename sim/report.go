// sim/report.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/sauna-sim/sauna-api-sub001/log"
	"github.com/sauna-sim/sauna-api-sub001/nav"

	"github.com/vmihailenco/msgpack/v5"
)

// PositionReport is the periodic state update sent for each aircraft.
type PositionReport struct {
	Callsign string            `msgpack:"cs"`
	Sequence uint64            `msgpack:"seq"`
	State    nav.PositionState `msgpack:"state"`
	Lateral  string            `msgpack:"lat_mode"`
	Vertical string            `msgpack:"vert_mode"`
	LNAV     bool              `msgpack:"lnav"`
}

func (r PositionReport) Marshal() ([]byte, error) {
	return msgpack.Marshal(r)
}

func UnmarshalPositionReport(b []byte) (PositionReport, error) {
	var r PositionReport
	err := msgpack.NewDecoder(bytes.NewReader(b)).Decode(&r)
	return r, err
}

func (r PositionReport) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("callsign", r.Callsign),
		slog.Uint64("seq", r.Sequence),
		slog.String("location", r.State.Location.DDString()),
		slog.Float64("altitude", float64(r.State.IndicatedAltitude)),
		slog.Float64("heading", float64(r.State.MagneticHeading)),
		slog.Float64("gs", float64(r.State.GS)),
		slog.String("lateral", r.Lateral),
		slog.String("vertical", r.Vertical))
}

// Transmitter delivers position reports to the network. Returning an
// error that wraps ErrDisconnected stops the aircraft.
type Transmitter interface {
	Transmit(ctx context.Context, r PositionReport) error
}

// LogTransmitter logs the reports instead of sending them anywhere.
type LogTransmitter struct {
	Logger *log.Logger
}

func (t LogTransmitter) Transmit(ctx context.Context, r PositionReport) error {
	b, err := r.Marshal()
	if err != nil {
		return err
	}
	t.Logger.Info("position report", slog.Any("report", r), slog.Int("bytes", len(b)))
	return nil
}

// StreamTransmitter writes the reports to w as a stream of msgpack
// values.
type StreamTransmitter struct {
	mu  sync.Mutex
	enc *msgpack.Encoder
}

func NewStreamTransmitter(w io.Writer) *StreamTransmitter {
	return &StreamTransmitter{enc: msgpack.NewEncoder(w)}
}

func (t *StreamTransmitter) Transmit(ctx context.Context, r PositionReport) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enc.Encode(r)
}

// ReadPositionReports decodes a stream written by a StreamTransmitter.
func ReadPositionReports(r io.Reader) ([]PositionReport, error) {
	dec := msgpack.NewDecoder(r)
	var reports []PositionReport
	for {
		var pr PositionReport
		if err := dec.Decode(&pr); errors.Is(err, io.EOF) {
			return reports, nil
		} else if err != nil {
			return reports, err
		}
		reports = append(reports, pr)
	}
}
