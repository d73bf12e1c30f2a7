/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package logger

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

// Mirrors zapcore's memory array encoder, which is not exported.
type sliceArrayEncoder struct {
	elems []interface{}
}

var arrayEncoders = sync.Pool{
	New: func() any {
		return &sliceArrayEncoder{}
	},
}

func (s *sliceArrayEncoder) AppendArray(v zapcore.ArrayMarshaler) error {
	enc := &sliceArrayEncoder{}
	err := v.MarshalLogArray(enc)
	s.elems = append(s.elems, enc.elems)
	return err
}

func (s *sliceArrayEncoder) AppendObject(v zapcore.ObjectMarshaler) error {
	m := zapcore.NewMapObjectEncoder()
	err := v.MarshalLogObject(m)
	s.elems = append(s.elems, m.Fields)
	return err
}

func (s *sliceArrayEncoder) AppendReflected(v interface{}) error {
	s.elems = append(s.elems, v)
	return nil
}

func (s *sliceArrayEncoder) AppendBool(v bool)              { s.elems = append(s.elems, v) }
func (s *sliceArrayEncoder) AppendByteString(v []byte)      { s.elems = append(s.elems, string(v)) }
func (s *sliceArrayEncoder) AppendComplex128(v complex128)  { s.elems = append(s.elems, v) }
func (s *sliceArrayEncoder) AppendComplex64(v complex64)    { s.elems = append(s.elems, v) }
func (s *sliceArrayEncoder) AppendDuration(v time.Duration) { s.elems = append(s.elems, v) }
func (s *sliceArrayEncoder) AppendFloat64(v float64)        { s.elems = append(s.elems, v) }
func (s *sliceArrayEncoder) AppendFloat32(v float32)        { s.elems = append(s.elems, v) }
func (s *sliceArrayEncoder) AppendInt(v int)                { s.elems = append(s.elems, v) }
func (s *sliceArrayEncoder) AppendInt64(v int64)            { s.elems = append(s.elems, v) }
func (s *sliceArrayEncoder) AppendInt32(v int32)            { s.elems = append(s.elems, v) }
func (s *sliceArrayEncoder) AppendInt16(v int16)            { s.elems = append(s.elems, v) }
func (s *sliceArrayEncoder) AppendInt8(v int8)              { s.elems = append(s.elems, v) }
func (s *sliceArrayEncoder) AppendString(v string)          { s.elems = append(s.elems, v) }
func (s *sliceArrayEncoder) AppendTime(v time.Time)         { s.elems = append(s.elems, v) }
func (s *sliceArrayEncoder) AppendUint(v uint)              { s.elems = append(s.elems, v) }
func (s *sliceArrayEncoder) AppendUint64(v uint64)          { s.elems = append(s.elems, v) }
func (s *sliceArrayEncoder) AppendUint32(v uint32)          { s.elems = append(s.elems, v) }
func (s *sliceArrayEncoder) AppendUint16(v uint16)          { s.elems = append(s.elems, v) }
func (s *sliceArrayEncoder) AppendUint8(v uint8)            { s.elems = append(s.elems, v) }
func (s *sliceArrayEncoder) AppendUintptr(v uintptr)        { s.elems = append(s.elems, v) }

func singleLetterLevelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	single := "U"

	switch l {
	case zapcore.DebugLevel:
		single = "D"
	case zapcore.InfoLevel:
		single = "I"
	case zapcore.WarnLevel:
		single = "W"
	case zapcore.ErrorLevel:
		single = "E"
	case zapcore.DPanicLevel, zapcore.PanicLevel:
		single = "P"
	case zapcore.FatalLevel:
		single = "F"
	}

	enc.AppendString(single)
}

// A zap encoder that writes
// <date> <caller:line> <level>] <message> key=value...
type egsEncoder struct {
	*zapcore.MapObjectEncoder

	config zapcore.EncoderConfig
	pool   buffer.Pool
}

func NewEgsEncoder(cfg zapcore.EncoderConfig) (zapcore.Encoder, error) {
	if cfg.LineEnding == "" {
		cfg.LineEnding = zapcore.DefaultLineEnding
	}

	return &egsEncoder{
		MapObjectEncoder: zapcore.NewMapObjectEncoder(),
		config:           cfg,
		pool:             buffer.NewPool(),
	}, nil
}

func (c *egsEncoder) Clone() zapcore.Encoder {
	clone := &egsEncoder{
		MapObjectEncoder: zapcore.NewMapObjectEncoder(),
		config:           c.config,
		pool:             c.pool,
	}

	for key, value := range c.Fields {
		clone.Fields[key] = value
	}

	return clone
}

func (c *egsEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	line := c.pool.Get()

	arr := arrayEncoders.Get().(*sliceArrayEncoder)
	defer func() {
		arr.elems = arr.elems[:0]
		arrayEncoders.Put(arr)
	}()

	if c.config.EncodeTime != nil {
		c.config.EncodeTime(ent.Time, arr)
	} else {
		arr.AppendString(ent.Time.Format(time.RFC3339))
	}

	if ent.Caller.Defined && c.config.EncodeCaller != nil {
		c.config.EncodeCaller(ent.Caller, arr)
	}

	singleLetterLevelEncoder(ent.Level, arr)

	for i := range arr.elems {
		if i > 0 {
			line.AppendByte(' ')
		}
		fmt.Fprint(line, arr.elems[i])
	}

	line.AppendByte(']')
	line.AppendByte(' ')
	line.AppendString(ent.Message)

	merged := zapcore.NewMapObjectEncoder()
	for key, value := range c.Fields {
		merged.Fields[key] = value
	}
	for _, field := range fields {
		field.AddTo(merged)
	}

	keys := make([]string, 0, len(merged.Fields))
	for key := range merged.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		fmt.Fprintf(line, " %s=%v", key, merged.Fields[key])
	}

	if ent.Stack != "" {
		line.AppendString(c.config.LineEnding)
		line.AppendString(ent.Stack)
	}

	line.AppendString(c.config.LineEnding)
	return line, nil
}
