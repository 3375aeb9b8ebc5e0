package vm

import (
	"encoding/gob"
	"io"
)

type Encoder[T any] interface {
	Encode(T) error
}

type Decoder[T any] interface {
	Decode(T) error
}

type GobProgramEncoder struct {
	w io.Writer
}

func NewGobProgramEncoder(w io.Writer) *GobProgramEncoder {
	return &GobProgramEncoder{
		w: w,
	}
}

func (e GobProgramEncoder) Encode(p Program) error {
	return gob.NewEncoder(e.w).Encode(p)
}

type GobProgramDecoder struct {
	r io.Reader
}

func NewGobProgramDecoder(r io.Reader) *GobProgramDecoder {
	return &GobProgramDecoder{
		r: r,
	}
}

func (d GobProgramDecoder) Decode(p *Program) error {
	return gob.NewDecoder(d.r).Decode(p)
}

func (p Program) Encode(encoder Encoder[Program]) error {
	return encoder.Encode(p)
}

func (p *Program) Decode(decoder Decoder[*Program]) error {
	return decoder.Decode(p)
}
