// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package hcl

import (
	"os"
	"reflect"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

type Parser struct {
	parser  *hclparse.Parser
	decoder *gohcl.Decoder
}

// NewParser returns a new Parser instance which supports decoding
// time.Duration and byte size (uint64) parameters by default.
func NewParser() *Parser {

	// Create our base decoder, so we can register custom decoders on it.
	decoder := &gohcl.Decoder{}

	dur := time.Duration(0)
	decoder.RegisterExpressionDecoder(reflect.TypeOf(dur), DecodeDuration)
	decoder.RegisterExpressionDecoder(reflect.TypeOf(&dur), DecodeDuration)

	size := uint64(0)
	decoder.RegisterExpressionDecoder(reflect.TypeOf(size), DecodeByteSize)
	decoder.RegisterExpressionDecoder(reflect.TypeOf(&size), DecodeByteSize)

	return &Parser{
		decoder: decoder,
		parser:  hclparse.NewParser(),
	}
}

// AddExpressionDecoder registers an additional decoder for the given type,
// replacing any decoder already registered for it.
func (p *Parser) AddExpressionDecoder(typ reflect.Type, fn func(hcl.Expression, *hcl.EvalContext, any) hcl.Diagnostics) {
	p.decoder.RegisterExpressionDecoder(typ, fn)
}

func (p *Parser) Parse(src []byte, dst any, filename string) hcl.Diagnostics {

	hclFile, parseDiag := p.parser.ParseHCL(src, filename)

	if parseDiag.HasErrors() {
		return parseDiag
	}

	decodeDiag := p.decoder.DecodeBody(hclFile.Body, nil, dst)
	return decodeDiag
}

// ParseFile reads the file at path and decodes it into dst.
func (p *Parser) ParseFile(path string, dst any) hcl.Diagnostics {
	src, err := os.ReadFile(path)
	if err != nil {
		return hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Failed to read file",
			Detail:   err.Error(),
		}}
	}
	return p.Parse(src, dst, path)
}
