// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package hcl

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// DecodeDuration is the decode function for time.Duration types. It supports
// both string and numeric values. String values are parsed using
// time.ParseDuration. Numeric values are expected to be in nanoseconds.
func DecodeDuration(expr hcl.Expression, ctx *hcl.EvalContext, val any) hcl.Diagnostics {
	srcVal, diags := expr.Value(ctx)

	if srcVal.Type() == cty.String {
		dur, err := time.ParseDuration(srcVal.AsString())
		if err != nil {
			diags = append(diags, unsuitable(expr, fmt.Sprintf("Unsuitable duration value: %s", err.Error())))
			return diags
		}

		srcVal = cty.NumberIntVal(int64(dur))
	}

	return decodeNumber(expr, srcVal, val, diags)
}

// DecodeByteSize is the decode function for byte sizes held in uint64
// fields. String values such as "2MiB" or "4 KB" are parsed with
// go-humanize; numeric values are taken as a count of bytes.
func DecodeByteSize(expr hcl.Expression, ctx *hcl.EvalContext, val any) hcl.Diagnostics {
	srcVal, diags := expr.Value(ctx)

	if srcVal.Type() == cty.String {
		size, err := humanize.ParseBytes(srcVal.AsString())
		if err != nil {
			diags = append(diags, unsuitable(expr, fmt.Sprintf("Unsuitable byte size value: %s", err.Error())))
			return diags
		}

		srcVal = cty.NumberUIntVal(size)
	}

	return decodeNumber(expr, srcVal, val, diags)
}

func decodeNumber(expr hcl.Expression, srcVal cty.Value, val any, diags hcl.Diagnostics) hcl.Diagnostics {
	if srcVal.Type() != cty.Number {
		diags = append(diags, unsuitable(expr,
			fmt.Sprintf("Unsuitable value: expected a string but found %s", srcVal.Type().FriendlyName())))
		return diags
	}

	if err := gocty.FromCtyValue(srcVal, val); err != nil {
		diags = append(diags, unsuitable(expr, fmt.Sprintf("Unsuitable value: %s", err.Error())))
	}

	return diags
}

func unsuitable(expr hcl.Expression, detail string) *hcl.Diagnostic {
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  "Unsuitable value type",
		Detail:   detail,
		Subject:  expr.StartRange().Ptr(),
		Context:  expr.Range().Ptr(),
	}
}
