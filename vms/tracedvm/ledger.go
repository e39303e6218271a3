// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package tracedvm wraps the dependencies of a VM with OpenTelemetry spans.
package tracedvm

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/luxfi/ids"
	"github.com/luxfi/trace"

	"github.com/luxfi/rollupvm/vms/rollupvm/ledger"

	oteltrace "go.opentelemetry.io/otel/trace"
)

var _ ledger.Ledger = (*tracedLedger)(nil)

type tracedLedger struct {
	ledger ledger.Ledger
	tracer trace.Tracer
}

// NewLedger returns l with every payment recorded as a span of tracer.
func NewLedger(l ledger.Ledger, tracer trace.Tracer) ledger.Ledger {
	return &tracedLedger{
		ledger: l,
		tracer: tracer,
	}
}

func (l *tracedLedger) Receive(ctx context.Context, from ids.ShortID, amount uint64) error {
	ctx, span := l.tracer.Start(ctx, "tracedLedger.Receive", oteltrace.WithAttributes(
		attribute.Stringer("from", from),
		attribute.Int64("amount", clampInt64(amount)),
	))
	defer span.End()

	return recordErr(span, l.ledger.Receive(ctx, from, amount))
}

func (l *tracedLedger) Transfer(ctx context.Context, to ids.ShortID, amount uint64) error {
	ctx, span := l.tracer.Start(ctx, "tracedLedger.Transfer", oteltrace.WithAttributes(
		attribute.Stringer("to", to),
		attribute.Int64("amount", clampInt64(amount)),
	))
	defer span.End()

	return recordErr(span, l.ledger.Transfer(ctx, to, amount))
}

// WrapTracer adapts an OpenTelemetry tracer whose provider is owned
// elsewhere. Closing the result is a no-op.
func WrapTracer(tracer oteltrace.Tracer) trace.Tracer {
	return borrowedTracer{Tracer: tracer}
}

type borrowedTracer struct {
	oteltrace.Tracer
}

func (borrowedTracer) Close() error {
	return nil
}

func recordErr(span oteltrace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// Span attributes have no unsigned integer kind.
func clampInt64(v uint64) int64 {
	return int64(min(v, 1<<63-1))
}
