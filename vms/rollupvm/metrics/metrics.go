// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metrics

import (
	"github.com/luxfi/metric"

	"github.com/luxfi/rollupvm/utils/wrappers"
)

const (
	ResultApplied  = "applied"
	ResultRejected = "rejected"
)

var _ Metrics = (*metrics)(nil)

type Metrics interface {
	MarkDeposit(amount uint64)
	MarkWithdrawal(amount uint64)
	MarkSettlementAdded()
	MarkSettlementVetoed()
	// MarkExecution records the outcome of an execution pass and the queue
	// length it left behind.
	MarkExecution(applied, rejected int, remaining uint64)
	MarkFailure(op string)
	SetQueueLength(length uint64)
}

type metrics struct {
	deposits            metric.Counter
	depositedAmount     metric.Counter
	withdrawals         metric.Counter
	withdrawnAmount     metric.Counter
	settlementsAdded    metric.Counter
	settlementsVetoed   metric.Counter
	settlementsExecuted metric.CounterVec
	failures            metric.CounterVec
	queueLength         metric.Gauge
}

func New(namespace string, registerer metric.Registerer) (Metrics, error) {
	m := &metrics{
		deposits: metric.NewCounter(metric.CounterOpts{
			Namespace: namespace,
			Name:      "deposits",
			Help:      "Number of successful deposits",
		}),
		depositedAmount: metric.NewCounter(metric.CounterOpts{
			Namespace: namespace,
			Name:      "deposited_amount",
			Help:      "Total amount deposited",
		}),
		withdrawals: metric.NewCounter(metric.CounterOpts{
			Namespace: namespace,
			Name:      "withdrawals",
			Help:      "Number of successful withdrawals",
		}),
		withdrawnAmount: metric.NewCounter(metric.CounterOpts{
			Namespace: namespace,
			Name:      "withdrawn_amount",
			Help:      "Total amount paid out",
		}),
		settlementsAdded: metric.NewCounter(metric.CounterOpts{
			Namespace: namespace,
			Name:      "settlements_added",
			Help:      "Number of settlements queued by the validator",
		}),
		settlementsVetoed: metric.NewCounter(metric.CounterOpts{
			Namespace: namespace,
			Name:      "settlements_vetoed",
			Help:      "Number of settlements removed by the judge",
		}),
		settlementsExecuted: metric.NewCounterVec(
			metric.CounterOpts{
				Namespace: namespace,
				Name:      "settlements_executed",
				Help:      "Number of final settlements pruned from the queue",
			},
			[]string{"result"},
		),
		failures: metric.NewCounterVec(
			metric.CounterOpts{
				Namespace: namespace,
				Name:      "operation_failures",
				Help:      "Number of rejected operations",
			},
			[]string{"op"},
		),
		queueLength: metric.NewGauge(metric.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_length",
			Help:      "Number of queued settlements",
		}),
	}

	errs := wrappers.Errs{}
	errs.Add(
		registerer.Register(m.deposits),
		registerer.Register(m.depositedAmount),
		registerer.Register(m.withdrawals),
		registerer.Register(m.withdrawnAmount),
		registerer.Register(m.settlementsAdded),
		registerer.Register(m.settlementsVetoed),
		registerer.Register(m.settlementsExecuted),
		registerer.Register(m.failures),
		registerer.Register(m.queueLength),
	)
	return m, errs.Err
}

func (m *metrics) MarkDeposit(amount uint64) {
	m.deposits.Inc()
	m.depositedAmount.Add(float64(amount))
}

func (m *metrics) MarkWithdrawal(amount uint64) {
	m.withdrawals.Inc()
	m.withdrawnAmount.Add(float64(amount))
}

func (m *metrics) MarkSettlementAdded() {
	m.settlementsAdded.Inc()
	m.queueLength.Inc()
}

func (m *metrics) MarkSettlementVetoed() {
	m.settlementsVetoed.Inc()
	m.queueLength.Dec()
}

func (m *metrics) MarkExecution(applied, rejected int, remaining uint64) {
	m.settlementsExecuted.WithLabelValues(ResultApplied).Add(float64(applied))
	m.settlementsExecuted.WithLabelValues(ResultRejected).Add(float64(rejected))
	m.queueLength.Set(float64(remaining))
}

func (m *metrics) MarkFailure(op string) {
	m.failures.WithLabelValues(op).Inc()
}

func (m *metrics) SetQueueLength(length uint64) {
	m.queueLength.Set(float64(length))
}
