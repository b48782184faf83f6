package manager

import (
	"context"
	"time"

	"github.com/pod-control/pcm/internal/conversation"
	"github.com/pod-control/pcm/internal/message"
	"github.com/pod-control/pcm/internal/pod"
	"github.com/pod-control/pcm/internal/podfault"
)

// InjectAndStart installs the basal schedule (only if not already set),
// configures the cannula-insertion alert slots, inserts the cannula, and
// polls status until priming completes, leaving the pod Running.
func (m *Manager) InjectAndStart(ctx context.Context, conv *conversation.Conversation, schedule [48]float64, utcOffsetMinutes int) {
	m.runOp(conv, "InjectAndStart", func() error {
		if _, ok := m.performExchange(ctx, conv, m.statusRequest(), m.GetStandardParameters(), nil); !ok {
			return m.lastExchangeErr(conv)
		}

		status := m.pod.LastStatus
		if status == nil {
			return podfault.RadioRecvTimeout("no status returned")
		}
		if status.Progress >= pod.Running {
			return podfault.PodStateInvalidForCommand("pod has already started")
		}
		if status.Progress < pod.ReadyForInjection {
			return podfault.PodStateInvalidForCommand("pod is not ready for injection")
		}

		if status.Progress == pod.ReadyForInjection {
			if err := assertBasalScheduleValid(schedule[:]); err != nil {
				return err
			}
			if err := m.exchangeBasalSchedule(ctx, conv, schedule, utcOffsetMinutes, true); err != nil {
				return err
			}
			status = m.pod.LastStatus
			if status == nil || status.Progress != pod.BasalScheduleSet {
				return podfault.PodResponseUnexpected("expected BasalScheduleSet after basal_schedule")
			}
		}

		if err := m.exchangeCannulaInsertionAlerts(ctx, conv); err != nil {
			return err
		}
		if err := m.exchangeInsertCannula(ctx, conv); err != nil {
			return err
		}

		status = m.pod.LastStatus
		if status == nil || status.Progress != pod.Priming {
			return podfault.PodResponseUnexpected("expected Priming after insert_cannula")
		}
		insertionDate := time.Now().UTC()
		m.pod.InsertionDate = &insertionDate

		for {
			status = m.pod.LastStatus
			if status == nil || status.Progress != pod.Priming {
				break
			}
			wait := computeWaitMs(status.NotDeliveredInsulin, m.primeWaitBaseMs, m.primeWaitPerUnitMs)
			if !m.sleepOrCancel(conv, time.Duration(wait)*time.Millisecond) {
				conv.MarkCanceled()
				return nil
			}
			if _, ok := m.performExchange(ctx, conv, m.statusRequest(), m.GetStandardParameters(), nil); !ok {
				return m.lastExchangeErr(conv)
			}
		}

		status = m.pod.LastStatus
		if status == nil || status.Progress != pod.Running {
			return podfault.PodResponseUnexpected("expected Running after priming completes")
		}
		delivered := status.DeliveredInsulin
		m.pod.ReservoirUsedForPriming = &delivered
		return nil
	})
}

// exchangeBasalSchedule pre-allocates the exchange's Progress with the
// schedule/date/offset attached, so the persisted Result carries the
// basal schedule that was installed (spec.md §4.1.4).
func (m *Manager) exchangeBasalSchedule(ctx context.Context, conv *conversation.Conversation, schedule [48]float64, utcOffsetMinutes int, critical bool) error {
	now := time.Now().UTC()
	podDate := toPodDate(now.Add(time.Duration(utcOffsetMinutes) * time.Minute))

	params := m.GetStandardParameters()
	params.RepeatFirstPacket = true
	params.CriticalWithFollowupRequired = critical

	req := message.NewBuilder().BasalSchedule(schedule, podDate).Build()
	progress := conv.NewExchange(req)
	progress.BasalSchedule = append([]float64(nil), schedule[:]...)
	progress.PodDate = podDate
	progress.UTCOffsetMinutes = utcOffsetMinutes

	if _, ok := m.performExchange(ctx, conv, req, params, progress); !ok {
		return progress.Exception
	}
	return nil
}

func (m *Manager) exchangeCannulaInsertionAlerts(ctx context.Context, conv *conversation.Conversation) error {
	slots := []message.AlertSlot{
		{Activate: false, AlertIndex: 7},
		{
			Activate:          true,
			AlertIndex:        0,
			TriggerAutoOff:    true,
			AlertAfterMinutes: 15,
			Beep:              message.BipBeepFourTimes,
			Repeat:            message.OnceEveryMinuteForFifteenMinutes,
		},
	}
	req := message.NewBuilder().AlertSetup(slots).Build()
	if _, ok := m.performExchange(ctx, conv, req, m.GetStandardParameters(), nil); !ok {
		return m.lastExchangeErr(conv)
	}
	return nil
}

func (m *Manager) exchangeInsertCannula(ctx context.Context, conv *conversation.Conversation) error {
	req := message.NewBuilder().InsertCannula().Build()
	if _, ok := m.performExchange(ctx, conv, req, m.GetStandardParameters(), nil); !ok {
		return m.lastExchangeErr(conv)
	}
	return nil
}
