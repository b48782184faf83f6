package message

// Builder fluently assembles one Request at a time. A Builder is not
// reused across requests; internal/manager constructs a fresh Builder for
// each therapy request it issues.
type Builder struct {
	opcode Opcode
	params interface{}
}

// NewBuilder starts a fresh Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AssignAddress assembles the address-assignment request sent during
// pairing before the pod has accepted a permanent address.
func (b *Builder) AssignAddress(radioAddress uint32) *Builder {
	b.opcode = OpAssignAddress
	b.params = AssignAddressParams{RadioAddress: radioAddress}
	return b
}

// SetupPod assembles the pod-setup request that commits lot, serial,
// address, and activation time.
func (b *Builder) SetupPod(lot, serial, radioAddress uint32, date PodDate) *Builder {
	b.opcode = OpSetupPod
	b.params = SetupPodParams{Lot: lot, Serial: serial, RadioAddress: radioAddress, PodDate: date}
	return b
}

// Status assembles a status-poll request.
func (b *Builder) Status(t StatusType) *Builder {
	b.opcode = OpStatus
	b.params = StatusParams{Type: t}
	return b
}

// AlertSetup assembles an alert-configuration request over one or more
// slots.
func (b *Builder) AlertSetup(slots []AlertSlot) *Builder {
	b.opcode = OpAlertSetup
	b.params = AlertSetupParams{Slots: slots}
	return b
}

// DeliveryFlags assembles the delivery-flags request sent before priming.
func (b *Builder) DeliveryFlags(flagA, flagB uint8) *Builder {
	b.opcode = OpDeliveryFlags
	b.params = DeliveryFlagsParams{FlagA: flagA, FlagB: flagB}
	return b
}

// PrimeCannula assembles the cannula-priming request.
func (b *Builder) PrimeCannula() *Builder {
	b.opcode = OpPrimeCannula
	b.params = struct{}{}
	return b
}

// InsertCannula assembles the cannula-insertion request.
func (b *Builder) InsertCannula() *Builder {
	b.opcode = OpInsertCannula
	b.params = struct{}{}
	return b
}

// BasalSchedule assembles the 48-slot basal-schedule request.
func (b *Builder) BasalSchedule(schedule [48]float64, date PodDate) *Builder {
	b.opcode = OpBasalSchedule
	b.params = BasalScheduleParams{Schedule: schedule, PodDate: date}
	return b
}

// AcknowledgeAlerts assembles an alert-acknowledgement request.
func (b *Builder) AcknowledgeAlerts(mask uint8) *Builder {
	b.opcode = OpAcknowledgeAlerts
	b.params = AcknowledgeAlertsParams{AlertMask: mask}
	return b
}

// TempBasal assembles a temporary-basal-rate request.
func (b *Builder) TempBasal(rateUnitsPerHour, durationHours float64) *Builder {
	b.opcode = OpTempBasal
	b.params = TempBasalParams{RateUnitsPerHour: rateUnitsPerHour, DurationHours: durationHours}
	return b
}

// CancelTempBasal assembles a temp-basal-cancellation request.
func (b *Builder) CancelTempBasal() *Builder {
	b.opcode = OpCancelTempBasal
	b.params = struct{}{}
	return b
}

// Bolus assembles an immediate-bolus request.
func (b *Builder) Bolus(amountUnits float64) *Builder {
	b.opcode = OpBolus
	b.params = BolusParams{AmountUnits: amountUnits}
	return b
}

// CancelBolus assembles a bolus-cancellation request.
func (b *Builder) CancelBolus() *Builder {
	b.opcode = OpCancelBolus
	b.params = struct{}{}
	return b
}

// Deactivate assembles the pod-deactivation request.
func (b *Builder) Deactivate() *Builder {
	b.opcode = OpDeactivate
	b.params = struct{}{}
	return b
}

// Build finalizes the assembled Request.
func (b *Builder) Build() Request {
	return Request{Opcode: b.opcode, Params: b.params}
}
