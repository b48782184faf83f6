package message

// Opcode identifies which low-level request a Request carries.
type Opcode int

const (
	OpAssignAddress Opcode = iota
	OpSetupPod
	OpStatus
	OpAlertSetup
	OpDeliveryFlags
	OpPrimeCannula
	OpInsertCannula
	OpBasalSchedule
	OpAcknowledgeAlerts
	OpTempBasal
	OpCancelTempBasal
	OpBolus
	OpCancelBolus
	OpDeactivate
)

func (o Opcode) String() string {
	switch o {
	case OpAssignAddress:
		return "assign_address"
	case OpSetupPod:
		return "setup_pod"
	case OpStatus:
		return "status"
	case OpAlertSetup:
		return "alert_setup"
	case OpDeliveryFlags:
		return "delivery_flags"
	case OpPrimeCannula:
		return "prime_cannula"
	case OpInsertCannula:
		return "insert_cannula"
	case OpBasalSchedule:
		return "basal_schedule"
	case OpAcknowledgeAlerts:
		return "acknowledge_alerts"
	case OpTempBasal:
		return "temp_basal"
	case OpCancelTempBasal:
		return "cancel_temp_basal"
	case OpBolus:
		return "bolus"
	case OpCancelBolus:
		return "cancel_bolus"
	case OpDeactivate:
		return "deactivate"
	default:
		return "unknown"
	}
}

// StatusType selects the shape of a status request; Standard is the only
// type defined.
type StatusType int

const (
	StatusStandard StatusType = iota
)

// BeepPattern is the pod's audible alert pattern.
type BeepPattern int

const (
	BeepNone BeepPattern = iota
	BipBeepFourTimes
)

// RepeatPattern controls how an alert slot re-fires.
type RepeatPattern int

const (
	RepeatNone RepeatPattern = iota
	OnceEveryFiveMinutes
	OnceEveryMinuteForFifteenMinutes
)

// AlertSlot configures one of the pod's eight alert slots.
type AlertSlot struct {
	Activate          bool
	AlertIndex        uint8
	AlertAfterMinutes uint16
	AlertDuration     uint16
	Beep              BeepPattern
	Repeat            RepeatPattern
	TriggerAutoOff    bool
}

// PodDate is the (year, month, day, hour, minute, second) decomposition the
// pod expects for any time-bearing request, per spec.md §6 ("Time sent to
// the pod decomposes UTC-plus-offset into ... fields").
type PodDate struct {
	Year, Month, Day, Hour, Minute, Second int
}

// Request is a fully assembled, typed request message: an opcode plus its
// parameters.
type Request struct {
	Opcode Opcode
	Params interface{}
}

// AssignAddressParams is OpAssignAddress's payload.
type AssignAddressParams struct {
	RadioAddress uint32
}

// SetupPodParams is OpSetupPod's payload.
type SetupPodParams struct {
	Lot          uint32
	Serial       uint32
	RadioAddress uint32
	PodDate      PodDate
}

// StatusParams is OpStatus's payload.
type StatusParams struct {
	Type StatusType
}

// AlertSetupParams is OpAlertSetup's payload.
type AlertSetupParams struct {
	Slots []AlertSlot
}

// DeliveryFlagsParams is OpDeliveryFlags's payload.
type DeliveryFlagsParams struct {
	FlagA uint8
	FlagB uint8
}

// BasalScheduleParams is OpBasalSchedule's payload.
type BasalScheduleParams struct {
	Schedule [48]float64
	PodDate  PodDate
}

// AcknowledgeAlertsParams is OpAcknowledgeAlerts's payload.
type AcknowledgeAlertsParams struct {
	AlertMask uint8
}

// TempBasalParams is OpTempBasal's payload.
type TempBasalParams struct {
	RateUnitsPerHour float64
	DurationHours    float64
}

// BolusParams is OpBolus's payload.
type BolusParams struct {
	AmountUnits float64
}
