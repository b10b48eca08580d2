package tuya

// DPCode names a Tuya data point (the "code" field of a function,
// status_range or status entry).
type DPCode string

// Data point codes used by the select platform.
const (
	DPCodeAlarmVolume         DPCode = "alarm_volume"
	DPCodeBasicAntiFlicker    DPCode = "basic_anti_flicker"
	DPCodeBasicNightvision    DPCode = "basic_nightvision"
	DPCodeBeepVolume          DPCode = "beep_volume"
	DPCodeBrightState         DPCode = "bright_state"
	DPCodeCistern             DPCode = "cistern"
	DPCodeCollectionMode      DPCode = "collection_mode"
	DPCodeConcentrationSet    DPCode = "concentration_set"
	DPCodeControlBackMode     DPCode = "control_back_mode"
	DPCodeCountdown           DPCode = "countdown"
	DPCodeCountdownSet        DPCode = "countdown_set"
	DPCodeCupNumber           DPCode = "cup_number"
	DPCodeDecibelSensitivity  DPCode = "decibel_sensitivity"
	DPCodeDehumiditySetEnum   DPCode = "dehumidify_set_enum"
	DPCodeDoorUnclosedTrigger DPCode = "door_unclosed_trigger"
	DPCodeDoorbellSong        DPCode = "doorbell_song"
	DPCodeDoorbellVolume      DPCode = "doorbell_volume"
	DPCodeFanHorizontal       DPCode = "fan_horizontal"
	DPCodeFanVertical         DPCode = "fan_vertical"
	DPCodeIPCWorkMode         DPCode = "ipc_work_mode"
	DPCodeKeyTone             DPCode = "key_tone"
	DPCodeLanguage            DPCode = "language"
	DPCodeLEDType1            DPCode = "led_type_1"
	DPCodeLEDType2            DPCode = "led_type_2"
	DPCodeLEDType3            DPCode = "led_type_3"
	DPCodeLevel               DPCode = "level"
	DPCodeLightMode           DPCode = "light_mode"
	DPCodeLockMotorDirection  DPCode = "lock_motor_direction"
	DPCodeLowPowerThreshold   DPCode = "low_power_threshold"
	DPCodeMaterial            DPCode = "material"
	DPCodeMode                DPCode = "mode"
	DPCodeMoodlighting        DPCode = "moodlighting"
	DPCodeMotionSensitivity   DPCode = "motion_sensitivity"
	DPCodeMotorTorque         DPCode = "motor_torque"
	DPCodeOpenSpeedState      DPCode = "open_speed_state"
	DPCodePhotoMode           DPCode = "photo_mode"
	DPCodeRecordMode          DPCode = "record_mode"
	DPCodeRelayStatus         DPCode = "relay_status"
	DPCodeRingtone            DPCode = "ringtone"
	DPCodeSoundMode           DPCode = "sound_mode"
	DPCodeSprayMode           DPCode = "spray_mode"
	DPCodeStayAlarmMode       DPCode = "stay_alarm_mode"
	DPCodeStayCaptureMode     DPCode = "stay_capture_mode"
	DPCodeStayTriggerDistance DPCode = "stay_trigger_distance"
	DPCodeUnlockSwitch        DPCode = "unlock_switch"
)

// DPType is the value type Tuya declares for a data point.
type DPType string

// Data point types as reported by the Tuya cloud.
const (
	DPTypeBitmap  DPType = "Bitmap"
	DPTypeBoolean DPType = "Boolean"
	DPTypeEnum    DPType = "Enum"
	DPTypeInteger DPType = "Integer"
	DPTypeJSON    DPType = "Json"
	DPTypeRaw     DPType = "Raw"
	DPTypeString  DPType = "String"
)

// Protocol is the topic segment used for Tuya bridge traffic.
const Protocol = "tuya"

// CommandSource tags commands published by this process.
const CommandSource = "graylogic-tuya"
