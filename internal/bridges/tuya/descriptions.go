package tuya

import (
	"slices"

	"github.com/nerrad567/gray-logic-tuya/internal/platform"
	iot "github.com/nerrad567/gray-logic-tuya/internal/tuya"
)

// SelectDescription describes one data point surfaced as a select.
type SelectDescription struct {
	Key            iot.DPCode
	Name           string
	EntityCategory platform.EntityCategory
	Icon           string

	// DisabledByDefault keeps the zero value enabled.
	DisabledByDefault bool

	TranslationKey string
}

// EnabledByDefault reports whether a new entity starts enabled.
func (d SelectDescription) EnabledByDefault() bool {
	return !d.DisabledByDefault
}

func (d SelectDescription) entityDescription() platform.EntityDescription {
	return platform.EntityDescription{
		Key:              string(d.Key),
		Name:             d.Name,
		EntityCategory:   d.EntityCategory,
		Icon:             d.Icon,
		TranslationKey:   d.TranslationKey,
		EnabledByDefault: d.EnabledByDefault(),
	}
}

// SelectRegistry maps a Tuya category code to the selects its devices may
// expose, in enumeration order. It is read-only once built.
type SelectRegistry struct {
	selects map[string][]SelectDescription
	aliases map[string]string
}

// Lookup returns the descriptions for category. The returned slice is
// shared with every alias of the category and must not be modified.
func (r *SelectRegistry) Lookup(category string) ([]SelectDescription, bool) {
	descs, ok := r.selects[category]
	return descs, ok
}

// Categories returns every known category code, aliases included, sorted.
func (r *SelectRegistry) Categories() []string {
	cats := make([]string, 0, len(r.selects))
	for c := range r.selects {
		cats = append(cats, c)
	}
	slices.Sort(cats)
	return cats
}

// AliasOf returns the canonical category an alias shares its descriptions
// with.
func (r *SelectRegistry) AliasOf(category string) (string, bool) {
	canonical, ok := r.aliases[category]
	return canonical, ok
}

// alias points category at the canonical entry's slice without copying.
func (r *SelectRegistry) alias(category, canonical string) {
	r.selects[category] = r.selects[canonical]
	r.aliases[category] = canonical
}

// languageSelect is shared by the lock categories.
var languageSelect = []SelectDescription{
	{
		Key:               iot.DPCodeLanguage,
		Name:              "Language",
		EntityCategory:    platform.EntityCategoryConfig,
		Icon:              "mdi:translate",
		DisabledByDefault: true,
		TranslationKey:    "language",
	},
}

// switchSelects is the kg template; tdq and tgkg start from the same pair.
func switchSelects() []SelectDescription {
	return []SelectDescription{
		{
			Key:            iot.DPCodeRelayStatus,
			Name:           "Power on behavior",
			EntityCategory: platform.EntityCategoryConfig,
			TranslationKey: "relay_status",
		},
		{
			Key:            iot.DPCodeLightMode,
			Name:           "Indicator light mode",
			EntityCategory: platform.EntityCategoryConfig,
			TranslationKey: "light_mode",
		},
	}
}

func countdownSelects() []SelectDescription {
	return []SelectDescription{
		{
			Key:            iot.DPCodeCountdown,
			Name:           "Countdown",
			EntityCategory: platform.EntityCategoryConfig,
			Icon:           "mdi:timer-cog-outline",
			TranslationKey: "countdown",
		},
		{
			Key:            iot.DPCodeCountdownSet,
			Name:           "Countdown",
			EntityCategory: platform.EntityCategoryConfig,
			Icon:           "mdi:timer-cog-outline",
			TranslationKey: "countdown",
		},
	}
}

func ledTypeSelects(n int) []SelectDescription {
	all := []SelectDescription{
		{
			Key:            iot.DPCodeLEDType1,
			Name:           "Light source type",
			EntityCategory: platform.EntityCategoryConfig,
			TranslationKey: "led_type",
		},
		{
			Key:            iot.DPCodeLEDType2,
			Name:           "Light 2 source type",
			EntityCategory: platform.EntityCategoryConfig,
			TranslationKey: "led_type",
		},
		{
			Key:            iot.DPCodeLEDType3,
			Name:           "Light 3 source type",
			EntityCategory: platform.EntityCategoryConfig,
			TranslationKey: "led_type",
		},
	}
	return all[:n]
}

// NewSelectRegistry builds the category table.
// Category documentation: https://developer.tuya.com/en/docs/iot/standarddescription?id=K9i5ql6waswzq
func NewSelectRegistry() *SelectRegistry {
	r := &SelectRegistry{
		selects: map[string][]SelectDescription{
			// Multi-functional sensor
			"dgnbj": {
				{Key: iot.DPCodeAlarmVolume, Name: "Volume", EntityCategory: platform.EntityCategoryConfig},
			},
			// Coffee maker
			"kfj": {
				{Key: iot.DPCodeCupNumber, Name: "Cups", Icon: "mdi:numeric"},
				{
					Key:            iot.DPCodeConcentrationSet,
					Name:           "Concentration",
					Icon:           "mdi:altimeter",
					EntityCategory: platform.EntityCategoryConfig,
				},
				{Key: iot.DPCodeMaterial, Name: "Material", EntityCategory: platform.EntityCategoryConfig},
				{Key: iot.DPCodeMode, Name: "Mode", Icon: "mdi:coffee"},
			},
			// Switch
			"kg": switchSelects(),
			// Smart lock
			"ms": append([]SelectDescription{
				lockSelect(iot.DPCodeAlarmVolume, "Alert volume", "mdi:volume-high", "lock_alarm_volume"),
				lockSelect(iot.DPCodeBasicNightvision, "Infrared (IR) night vision", "mdi:weather-night", "lock_basic_nightvision"),
				lockSelect(iot.DPCodeBeepVolume, "Local voice volume", "mdi:volume-high", "lock_doorbell_volume"),
				lockSelect(iot.DPCodeDoorUnclosedTrigger, "Trigger time of unclosed", "mdi:timer-cog-outline", "lock_door_unclosed_trigger"),
				lockSelect(iot.DPCodeDoorbellSong, "Doorbell ringtone", "mdi:music-box-multiple-outline", "lock_doorbell_song"),
				lockSelect(iot.DPCodeDoorbellVolume, "Doorbell volume", "mdi:volume-high", "lock_doorbell_volume"),
				lockSelect(iot.DPCodeKeyTone, "Volume on keypress", "mdi:music-box-multiple-outline", "lock_doorbell_volume"),
				lockSelect(iot.DPCodeLockMotorDirection, "Rotation direction of motor", "mdi:swap-horizontal", "lock_motor_direction"),
				lockSelect(iot.DPCodeLowPowerThreshold, "Low battery alert", "mdi:battery-alert-variant-outline", "lock_low_power_threshold"),
				lockSelect(iot.DPCodeMotorTorque, "Torque force of motor", "mdi:hexagon-multiple-outline", "lock_motor_torque"),
				lockSelect(iot.DPCodeOpenSpeedState, "Unlocking speed", "mdi:speedometer", "lock_open_speed_state"),
				lockSelect(iot.DPCodePhotoMode, "Photo mode", "mdi:image-multiple-outline", "lock_photo_mode"),
				lockSelect(iot.DPCodeRingtone, "Local ringtone", "mdi:music-box-multiple-outline", "lock_ringtone"),
				lockSelect(iot.DPCodeSoundMode, "Sound mode", "mdi:music-box-multiple-outline", "lock_sound_mode"),
				lockSelect(iot.DPCodeStayAlarmMode, "Loitering alert mode", "mdi:star-box-multiple-outline", "lock_stay_alarm_mode"),
				lockSelect(iot.DPCodeStayCaptureMode, "Loitering photo capture mode", "mdi:image-multiple-outline", "lock_stay_capture_mode"),
				lockSelect(iot.DPCodeStayTriggerDistance, "Loitering sensing range", "mdi:signal-distance-variant", "lock_stay_trigger_distance"),
				lockSelect(iot.DPCodeUnlockSwitch, "Unlock mode", "mdi:shield-lock-open-outline", "lock_unlock_switch"),
			}, languageSelect...),
			// Heater
			"qn": {
				{Key: iot.DPCodeLevel, Name: "Temperature level", Icon: "mdi:thermometer-lines"},
			},
			// Siren alarm
			"sgbj": {
				{Key: iot.DPCodeAlarmVolume, Name: "Volume", EntityCategory: platform.EntityCategoryConfig},
				{Key: iot.DPCodeBrightState, Name: "Brightness", EntityCategory: platform.EntityCategoryConfig},
			},
			// Smart camera
			"sp": {
				{
					Key:            iot.DPCodeIPCWorkMode,
					Name:           "IPC mode",
					EntityCategory: platform.EntityCategoryConfig,
					TranslationKey: "ipc_work_mode",
				},
				{
					Key:            iot.DPCodeDecibelSensitivity,
					Name:           "Sound detection densitivity",
					Icon:           "mdi:volume-vibrate",
					EntityCategory: platform.EntityCategoryConfig,
					TranslationKey: "decibel_sensitivity",
				},
				{
					Key:            iot.DPCodeRecordMode,
					Name:           "Record mode",
					Icon:           "mdi:record-rec",
					EntityCategory: platform.EntityCategoryConfig,
					TranslationKey: "record_mode",
				},
				{
					Key:            iot.DPCodeBasicNightvision,
					Name:           "Night vision",
					Icon:           "mdi:theme-light-dark",
					EntityCategory: platform.EntityCategoryConfig,
					TranslationKey: "basic_nightvision",
				},
				{
					Key:            iot.DPCodeBasicAntiFlicker,
					Name:           "Anti-flicker",
					Icon:           "mdi:image-outline",
					EntityCategory: platform.EntityCategoryConfig,
					TranslationKey: "basic_anti_flicker",
				},
				{
					Key:            iot.DPCodeMotionSensitivity,
					Name:           "Motion detection sensitivity",
					Icon:           "mdi:motion-sensor",
					EntityCategory: platform.EntityCategoryConfig,
					TranslationKey: "motion_sensitivity",
				},
			},
			// IoT switch, undocumented
			"tdq": switchSelects(),
			// Dimmer switch
			"tgkg": append(switchSelects(), ledTypeSelects(3)...),
			// Dimmer
			"tgq": ledTypeSelects(2),
			// Fingerbot
			"szjqr": {
				{
					Key:            iot.DPCodeMode,
					Name:           "Mode",
					EntityCategory: platform.EntityCategoryConfig,
					TranslationKey: "fingerbot_mode",
				},
			},
			// Robot vacuum
			"sd": {
				{
					Key:            iot.DPCodeCistern,
					Name:           "Water tank adjustment",
					EntityCategory: platform.EntityCategoryConfig,
					Icon:           "mdi:water-opacity",
					TranslationKey: "vacuum_cistern",
				},
				{
					Key:            iot.DPCodeCollectionMode,
					Name:           "Dust collection mode",
					EntityCategory: platform.EntityCategoryConfig,
					Icon:           "mdi:air-filter",
					TranslationKey: "vacuum_collection",
				},
				{
					Key:            iot.DPCodeMode,
					Name:           "Mode",
					EntityCategory: platform.EntityCategoryConfig,
					Icon:           "mdi:layers-outline",
					TranslationKey: "vacuum_mode",
				},
			},
			// Fan
			"fs": append([]SelectDescription{
				{
					Key:            iot.DPCodeFanVertical,
					Name:           "Vertical swing flap angle",
					EntityCategory: platform.EntityCategoryConfig,
					Icon:           "mdi:format-vertical-align-center",
					TranslationKey: "fan_angle",
				},
				{
					Key:            iot.DPCodeFanHorizontal,
					Name:           "Horizontal swing flap angle",
					EntityCategory: platform.EntityCategoryConfig,
					Icon:           "mdi:format-horizontal-align-center",
					TranslationKey: "fan_angle",
				},
			}, countdownSelects()...),
			// Curtain
			"cl": {
				{
					Key:            iot.DPCodeControlBackMode,
					Name:           "Motor mode",
					EntityCategory: platform.EntityCategoryConfig,
					Icon:           "mdi:swap-horizontal",
					TranslationKey: "curtain_motor_mode",
				},
				{
					Key:            iot.DPCodeMode,
					Name:           "Mode",
					EntityCategory: platform.EntityCategoryConfig,
					TranslationKey: "curtain_mode",
				},
			},
			// Humidifier
			"jsq": append([]SelectDescription{
				{
					Key:            iot.DPCodeSprayMode,
					Name:           "Spray mode",
					EntityCategory: platform.EntityCategoryConfig,
					Icon:           "mdi:spray",
					TranslationKey: "humidifier_spray_mode",
				},
				{
					Key:            iot.DPCodeLevel,
					Name:           "Spraying level",
					EntityCategory: platform.EntityCategoryConfig,
					Icon:           "mdi:spray",
					TranslationKey: "humidifier_level",
				},
				{
					Key:            iot.DPCodeMoodlighting,
					Name:           "Moodlighting",
					EntityCategory: platform.EntityCategoryConfig,
					Icon:           "mdi:lightbulb-multiple",
					TranslationKey: "humidifier_moodlighting",
				},
			}, countdownSelects()...),
			// Air purifier
			"kj": countdownSelects(),
			// Dehumidifier
			"cs": {
				countdownSelects()[1],
				{
					Key:            iot.DPCodeDehumiditySetEnum,
					Name:           "Target humidity",
					EntityCategory: platform.EntityCategoryConfig,
					Icon:           "mdi:water-percent",
				},
			},
		},
		aliases: make(map[string]string),
	}

	// Socket and power socket.
	r.alias("cz", "kg")
	r.alias("pc", "kg")

	// Lock variants.
	for _, c := range []string{"bxx", "gyms", "jtmspro", "hotelms", "ms_category", "jtmsbh", "mk", "videolock", "photolock"} {
		r.alias(c, "ms")
	}

	return r
}

func lockSelect(code iot.DPCode, name, icon, translationKey string) SelectDescription {
	return SelectDescription{
		Key:            code,
		Name:           name,
		EntityCategory: platform.EntityCategoryConfig,
		Icon:           icon,
		TranslationKey: translationKey,
	}
}
