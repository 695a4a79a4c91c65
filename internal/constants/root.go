package constants

import "time"

// Frequency represents how often a habit is meant to be performed
type Frequency string

// TargetUnit represents the unit a habit's target is measured in
type TargetUnit string

// SessionState represents the current state of the TUI application
type SessionState int

const (
	AppName            = "streakly"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/streakly/streakly.db"
	Version            = "v0.3.0"

	// DateFormat is the day key format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// MonthFormat is the format accepted by month selectors (YYYY-MM)
	MonthFormat = "2006-01"

	// Storage slots
	HabitsSlot  = "habits"
	SnoozesSlot = "reminder_snoozes"

	// Storage DSN prefixes
	PostgresScheme   = "postgres://"
	PostgresqlScheme = "postgresql://"
	BadgerPrefix     = "badger:"

	// Environment variables
	EnvStore        = "STREAKLY_STORE"
	EnvTimezone     = "STREAKLY_TIMEZONE"
	EnvDebug        = "STREAKLY_DEBUG"
	EnvDBConnection = "STREAKLY_DB_CONNECTION"

	DefaultTimezone = "Local"

	// Habit defaults
	DefaultTargetValue = 1.0
	DaysPerWeek        = 7

	// Notify constants
	NotifyMaxRetries       = 3
	NotifyRetryDelay       = 100 * time.Millisecond
	NotifierLockfileName   = "streakly-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.julianstephens.streakly"
	ReminderTitle          = "Habit Reminder"

	// Backups
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "streakly-"
	BackupFileSuffix = ".json"

	// Frequencies
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"

	// Target units. UnitTimes is the only discrete unit.
	UnitTimes    TargetUnit = "times"
	UnitHours    TargetUnit = "hours"
	UnitMinutes  TargetUnit = "minutes"
	UnitKm       TargetUnit = "km"
	UnitMiles    TargetUnit = "miles"
	UnitPages    TargetUnit = "pages"
	UnitGlasses  TargetUnit = "glasses"
	UnitServings TargetUnit = "servings"
	UnitCalls    TargetUnit = "calls"
)

// Session States
const (
	StateActive SessionState = iota
	StateArchived
	StateStats
	StateAddHabit
	StateLogAmount
	StateConfirmClear
)

// Slots lists every storage slot the application writes.
var Slots = []string{HabitsSlot, SnoozesSlot}

// TargetUnits lists the supported units in display order. The first entry is the default.
var TargetUnits = []TargetUnit{
	UnitTimes, UnitHours, UnitMinutes, UnitKm, UnitMiles,
	UnitPages, UnitGlasses, UnitServings, UnitCalls,
}
