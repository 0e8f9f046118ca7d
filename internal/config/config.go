package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Med Reminder"
	AppID             = "com.github.tartampluch.go-medreminder"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "medreminder.log"
	MCPLogFileName    = "medreminder-mcp.log"
	DBFileName        = "medreminder.db"
	ConfigFileName    = "config.yaml"
	EnvPrefix         = "MEDREMINDER_"
	MCPServerName     = "medreminder"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	// Used for logs and the reminder database.
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion      = "version"
	FlagDebug        = "debug"
	FlagConfig       = "config"
	FlagDescVersion  = "Show application version and exit"
	FlagDescDebug    = "Enable debug logging"
	FlagDescConfig   = "Path to the YAML configuration file"
	FlagEphemeral    = "ephemeral"
	FlagDescEphem    = "Keep reminders in memory only"
	MsgVersionOutput = "%s version %s (%s/%s)\n"
)

// -----------------------------------------------------------------------------
// Storage Keys
// -----------------------------------------------------------------------------

// Keys of the opaque key-value store. The reminder list is a single JSON blob.
const (
	KeyReminders = "reminders"
	KeySettings  = "settings"
	KeyTriggers  = "triggers"

	// BoltBucket holds every key of the bbolt backend.
	BoltBucket = "medreminder"

	// PrefKeyPrefix namespaces blobs stored in fyne Preferences.
	PrefKeyPrefix = "blob."
)

// -----------------------------------------------------------------------------
// UI Preferences
// -----------------------------------------------------------------------------

const (
	SettingsWindowWidth = 420

	PrefLanguage = "language"
	PrefLastRun  = "last_run_version"
)

// SupportedLanguages defines the list of available UI languages (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyWinSettings     = "win_settings_title"
	TKeyMenuRefresh     = "menu_refresh"
	TKeyMenuSettings    = "menu_settings"
	TKeyMenuDelete      = "menu_delete"
	TKeyTrayStatus      = "tray_status"      // Requires Count > 0
	TKeyTrayStatusZero  = "tray_status_zero" // Explicit key for 0
	TKeyAgendaEmpty     = "agenda_empty"
	TKeyNotifTitle      = "notif_title"   // Requires Name
	TKeyNotifBody       = "notif_body"    // Requires Units, UnitType, Name, When
	TKeyNotifDeleted    = "notif_deleted" // Requires Name, Time
	TKeyNotifError      = "notif_err_storage"
	TKeyLblLanguage     = "lbl_language"
	TKeyLblNotif        = "lbl_notifications"
	TKeyLblEnableNotif  = "lbl_enable_notifications"
	TKeyLblTone         = "lbl_tone"
	TKeyHelpTone        = "help_tone"
	TKeyBtnSave         = "btn_save"
	TKeyBtnCancel       = "btn_cancel"
	TKeyLblFooter       = "lbl_footer"
	TKeyFormatAgendaRow = "format_agenda_row" // Requires Time, Name, Units, UnitType

	TKeyMenuAdd       = "menu_add"
	TKeyMenuReminders = "menu_reminders"
	TKeyWinReminders  = "win_reminders_title"
	TKeyWinAdd        = "win_add_title"
	TKeyColName       = "col_name"
	TKeyColDays       = "col_days"
	TKeyColTimes      = "col_times"
	TKeyColDates      = "col_dates"
	TKeyLblMedicine   = "lbl_medicine"
	TKeyLblType       = "lbl_type"
	TKeyLblUnits      = "lbl_units"
	TKeyLblWhen       = "lbl_when"
	TKeyLblDays       = "lbl_days"
	TKeyLblTimes      = "lbl_times"
	TKeyHelpTimes     = "help_times"
	TKeyLblStartDate  = "lbl_start_date"
	TKeyLblEndDate    = "lbl_end_date"
	TKeyHelpDate      = "help_date"
	TKeyLblDesc       = "lbl_description"
	TKeyLblColor      = "lbl_color"
	TKeyHelpLanguage  = "help_language"
	TKeyNotifAdded    = "notif_added"   // Requires Name, Count
	TKeyNotifRefresh  = "notif_refresh" // Requires Count
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	DefaultPort             = "18081"
	DefaultLanguage         = "en"
	DefaultTone             = "Default"
	DefaultSound            = "default"
	DefaultDispatchInterval = 30 * time.Second
	DefaultRefreshInterval  = 15 * time.Minute
	DefaultLogLevel         = "info"
	DefaultAlarmTrigger     = "PT0M"
	DefaultStorage          = StorageBolt
)

// Storage backends selectable through the runtime configuration.
const (
	StorageBolt        = "bolt"
	StoragePreferences = "preferences"
	StorageMemory      = "memory"
)

// Medicine forms and dose units accepted on append.
const (
	TypeTablet    = "Tablet"
	TypeInjection = "Injection"
	TypeSyrup     = "Syrup"

	UnitMG = "mg"
	UnitML = "ml"
)

// Tone labels offered by the settings screen.
const (
	ToneDefault = "Default"
	Tone1       = "Tone 1"
	Tone2       = "Tone 2"
	Tone3       = "Tone 3"
)

// ToneSounds maps a tone label to its sound asset. Unknown tones fall back to DefaultSound.
var ToneSounds = map[string]string{
	ToneDefault: DefaultSound,
	Tone1:       "beep1.wav",
	Tone2:       "beep2.wav",
	Tone3:       "beep3.mp3",
}

// Tones lists the selectable tone labels in display order.
var Tones = []string{ToneDefault, Tone1, Tone2, Tone3}

// ReminderColor is one display tag offered by the add form.
type ReminderColor struct {
	Name string
	Hex  string
}

// ReminderColors lists the display tags in form order. Records store the hex value.
var ReminderColors = []ReminderColor{
	{"Red", "#F28B82"},
	{"Yellow", "#FDD663"},
	{"Green", "#81C995"},
	{"Orange", "#F6AD55"},
	{"Purple", "#D291BC"},
	{"Coral", "#F47373"},
	{"Gray", "#A9A9A9"},
	{"Cyan", "#00BCD4"},
	{"Peach", "#FFB347"},
	{"Slate Blue", "#6A5ACD"},
	{"Light Sea Green", "#20B2AA"},
	{"Hot Pink", "#FF69B4"},
}

// -----------------------------------------------------------------------------
// Standards: iCalendar
// -----------------------------------------------------------------------------

const (
	ICalVersion   = "2.0"
	ICalProdid    = "-//Med Reminder//Engine//EN"
	ICalCalName   = "Medication"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"
	ICalDomain    = "medreminder"

	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTStamp     = "DTSTAMP"
	PropRefresh     = "REFRESH-INTERVAL"
	PropAction      = "ACTION"
	PropDescription = "DESCRIPTION"
	PropTrigger     = "TRIGGER"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"
	PropCategories  = "CATEGORIES"

	DefaultICalRefresh = 1 * time.Hour
)

// -----------------------------------------------------------------------------
// Data Formats
// -----------------------------------------------------------------------------

const (
	// DateFormatISO is the calendar-day layout used for startDate/endDate.
	// Lexicographic order of this layout matches chronological order.
	DateFormatISO = "2006-01-02"

	// TimeSeparator splits the HH:MM wire format.
	TimeSeparator = ":"
	SuffixAM      = "AM"
	SuffixPM      = "PM"

	// ListSeparator splits comma-separated tool arguments.
	ListSeparator = ","

	// FormatUID expects the reminder id, the slot index and the domain.
	FormatUID = "%s-%d@%s"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	ShutdownTimeout    = 5 * time.Second
	ServerReadTimeout  = 10 * time.Second
	ServerWriteTimeout = 30 * time.Second
	ServerIdleTimeout  = 60 * time.Second
	BoltOpenTimeout    = 1 * time.Second
	RetryAfterSeconds  = "10"
	AllowedMethods     = "GET, HEAD"
	RouteRoot          = "/"
	RouteMetrics       = "/metrics"
	AddrSeparator      = ":"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Metrics
// -----------------------------------------------------------------------------

const (
	MetricsNamespace     = "medreminder"
	MetricSubmitted      = "triggers_submitted_total"
	MetricFired          = "notifications_fired_total"
	MetricRegistered     = "triggers_registered"
	MetricLabelResult    = "result"
	MetricResultSent     = "sent"
	MetricResultFailed   = "failed"
	MetricResultSuppress = "suppressed"
	MetricHelpSubmitted  = "Number of triggers accepted by the dispatcher."
	MetricHelpFired      = "Number of notification firings by outcome."
	MetricHelpRegistered = "Number of triggers currently registered."
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrValidation       = "validation failed"
	ErrEmptyTimes       = "reminder must have at least one time"
	ErrNotFound         = "reminder not found"
	ErrMalformedEntry   = "malformed entry"
	ErrStorage          = "storage failure"
	ErrKVRead           = "failed to read key"
	ErrKVWrite          = "failed to write key"
	ErrDecodeReminders  = "failed to decode reminder list"
	ErrEncodeReminders  = "failed to encode reminder list"
	ErrDecodeSettings   = "failed to decode settings"
	ErrEncodeSettings   = "failed to encode settings"
	ErrDecodeTriggers   = "failed to decode trigger list"
	ErrEncodeTriggers   = "failed to encode trigger list"
	ErrTimeFormat       = "time must be HH:MM"
	ErrTimeRange        = "time out of range"
	ErrUnknownDay       = "unknown day name"
	ErrDateFormat       = "date must be YYYY-MM-DD"
	ErrRecurrence       = "failed to build recurrence rule"
	ErrServerStartup    = "server startup failed"
	ErrServerShutdown   = "server shutdown failed"
	ErrPortRequired     = "server port is required"
	ErrICalEncode       = "failed to encode iCalendar data"
	ErrLogFile          = "failed to open log file"
	ErrCacheDir         = "could not determine user cache dir"
	ErrDataDir          = "could not create data dir"
	ErrCreateDir        = "could not create cache dir"
	ErrStorageBackend   = "unknown storage backend"
	ErrLogLevel         = "unknown log level"
	ErrAppFailed        = "application failed unexpectedly"
	ErrWriteResp        = "failed to write response body"
	ErrLocalesAccess    = "failed to access embedded locales"
	ErrLocaleLoad       = "failed to load locale file"
	ErrTrayNotSupported = "system tray not supported on this platform/driver"
	ErrLocNotInit       = "localizer not initialized"
	ErrConfigLoad       = "failed to load configuration"
	ErrOpenStore        = "failed to open reminder store"
	ErrSubmit           = "trigger submission failed"
	ErrNotify           = "notification delivery failed"
	ErrDispatchInterval = "dispatch interval must be positive"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Calendar initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
)

// -----------------------------------------------------------------------------
// Fallbacks & Messages
// -----------------------------------------------------------------------------

const (
	// FallbackTitle expects the medicine name.
	FallbackTitle = "Time to take %s"
	// FallbackBody expects units, unit type, medicine name and the "when" tag.
	FallbackBody = "Take %s%s of %s (%s)"
	// FallbackAgendaRow expects time, medicine name, units and unit type.
	FallbackAgendaRow   = "%s  %s %s%s"
	FallbackTrayError   = "Med Reminder: Storage Error"
	FallbackTrayDefault = "Med Reminder (%d today)"
	FallbackTrayLabel   = "Med Reminder"

	// StubVCalendar is the minimal valid iCalendar object used when no events are found.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"

	TitleStartupError = "Startup Error"

	MsgPortBusy         = "Port %s is busy or unavailable."
	MsgReminderAdded    = "Reminder added"
	MsgRemindersPruned  = "Expired reminders pruned"
	MsgTimeRemoved      = "Reminder time removed"
	MsgRecordRemoved    = "Reminder removed"
	MsgDeleteNoMatch    = "No reminder matches delete request"
	MsgAmbiguousMatch   = "Several reminders match delete key, using the first"
	MsgDormantRange     = "Reminder start date is after its end date and will never be due"
	MsgSkippedDay       = "Skipping unknown day name"
	MsgSkippedTime      = "Skipping malformed time"
	MsgTriggersCompiled = "Triggers compiled"
	MsgTriggerSubmitted = "Trigger submitted"
	MsgTriggersCanceled = "Triggers canceled"
	MsgTriggersOrphaned = "Triggers of removed reminders withdrawn"
	MsgTriggerSkipped   = "Occurrence outside the reminder's date range, not fired"
	MsgNotifFired       = "Notification fired"
	MsgNotifSuppressed  = "Notifications disabled, firing suppressed"
	MsgSoundUnplayed    = "Desktop notifications carry no sound, tone not played"
	MsgAgendaProjected  = "Agenda projected"
	MsgRefreshReq       = "Agenda refresh requested"
	MsgWorkerStart      = "Background worker started"
	MsgWorkerStop       = "Worker stopping due to context cancellation"
	MsgDispatcherStart  = "Dispatcher started"
	MsgDispatcherStop   = "Dispatcher stopping"
	MsgAppStop          = "Application stopped gracefully"
	MsgCtxCancel        = "Context cancelled, shutting down UI"
	MsgFeedGenerated    = "Calendar feed generated"
	MsgAppStarting      = "Starting application"
	MsgServerListen     = "HTTP server listening"
	MsgServerStop       = "Shutting down HTTP server..."
	MsgCacheUpdated     = "Calendar cache updated"
	MsgLocaleSkip       = "Skipping non-locale file"
	MsgLocaleBadName    = "Skipping malformed locale filename"
	MsgLocaleLoaded     = "Locale loaded successfully"
	MsgTransMissing     = "Missing translation key"
	MsgSettingsSaved    = "Settings saved"
	MsgLogWarning       = "Warning: %s at %s: %v\n"
	MsgToolServing      = "Serving reminder tools over stdio"
	MsgWinOpen          = "Opening window"
	MsgWinFocus         = "Window already open, requesting focus"
	MsgTableSorted      = "Reminder table sorted"
	MsgSettingsSaving   = "Saving preferences"
	MsgEntryDeleted     = "Agenda entry deleted"
	MsgTrayRebuilt      = "Tray menu rebuilt"
	MsgEphemeral        = "Using in-memory storage, reminders are lost on exit"
	MsgStorageOpened    = "Reminder storage opened"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyPort      = "port"
	LogKeyInterval  = "interval"
	LogKeyKey       = "key"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyID        = "reminder_id"
	LogKeyMedicine  = "medicine"
	LogKeyDay       = "day"
	LogKeyTime      = "time"
	LogKeyToday     = "today"
	LogKeyCount     = "count"
	LogKeyBefore    = "before"
	LogKeyAfter     = "after"
	LogKeyMatches   = "matches"
	LogKeyOutcome   = "outcome"
	LogKeyWeekday   = "weekday"
	LogKeySound     = "sound"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyManual    = "manual"
	LogKeyPath      = "path"
	LogKeyStart     = "start_date"
	LogKeyEnd       = "end_date"
	LogKeySortCol   = "sort_col"
	LogKeySortAsc   = "sort_asc"
	LogKeyStorage   = "storage"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompUI         = "ui"
	CompUISet      = "ui_settings"
	CompUIList     = "ui_reminders"
	CompUIAdd      = "ui_add"
	CompStore      = "store"
	CompCompiler   = "compiler"
	CompProjector  = "projector"
	CompCalendar   = "calendar"
	CompDispatcher = "dispatcher"
	CompServer     = "server"
	CompTools      = "tools"
	CompWorker     = "worker"
	CompMain       = "main"
	CompI18n       = "i18n"
)

// -----------------------------------------------------------------------------
// Tool Server (MCP)
// -----------------------------------------------------------------------------

const (
	ToolAddReminder    = "add_reminder"
	ToolListReminders  = "list_reminders"
	ToolTodayAgenda    = "today_agenda"
	ToolDeleteTime     = "delete_reminder_time"
	ToolCompile        = "compile_triggers"
	ToolDescAdd        = "Add a medicine reminder and schedule its weekly notifications"
	ToolDescList       = "List every stored medicine reminder"
	ToolDescAgenda     = "List today's doses, one row per time, after pruning expired reminders"
	ToolDescDelete     = "Remove one dose time from a reminder; the reminder is removed with its last time"
	ToolDescCompile    = "Preview the weekly notification triggers of a reminder without scheduling them"
	ArgID              = "id"
	ArgMedicineName    = "medicine_name"
	ArgType            = "type"
	ArgUnits           = "units"
	ArgUnitType        = "unit_type"
	ArgColor           = "color"
	ArgWhen            = "when"
	ArgDays            = "days"
	ArgTimes           = "times"
	ArgStartDate       = "start_date"
	ArgEndDate         = "end_date"
	ArgDescription     = "description"
	ArgTime            = "time"
	ArgDate            = "date"
	ArgDescID          = "Reminder id"
	ArgDescName        = "Medicine name"
	ArgDescType        = "Medicine form: Tablet, Injection or Syrup"
	ArgDescUnits       = "Dose amount, e.g. 500"
	ArgDescUnitType    = "Dose unit: mg or ml"
	ArgDescColor       = "Display color"
	ArgDescWhen        = "Free text tag, e.g. Before breakfast"
	ArgDescDays        = "Comma-separated weekday names, e.g. Monday,Wednesday"
	ArgDescTimes       = "Comma-separated HH:MM times, e.g. 08:00,20:00"
	ArgDescStartDate   = "First day, YYYY-MM-DD"
	ArgDescEndDate     = "Last day, YYYY-MM-DD"
	ArgDescDescription = "Optional notes"
	ArgDescTime        = "The HH:MM time to remove"
	ArgDescDate        = "Day to project, YYYY-MM-DD (default: today)"
	ToolMsgNoReminders = "No reminders stored."
	ToolMsgNoAgenda    = "No doses due today."
	ToolErrArgs        = "either id or medicine_name is required"
	ToolErrUnknown     = "unknown tool %q"
	ToolErrRequired    = "%s is required"
	ToolErrFailed      = "%s failed: %v"
	ToolVersion        = "1.0.0"
	JSONIndent         = "  "
)

// -----------------------------------------------------------------------------
// UI Layout Constants
// -----------------------------------------------------------------------------

const (
	LayoutColumnsDouble = 2

	RemindersWinWidth  = 640
	RemindersWinHeight = 400
	AddWindowWidth     = 460

	// Reminder table columns.
	ColIDName   = 0
	ColIDDays   = 1
	ColIDTimes  = 2
	ColIDDates  = 3
	ColumnCount = 4

	ColWidthName  = 160
	ColWidthDays  = 220
	ColWidthTimes = 120
	ColWidthDates = 200

	TablePlaceholder = "Placeholder Text Wide"
	SortIconAsc      = " ▲"
	SortIconDesc     = " ▼"

	// FormatDateRange expects the start and end dates.
	FormatDateRange = "%s → %s"
	DisplaySep      = ", "
	PlaceholderTime = "08:00, 20:00"
	PlaceholderDate = "2006-01-02"
)
