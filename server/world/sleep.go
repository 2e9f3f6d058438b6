package world

// Time constants for sleep usage.
const (
	TimeSleep         = 12010
	TimeWake          = 23991
	TimeSleepWithRain = 12542
	TimeWakeWithRain  = 23459
	TimeFull          = 24000
)
