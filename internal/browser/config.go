package browser

import "time"

// Timeouts is the named preset bundle from spec §6 ("Timeout presets").
type Timeouts struct {
	ElementWait   time.Duration
	Navigation    time.Duration
	PageStable    time.Duration
	CookieBanner  time.Duration
	CheckInterval time.Duration
	Settle        time.Duration
}

// DefaultTimeouts, FastTimeouts, PatientTimeouts are the three presets spec
// §6 names verbatim.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		ElementWait:   15 * time.Second,
		Navigation:    30 * time.Second,
		PageStable:    30 * time.Second,
		CookieBanner:  5 * time.Second,
		CheckInterval: 300 * time.Millisecond,
		Settle:        1 * time.Second,
	}
}

func FastTimeouts() Timeouts {
	return Timeouts{
		ElementWait:   8 * time.Second,
		Navigation:    20 * time.Second,
		PageStable:    20 * time.Second,
		CookieBanner:  3 * time.Second,
		CheckInterval: 200 * time.Millisecond,
		Settle:        500 * time.Millisecond,
	}
}

func PatientTimeouts() Timeouts {
	return Timeouts{
		ElementWait:   30 * time.Second,
		Navigation:    60 * time.Second,
		PageStable:    60 * time.Second,
		CookieBanner:  10 * time.Second,
		CheckInterval: 500 * time.Millisecond,
		Settle:        2 * time.Second,
	}
}

// StabilityConsecutiveProbes is N from spec §4.4.1: page-stability requires
// this many consecutive stable probes before it's considered settled.
const StabilityConsecutiveProbes = 5

// NavigationGrace is the fixed sleep before a navigation-wait begins polling
// for stability (spec §4.4.1).
const NavigationGrace = 1000 * time.Millisecond

// ClickSettle, TypeSettle, PressKeySettle, ScrollSettle are the fixed
// per-action settle delays from spec §4.4.2's action table.
const (
	ClickSettle    = 300 * time.Millisecond
	TypeSettle     = 200 * time.Millisecond
	PressKeySettle = 500 * time.Millisecond
	ScrollSettle   = 500 * time.Millisecond
)
