// Package sylevel defines the syslog facility and severity-level
// vocabulary shared by the config loader, classifier, and ring buffer.
//
// Both Facility and Level are sum types rather than bare ints carrying an
// in-band -1 sentinel for "any" (see spec's design notes on sentinel
// integers): AnyFacility() and AnyLevel() return values for which IsAny
// is true, and such a
// value must never be compared by numeric code.
package sylevel

import (
	"fmt"
	"strings"
)

// Facility identifies the syslog facility of a message, or the
// wildcard "any" value used by rule filters.
type Facility struct {
	val  int
	any  bool
}

// Level identifies the syslog severity of a message, or the wildcard
// "any" value used by rule filters. Lower values are more severe.
type Level struct {
	val int
	any bool
}

// AnyFacility is the wildcard facility filter value.
func AnyFacility() Facility { return Facility{any: true} }

// AnyLevel is the wildcard level filter value.
func AnyLevel() Level { return Level{any: true} }

// NewFacility wraps a concrete facility code.
func NewFacility(v int) Facility { return Facility{val: v} }

// NewLevel wraps a concrete severity code.
func NewLevel(v int) Level { return Level{val: v} }

// IsAny reports whether f is the wildcard value.
func (f Facility) IsAny() bool { return f.any }

// IsAny reports whether l is the wildcard value.
func (l Level) IsAny() bool { return l.any }

// Code returns the concrete facility code. Callers must check IsAny first.
func (f Facility) Code() int { return f.val }

// Code returns the concrete severity code. Callers must check IsAny first.
func (l Level) Code() int { return l.val }

// Equal reports whether two concrete facilities are the same code.
// A wildcard facility is never Equal to anything, including another
// wildcard - callers that need wildcard matching use IsAny explicitly.
func (f Facility) Equal(o Facility) bool {
	return !f.any && !o.any && f.val == o.val
}

// Equal reports whether two concrete levels are the same code.
func (l Level) Equal(o Level) bool {
	return !l.any && !o.any && l.val == o.val
}

// MoreSevereOrEqual reports whether l is at least as severe as threshold
// (numerically l <= threshold, since lower codes are more severe). Both
// must be concrete.
func (l Level) MoreSevereOrEqual(threshold Level) bool {
	return l.val <= threshold.val
}

// Standard syslog facility codes (RFC 3164).
const (
	FacKern = iota
	FacUser
	FacMail
	FacDaemon
	FacAuth
	FacSyslog
	FacLPR
	FacNews
	FacUUCP
	FacCron
	FacAuthpriv
	FacFTP
	_reserved12
	_reserved13
	_reserved14
	_reserved15
	FacLocal0
	FacLocal1
	FacLocal2
	FacLocal3
	FacLocal4
	FacLocal5
	FacLocal6
	FacLocal7
)

// Standard syslog severity codes (RFC 3164), most to least severe.
const (
	LevelEmerg = iota
	LevelAlert
	LevelCrit
	LevelErr
	LevelWarning
	LevelNotice
	LevelInfo
	LevelDebug
)

var facilityNames = map[string]int{
	"kern":     FacKern,
	"user":     FacUser,
	"mail":     FacMail,
	"daemon":   FacDaemon,
	"auth":     FacAuth,
	"syslog":   FacSyslog,
	"lpr":      FacLPR,
	"news":     FacNews,
	"uucp":     FacUUCP,
	"cron":     FacCron,
	"authpriv": FacAuthpriv,
	"ftp":      FacFTP,
	"local0":   FacLocal0,
	"local1":   FacLocal1,
	"local2":   FacLocal2,
	"local3":   FacLocal3,
	"local4":   FacLocal4,
	"local5":   FacLocal5,
	"local6":   FacLocal6,
	"local7":   FacLocal7,
}

var levelNames = map[string]int{
	"emerg":   LevelEmerg,
	"alert":   LevelAlert,
	"crit":    LevelCrit,
	"err":     LevelErr,
	"warning": LevelWarning,
	"notice":  LevelNotice,
	"info":    LevelInfo,
	"debug":   LevelDebug,
}

var levelString = map[int]string{
	LevelEmerg:   "emerg",
	LevelAlert:   "alert",
	LevelCrit:    "crit",
	LevelErr:     "err",
	LevelWarning: "warning",
	LevelNotice:  "notice",
	LevelInfo:    "info",
	LevelDebug:   "debug",
}

// ParseFacility converts a facility token ("kern", "local3", "*", ...) to
// a Facility value. "*" yields AnyFacility().
func ParseFacility(s string) (Facility, error) {
	if s == "*" || s == "" {
		return AnyFacility(), nil
	}
	v, ok := facilityNames[strings.ToLower(s)]
	if !ok {
		return Facility{}, fmt.Errorf("sylevel: unknown facility %q", s)
	}
	return NewFacility(v), nil
}

// ParseLevel converts a level token ("err", "warning", "*", ...) to a
// Level value. "*" yields AnyLevel().
func ParseLevel(s string) (Level, error) {
	if s == "*" || s == "" {
		return AnyLevel(), nil
	}
	v, ok := levelNames[strings.ToLower(s)]
	if !ok {
		return Level{}, fmt.Errorf("sylevel: unknown level %q", s)
	}
	return NewLevel(v), nil
}

// String renders a concrete level as its canonical name; wildcard levels
// render as "*".
func (l Level) String() string {
	if l.any {
		return "*"
	}
	if s, ok := levelString[l.val]; ok {
		return s
	}
	return fmt.Sprintf("level-%d", l.val)
}
