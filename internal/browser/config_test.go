package browser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultTimeoutsMatchPreset(t *testing.T) {
	d := DefaultTimeouts()
	assert.Equal(t, 15*time.Second, d.ElementWait)
	assert.Equal(t, 30*time.Second, d.Navigation)
	assert.Equal(t, 30*time.Second, d.PageStable)
	assert.Equal(t, 5*time.Second, d.CookieBanner)
	assert.Equal(t, 300*time.Millisecond, d.CheckInterval)
	assert.Equal(t, 1*time.Second, d.Settle)
}

func TestFastTimeoutsAreShorterThanDefault(t *testing.T) {
	f := FastTimeouts()
	d := DefaultTimeouts()
	assert.Less(t, f.ElementWait, d.ElementWait)
	assert.Less(t, f.Navigation, d.Navigation)
	assert.Less(t, f.PageStable, d.PageStable)
}

func TestPatientTimeoutsAreLongerThanDefault(t *testing.T) {
	p := PatientTimeouts()
	d := DefaultTimeouts()
	assert.Greater(t, p.ElementWait, d.ElementWait)
	assert.Greater(t, p.Navigation, d.Navigation)
	assert.Greater(t, p.PageStable, d.PageStable)
}
