package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	const chromeWin = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	osName, browser := Detect(chromeWin)
	assert.Contains(t, osName, "Windows")
	assert.Contains(t, browser, "Chrome")
}

func TestDetect_Empty(t *testing.T) {
	osName, browser := Detect("")
	assert.Equal(t, "Unknown", osName)
	assert.Equal(t, "Unknown", browser)
}

func TestDetect_Garbage(t *testing.T) {
	osName, browser := Detect("curl/8.4.0")
	assert.Equal(t, "Unknown", osName)
	assert.NotEmpty(t, browser)
}
