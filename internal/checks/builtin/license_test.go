package builtin

import (
	"fmt"
	"strings"
	"testing"

	"scorecard/internal/checks"
	"scorecard/internal/textread"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func longText(prefix string) string {
	return prefix + "\n" + strings.Repeat("Permission is hereby granted. ", 5)
}

func TestLicenseCheck_Evaluate(t *testing.T) {
	mit := longText("MIT License")

	tests := []struct {
		name           string
		files          map[string]string
		expectedStatus checks.Status
		expectedMsg    string
	}{
		{
			name:           "FAIL when no license file",
			files:          map[string]string{"README.md": "hello"},
			expectedStatus: checks.StatusFail,
			expectedMsg:    "No LICENSE file found",
		},
		{
			name:           "FAIL when too short",
			files:          map[string]string{"LICENSE": "  MIT  \n\n"},
			expectedStatus: checks.StatusFail,
			expectedMsg:    "LICENSE file found but too short (3 chars, need at least 100)",
		},
		{
			name:           "FAIL at 99 chars",
			files:          map[string]string{"LICENSE": strings.Repeat("x", 99)},
			expectedStatus: checks.StatusFail,
			expectedMsg:    "LICENSE file found but too short (99 chars, need at least 100)",
		},
		{
			name:           "PASS at exactly 100 chars",
			files:          map[string]string{"LICENSE": strings.Repeat("x", 100)},
			expectedStatus: checks.StatusPass,
			expectedMsg:    "LICENSE file found: LICENSE (100 chars, detected: Unknown)",
		},
		{
			name:           "PASS detects MIT in any case",
			files:          map[string]string{"LICENSE": strings.ToLower(mit)},
			expectedStatus: checks.StatusPass,
			expectedMsg:    fmt.Sprintf("LICENSE file found: LICENSE (%d chars, detected: MIT)", len(strings.TrimSpace(mit))),
		},
		{
			name:           "PASS lowercase license.md satisfies LICENSE.md",
			files:          map[string]string{"license.md": mit},
			expectedStatus: checks.StatusPass,
			expectedMsg:    fmt.Sprintf("LICENSE file found: license.md (%d chars, detected: MIT)", len(strings.TrimSpace(mit))),
		},
		{
			name:           "FAIL counts CRLF line endings as one char",
			files:          map[string]string{"LICENSE": strings.Repeat("x\r\n", 40)},
			expectedStatus: checks.StatusFail,
			expectedMsg:    "LICENSE file found but too short (79 chars, need at least 100)",
		},
		{
			name:           "FAIL counts lone CR as one char",
			files:          map[string]string{"LICENSE": strings.Repeat("x\r", 45)},
			expectedStatus: checks.StatusFail,
			expectedMsg:    "LICENSE file found but too short (89 chars, need at least 100)",
		},
		{
			name:           "PASS counts code points, not bytes",
			files:          map[string]string{"COPYING": strings.Repeat("é", 100)},
			expectedStatus: checks.StatusPass,
			expectedMsg:    "LICENSE file found: COPYING (100 chars, detected: Unknown)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := evaluate(t, NewLicenseCheck(), newTarget(t, tt.files))
			assert.Equal(t, "license", res.CheckID)
			assert.Equal(t, tt.expectedStatus, res.Status)
			assert.Equal(t, tt.expectedMsg, res.Message)
		})
	}
}

func TestLicenseCheck_ListOrderWins(t *testing.T) {
	target := newTarget(t, map[string]string{
		"COPYING":    longText("GNU GENERAL PUBLIC LICENSE Version 2"),
		"LICENSE.md": longText("Apache License"),
	})
	res := evaluate(t, NewLicenseCheck(), target)
	require.Equal(t, checks.StatusPass, res.Status)
	assert.Equal(t, "LICENSE.md", res.Metadata["file"])
	assert.Equal(t, "Apache", res.Metadata["license_type"])
}

func TestLicenseCheck_IgnoresDirectories(t *testing.T) {
	target := newTarget(t, nil)
	mkdir(t, target, "license")
	res := evaluate(t, NewLicenseCheck(), target)
	assert.Equal(t, checks.StatusFail, res.Status)
	assert.Equal(t, "No LICENSE file found", res.Message)
}

func TestLicenseCheck_Decoding(t *testing.T) {
	content := "MIT License\xff\n" + strings.Repeat("x", 120)

	res := evaluate(t, NewLicenseCheck(), newTargetWithMode(t, map[string]string{"LICENSE": content}, textread.Lenient))
	assert.Equal(t, checks.StatusPass, res.Status)
	assert.Equal(t, "LICENSE file found: LICENSE (132 chars, detected: MIT)", res.Message)

	res = evaluate(t, NewLicenseCheck(), newTargetWithMode(t, map[string]string{"LICENSE": content}, textread.Strict))
	assert.Equal(t, checks.StatusFail, res.Status)
	assert.Equal(t, "LICENSE: invalid UTF-8 at byte offset 11", res.Message)
}

func TestLicenseCheck_StrictRejectsMalformedUTF16(t *testing.T) {
	raw := "\xFF\xFEa\x00\x00\xD8"

	res := evaluate(t, NewLicenseCheck(), newTargetWithMode(t, map[string]string{"LICENSE": raw}, textread.Strict))
	assert.Equal(t, checks.StatusFail, res.Status)
	assert.Equal(t, "LICENSE: invalid UTF-16 at byte offset 4", res.Message)
	assert.Equal(t, 4, res.Metadata["offset"])

	res = evaluate(t, NewLicenseCheck(), newTargetWithMode(t, map[string]string{"LICENSE": raw}, textread.Lenient))
	assert.Equal(t, checks.StatusFail, res.Status)
	assert.Equal(t, "LICENSE file found but too short (2 chars, need at least 100)", res.Message)
}

func TestLicenseCheck_ByteOrderMark(t *testing.T) {
	res := evaluate(t, NewLicenseCheck(), newTarget(t, map[string]string{"LICENSE": "\xEF\xBB\xBF" + strings.Repeat("y", 100)}))
	assert.Equal(t, checks.StatusPass, res.Status)
	assert.Equal(t, 100, res.Metadata["chars"])
}

func TestLicenseCheck_Configure(t *testing.T) {
	c := NewLicenseCheck()
	require.NoError(t, c.Configure(map[string]string{"min-chars": "10"}))
	res := evaluate(t, c, newTarget(t, map[string]string{"LICENSE": "BSD License"}))
	assert.Equal(t, checks.StatusPass, res.Status)
	assert.Equal(t, "LICENSE file found: LICENSE (11 chars, detected: BSD)", res.Message)

	require.NoError(t, c.Configure(nil))
	res = evaluate(t, c, newTarget(t, map[string]string{"LICENSE": "BSD License"}))
	assert.Equal(t, "LICENSE file found but too short (11 chars, need at least 100)", res.Message)

	assert.Error(t, c.Configure(map[string]string{"min-chars": "many"}))
	assert.Error(t, c.Configure(map[string]string{"min-chars": "-1"}))
}

func TestDetectLicense(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{text: "The MIT License (MIT)", want: "MIT"},
		{text: "Apache License\nVersion 2.0, January 2004", want: "Apache"},
		{text: "GNU GENERAL PUBLIC LICENSE\nVersion 3, 29 June 2007", want: "GPL-3.0"},
		{text: "GNU General Public License\nversion 2, June 1991", want: "GPL-2.0"},
		{text: "gnu general public license", want: "GPL"},
		{text: "GNU GENERAL PUBLIC LICENSE version 2 or version 3", want: "GPL-3.0"},
		{text: "BSD License", want: "BSD"},
		{text: "MIT License, see also Apache License", want: "MIT"},
		{text: "Apache License, Version 3", want: "Apache"},
		{text: "Mozilla Public License 2.0", want: "Unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectLicense(tt.text), "DetectLicense(%q)", tt.text)
	}
}
