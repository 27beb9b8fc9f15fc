package builtin

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"scorecard/internal/checks"
	"scorecard/internal/source"
	"scorecard/internal/textread"
)

// LicenseNames are the accepted license file names, matched
// case-insensitively in this order.
var LicenseNames = []string{
	"LICENSE",
	"LICENSE.txt",
	"LICENSE.md",
	"COPYING",
	"COPYING.txt",
}

// LicenseMinChars is the default minimum length of the trimmed license text.
const LicenseMinChars = 100

type licenseSignature struct {
	Marker string
	Type   string
}

// LicenseSignatures are searched in the uppercased license text in order.
var LicenseSignatures = []licenseSignature{
	{Marker: "MIT LICENSE", Type: "MIT"},
	{Marker: "APACHE LICENSE", Type: "Apache"},
	{Marker: "GNU GENERAL PUBLIC LICENSE", Type: "GPL"},
	{Marker: "BSD LICENSE", Type: "BSD"},
}

// GPLVersions refine a GPL match.
var GPLVersions = []licenseSignature{
	{Marker: "VERSION 3", Type: "GPL-3.0"},
	{Marker: "VERSION 2", Type: "GPL-2.0"},
}

const UnknownLicense = "Unknown"

// DetectLicense names the license family of text.
func DetectLicense(text string) string {
	upper := textread.Upper(text)
	for _, sig := range LicenseSignatures {
		if !strings.Contains(upper, sig.Marker) {
			continue
		}
		if sig.Type == "GPL" {
			for _, v := range GPLVersions {
				if strings.Contains(upper, v.Marker) {
					return v.Type
				}
			}
		}
		return sig.Type
	}
	return UnknownLicense
}

type LicenseCheck struct {
	minChars int
}

func NewLicenseCheck() *LicenseCheck {
	return &LicenseCheck{minChars: LicenseMinChars}
}

func (c *LicenseCheck) ID() string {
	return "license"
}

func (c *LicenseCheck) Title() string {
	return "License File"
}

func (c *LicenseCheck) Description() string {
	return "Verifies that the repository root contains a license file with meaningful content.\n\n" +
		"Accepted names (case-insensitive, first match in this order wins):\n" +
		"- " + strings.Join(LicenseNames, "\n- ") + "\n\n" +
		"The trimmed content must be at least 100 characters. The license family\n" +
		"(MIT, Apache, GPL-3.0, GPL-2.0, GPL, BSD or Unknown) is reported.\n\n" +
		"Options:\n" +
		"- min-chars: minimum number of characters (default 100)\n\n" +
		"Examples:\n" +
		"  scorecard run license\n" +
		"  scorecard run license --repo ./service --set license.min-chars=500"
}

func (c *LicenseCheck) Options() []checks.Option {
	return []checks.Option{
		{
			Name:        "min-chars",
			Description: "Minimum number of characters in the trimmed license text.",
			Default:     strconv.Itoa(LicenseMinChars),
		},
	}
}

func (c *LicenseCheck) Configure(opts map[string]string) error {
	c.minChars = LicenseMinChars
	if v, ok := opts["min-chars"]; ok && strings.TrimSpace(v) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 0 {
			return fmt.Errorf("invalid value for min-chars: %q (must be a non-negative integer)", v)
		}
		c.minChars = n
	}
	return nil
}

func (c *LicenseCheck) Evaluate(ctx context.Context, t checks.Target) (checks.Result, error) {
	entry, ok, err := source.MatchName(ctx, t.Source, "", LicenseNames)
	if err != nil {
		return checks.ErrorResult(t, c.ID(), fmt.Sprintf("Cannot list repository root: %v", err)), nil
	}
	if !ok {
		return checks.FailResult(t, c.ID(), "No LICENSE file found"), nil
	}

	text, err := t.ReadText(ctx, entry.Path)
	if err != nil {
		return checks.ReadFailure(t, c.ID(), err), nil
	}
	content := textread.TrimSpace(textread.NormalizeNewlines(text))
	chars := textread.CharCount(content)
	if chars < c.minChars {
		return checks.FailResultWithMetadata(t, c.ID(),
			fmt.Sprintf("LICENSE file found but too short (%d chars, need at least %d)", chars, c.minChars),
			map[string]any{"file": entry.Name, "chars": chars},
		), nil
	}

	licenseType := DetectLicense(content)
	return checks.PassResultWithMetadata(t, c.ID(),
		fmt.Sprintf("LICENSE file found: %s (%d chars, detected: %s)", entry.Name, chars, licenseType),
		map[string]any{"file": entry.Name, "chars": chars, "license_type": licenseType},
	), nil
}

func init() {
	checks.Register(NewLicenseCheck())
}
